package repository

import (
	"backend/models"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// partidaColumns is the canonical column list used by every partida scan.
const partidaColumns = `id, proyecto_id, categoria, concepto, detalle, proveedor, unidad,
	cantidad, moneda, unitario, importe_sin_iva, sobrecosto_pct, sobrecosto_monto,
	iva_pct, iva_monto, importe_total, tipo_cambio, total_mxn, notas, es_parametro,
	torre, piso, depto, fecha_creacion, fecha_modificacion`

// PartidaFiltro narrows a partida scan. Every non-empty field becomes a
// strict equality constraint ANDed into the query.
type PartidaFiltro struct {
	Categoria string
	Concepto  string
	Torre     string
	Piso      string
	Depto     string
}

// ScanPartida reads one partida row from rows positioned by rows.Next().
func ScanPartida(rows *sql.Rows) (models.Partida, error) {
	var p models.Partida
	err := rows.Scan(
		&p.ID, &p.ProyectoID, &p.Categoria, &p.Concepto, &p.Detalle, &p.Proveedor, &p.Unidad,
		&p.Cantidad, &p.Moneda, &p.Unitario, &p.ImporteSinIVA, &p.SobrecostoPct, &p.SobrecostoMonto,
		&p.IVAPct, &p.IVAMonto, &p.ImporteTotal, &p.TipoCambio, &p.TotalMXN, &p.Notas, &p.EsParametro,
		&p.Torre, &p.Piso, &p.Depto, &p.FechaCreacion, &p.FechaModificacion,
	)
	return p, err
}

// GetPartidaByID fetches a single partida.
func GetPartidaByID(db *sql.DB, partidaID int) (*models.Partida, error) {
	query := fmt.Sprintf("SELECT %s FROM partidas WHERE id = $1", partidaColumns)
	rows, err := db.Query(query, partidaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}
	p, err := ScanPartida(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchPartidas returns every partida of a project matching the filter,
// ordered by categoria, concepto, detalle. The filter fields map to strict
// equality; the grouping itself happens in the services layer over the
// returned rows.
func FetchPartidas(db *sql.DB, proyectoID int, filtro PartidaFiltro) ([]models.Partida, error) {
	query := fmt.Sprintf("SELECT %s FROM partidas WHERE proyecto_id = $1", partidaColumns)
	args := []interface{}{proyectoID}
	argIndex := 2

	addEq := func(column, value string) {
		if value == "" {
			return
		}
		query += fmt.Sprintf(" AND %s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}
	addEq("categoria", filtro.Categoria)
	addEq("concepto", filtro.Concepto)
	addEq("torre", filtro.Torre)
	addEq("piso", filtro.Piso)
	addEq("depto", filtro.Depto)

	query += " ORDER BY categoria, concepto, detalle"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partidas []models.Partida
	for rows.Next() {
		p, err := ScanPartida(rows)
		if err != nil {
			return nil, err
		}
		partidas = append(partidas, p)
	}
	return partidas, rows.Err()
}

// GetCotizacionCategorias returns the ordered category names attached to a
// quotation.
func GetCotizacionCategorias(db *sql.DB, cotizacionID int) ([]string, error) {
	rows, err := db.Query(
		`SELECT categoria FROM cotizacion_categorias WHERE cotizacion_id = $1 ORDER BY posicion, id`,
		cotizacionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categorias []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categorias = append(categorias, c)
	}
	return categorias, rows.Err()
}

// SetCotizacionCategorias replaces the category list of a quotation.
func SetCotizacionCategorias(db *sql.DB, cotizacionID int, categorias []string) error {
	if _, err := db.Exec(`DELETE FROM cotizacion_categorias WHERE cotizacion_id = $1`, cotizacionID); err != nil {
		return fmt.Errorf("failed to clear cotizacion categorias: %v", err)
	}
	for i, categoria := range categorias {
		categoria = strings.TrimSpace(categoria)
		if categoria == "" {
			continue
		}
		_, err := db.Exec(
			`INSERT INTO cotizacion_categorias (cotizacion_id, categoria, posicion) VALUES ($1, $2, $3)`,
			cotizacionID, categoria, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cotizacion categoria: %v", err)
		}
	}
	return nil
}

// GetCotizacionItems returns the items of a quotation in document order.
func GetCotizacionItems(db *sql.DB, cotizacionID int) ([]models.CotizacionItem, error) {
	rows, err := db.Query(`
		SELECT id, cotizacion_id, codigo, descripcion, unidad, cantidad, precio_unitario, importe, moneda
		FROM cotizacion_items WHERE cotizacion_id = $1 ORDER BY posicion, id`,
		cotizacionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CotizacionItem
	for rows.Next() {
		var it models.CotizacionItem
		if err := rows.Scan(&it.ID, &it.CotizacionID, &it.Codigo, &it.Descripcion, &it.Unidad,
			&it.Cantidad, &it.PrecioUnitario, &it.Importe, &it.Moneda); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GenerateFolio builds a human-readable reference code for an uploaded
// quotation, e.g. "CT-48291".
func GenerateFolio() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("CT-%d", number)
}
