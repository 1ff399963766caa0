package services

import (
	"database/sql"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"backend/models"
	"backend/utils"
)

// ItemCotizado is one quoted line carried into the comparison: the project
// the quotation belongs to plus the fields the comparator needs.
type ItemCotizado struct {
	Proyecto       string
	Descripcion    string
	Unidad         string
	PrecioUnitario float64
}

var upperCaser = cases.Upper(language.Und)

// normalizarDescripcion builds the grouping key: trimmed and upper-cased.
// Exact match on the normalized string only, no fuzzy matching.
func normalizarDescripcion(descripcion string) string {
	return upperCaser.String(strings.TrimSpace(descripcion))
}

// CompararUnitarios groups a vendor's quoted items by normalized description
// and reports the unit-price spread per group across projects. Items with an
// empty description are dropped. Within one project the first price seen for
// a description wins. A spread (min/max/diferencia_pct) is reported only when
// the group has at least two distinct positive prices; zero prices are
// treated as missing.
func CompararUnitarios(proveedor string, items []ItemCotizado) models.ComparacionUnitarios {
	type grupo struct {
		descripcion string
		unidad      string
		precios     map[string]float64
	}

	grupos := make(map[string]*grupo)
	var order []string
	proyectos := make(map[string]bool)

	for _, item := range items {
		key := normalizarDescripcion(item.Descripcion)
		if key == "" {
			continue
		}
		proyectos[item.Proyecto] = true

		g, ok := grupos[key]
		if !ok {
			g = &grupo{
				descripcion: item.Descripcion,
				unidad:      item.Unidad,
				precios:     make(map[string]float64),
			}
			grupos[key] = g
			order = append(order, key)
		}
		if _, visto := g.precios[item.Proyecto]; !visto {
			g.precios[item.Proyecto] = item.PrecioUnitario
		}
	}

	resultado := models.ComparacionUnitarios{
		Proveedor: proveedor,
		Grupos:    make([]models.GrupoComparacion, 0, len(order)),
		Proyectos: make([]string, 0, len(proyectos)),
	}
	for nombre := range proyectos {
		resultado.Proyectos = append(resultado.Proyectos, nombre)
	}
	sort.Strings(resultado.Proyectos)

	for _, key := range order {
		g := grupos[key]
		fila := models.GrupoComparacion{
			Descripcion: g.descripcion,
			Unidad:      g.unidad,
			Precios:     g.precios,
		}

		distintos := make(map[float64]bool)
		for _, precio := range g.precios {
			if precio > 0 {
				distintos[precio] = true
			}
		}
		if len(distintos) >= 2 {
			min := math.Inf(1)
			max := math.Inf(-1)
			for precio := range distintos {
				if precio < min {
					min = precio
				}
				if precio > max {
					max = precio
				}
			}
			diferencia := math.Round((max-min)/min*1000) / 10
			fila.MinPrecio = &min
			fila.MaxPrecio = &max
			fila.DiferenciaPct = &diferencia
		}
		resultado.Grupos = append(resultado.Grupos, fila)
	}

	diferenciaDe := func(g models.GrupoComparacion) float64 {
		if g.DiferenciaPct == nil {
			return 0
		}
		return *g.DiferenciaPct
	}
	sort.SliceStable(resultado.Grupos, func(i, j int) bool {
		return diferenciaDe(resultado.Grupos[i]) > diferenciaDe(resultado.Grupos[j])
	})

	return resultado
}

// CompararProveedor fetches every quoted item of a vendor across all
// projects, optionally restricted to quotations tagged with the given
// category, and runs the comparison over them. A vendor with no quotations
// yields an empty result, not an error.
func CompararProveedor(db *sql.DB, proveedor, categoria string) (models.ComparacionUnitarios, error) {
	ctx, cancel := utils.GetDefaultQueryContext(nil)
	defer cancel()

	query := `
		SELECT p.nombre, i.descripcion, i.unidad, i.precio_unitario
		FROM cotizacion_items i
		JOIN cotizaciones c ON c.id = i.cotizacion_id
		JOIN proyectos p ON p.id = c.proyecto_id
		WHERE c.proveedor = $1`
	args := []interface{}{proveedor}
	if categoria != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM cotizacion_categorias cc
			WHERE cc.cotizacion_id = c.id AND cc.categoria = $2)`
		args = append(args, categoria)
	}
	query += ` ORDER BY c.id, i.id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.ComparacionUnitarios{}, err
	}
	defer rows.Close()

	var items []ItemCotizado
	for rows.Next() {
		var item ItemCotizado
		if err := rows.Scan(&item.Proyecto, &item.Descripcion, &item.Unidad, &item.PrecioUnitario); err != nil {
			return models.ComparacionUnitarios{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return models.ComparacionUnitarios{}, err
	}

	return CompararUnitarios(proveedor, items), nil
}
