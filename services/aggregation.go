package services

import (
	"sort"
	"strings"

	"backend/models"
)

// Dimension is one of the closed set of fields a summary may group by.
// Unknown names never become dimensions; they are dropped at the boundary
// by ParseDimensions.
type Dimension string

const (
	DimCategoria   Dimension = "categoria"
	DimConcepto    Dimension = "concepto"
	DimProveedor   Dimension = "proveedor"
	DimTorre       Dimension = "torre"
	DimPiso        Dimension = "piso"
	DimDepto       Dimension = "depto"
	DimMoneda      Dimension = "moneda"
	DimEsParametro Dimension = "es_parametro"
)

var validDimensions = map[Dimension]bool{
	DimCategoria:   true,
	DimConcepto:    true,
	DimProveedor:   true,
	DimTorre:       true,
	DimPiso:        true,
	DimDepto:       true,
	DimMoneda:      true,
	DimEsParametro: true,
}

// ParseDimensions filters a raw field-name list against the whitelist,
// preserving order and dropping duplicates. An empty result defaults to
// grouping by categoria.
func ParseDimensions(campos []string) []Dimension {
	var dims []Dimension
	seen := make(map[Dimension]bool)
	for _, campo := range campos {
		d := Dimension(strings.ToLower(strings.TrimSpace(campo)))
		if !validDimensions[d] || seen[d] {
			continue
		}
		seen[d] = true
		dims = append(dims, d)
	}
	if len(dims) == 0 {
		dims = []Dimension{DimCategoria}
	}
	return dims
}

func (d Dimension) valueOf(p models.Partida) string {
	switch d {
	case DimCategoria:
		return p.Categoria
	case DimConcepto:
		return p.Concepto
	case DimProveedor:
		return p.Proveedor
	case DimTorre:
		return p.Torre
	case DimPiso:
		return p.Piso
	case DimDepto:
		return p.Depto
	case DimMoneda:
		return p.Moneda
	case DimEsParametro:
		return p.EsParametro
	}
	return ""
}

// totalesProyecto computes the project-wide totals every summary level
// reports: distinct categories, line count and grand total over the scanned
// rows.
func totalesProyecto(partidas []models.Partida) (numCategorias, totalPartidas int, totalProyecto float64) {
	categorias := make(map[string]bool)
	for _, p := range partidas {
		categorias[p.Categoria] = true
		totalProyecto += p.TotalMXN
	}
	return len(categorias), len(partidas), totalProyecto
}

// ResumenProyecto is the Level-1 rollup: one row per category with count and
// MXN total, sorted descending by total, plus project-wide totals over the
// same rows. It recomputes from the scan on every call; nothing is
// materialized.
func ResumenProyecto(partidas []models.Partida) models.ResumenProyecto {
	sums := make(map[string]*models.ResumenCategoria)
	var order []string
	for _, p := range partidas {
		row, ok := sums[p.Categoria]
		if !ok {
			row = &models.ResumenCategoria{Categoria: p.Categoria}
			sums[p.Categoria] = row
			order = append(order, p.Categoria)
		}
		row.NumPartidas++
		row.TotalMXN += p.TotalMXN
	}

	categorias := make([]models.ResumenCategoria, 0, len(order))
	for _, nombre := range order {
		categorias = append(categorias, *sums[nombre])
	}
	sort.SliceStable(categorias, func(i, j int) bool {
		return categorias[i].TotalMXN > categorias[j].TotalMXN
	})

	numCategorias, totalPartidas, totalProyecto := totalesProyecto(partidas)
	return models.ResumenProyecto{
		Categorias:    categorias,
		NumCategorias: numCategorias,
		TotalPartidas: totalPartidas,
		TotalProyecto: totalProyecto,
	}
}

// ResumenConceptos is the Level-2 rollup: concept totals within one
// category, same shape and ordering as Level 1. A category with no matching
// lines yields an empty (not nil-error) result.
func ResumenConceptos(partidas []models.Partida, categoria string) models.ResumenConceptos {
	sums := make(map[string]*models.ResumenConcepto)
	var order []string
	totalCategoria := 0.0
	totalPartidas := 0
	for _, p := range partidas {
		if p.Categoria != categoria {
			continue
		}
		row, ok := sums[p.Concepto]
		if !ok {
			row = &models.ResumenConcepto{Concepto: p.Concepto}
			sums[p.Concepto] = row
			order = append(order, p.Concepto)
		}
		row.NumPartidas++
		row.TotalMXN += p.TotalMXN
		totalCategoria += p.TotalMXN
		totalPartidas++
	}

	conceptos := make([]models.ResumenConcepto, 0, len(order))
	for _, nombre := range order {
		conceptos = append(conceptos, *sums[nombre])
	}
	sort.SliceStable(conceptos, func(i, j int) bool {
		return conceptos[i].TotalMXN > conceptos[j].TotalMXN
	})

	return models.ResumenConceptos{
		Categoria:      categoria,
		Conceptos:      conceptos,
		TotalPartidas:  totalPartidas,
		TotalCategoria: totalCategoria,
	}
}

// DetalleConcepto is Level 3: the raw lines of one category+concept pair,
// sorted descending by MXN total. No aggregation.
func DetalleConcepto(partidas []models.Partida, categoria, concepto string) models.DetalleConcepto {
	detalle := models.DetalleConcepto{
		Categoria: categoria,
		Concepto:  concepto,
		Partidas:  []models.DetallePartida{},
	}
	for _, p := range partidas {
		if p.Categoria != categoria || p.Concepto != concepto {
			continue
		}
		detalle.Partidas = append(detalle.Partidas, models.DetallePartida{
			ID:        p.ID,
			Detalle:   p.Detalle,
			Proveedor: p.Proveedor,
			Torre:     p.Torre,
			Piso:      p.Piso,
			Depto:     p.Depto,
			Cantidad:  p.Cantidad,
			Unidad:    p.Unidad,
			TotalMXN:  p.TotalMXN,
		})
	}
	sort.SliceStable(detalle.Partidas, func(i, j int) bool {
		return detalle.Partidas[i].TotalMXN > detalle.Partidas[j].TotalMXN
	})
	return detalle
}

// groupKeySep separates dimension values inside a composite grouping key.
// \x1f (unit separator) cannot appear in spreadsheet-sourced text fields.
const groupKeySep = "\x1f"

// ResumenAgrupado computes the ad-hoc pivot: one row per distinct
// combination of the requested dimensions with count, MXN total and the
// pre-tax/IVA/surcharge subtotals, sorted descending by total. Callers
// must pass dims through ParseDimensions first.
func ResumenAgrupado(partidas []models.Partida, dims []Dimension) models.ResumenAgrupado {
	if len(dims) == 0 {
		dims = []Dimension{DimCategoria}
	}

	type acumulado struct {
		campos map[string]string
		grupo  models.GrupoResumen
	}

	grupos := make(map[string]*acumulado)
	var order []string
	for _, p := range partidas {
		values := make([]string, len(dims))
		campos := make(map[string]string, len(dims))
		for i, d := range dims {
			v := d.valueOf(p)
			values[i] = v
			campos[string(d)] = v
		}
		key := strings.Join(values, groupKeySep)

		g, ok := grupos[key]
		if !ok {
			g = &acumulado{campos: campos}
			grupos[key] = g
			order = append(order, key)
		}
		g.grupo.NumPartidas++
		g.grupo.TotalMXN += p.TotalMXN
		g.grupo.Subtotal += p.ImporteSinIVA
		g.grupo.TotalIVA += p.IVAMonto
		g.grupo.TotalSobrecosto += p.SobrecostoMonto
	}

	campos := make([]string, len(dims))
	for i, d := range dims {
		campos[i] = string(d)
	}

	resumen := models.ResumenAgrupado{
		Campos: campos,
		Grupos: make([]models.GrupoResumen, 0, len(order)),
	}
	for _, key := range order {
		g := grupos[key]
		g.grupo.Campos = g.campos
		resumen.Grupos = append(resumen.Grupos, g.grupo)
	}
	sort.SliceStable(resumen.Grupos, func(i, j int) bool {
		return resumen.Grupos[i].TotalMXN > resumen.Grupos[j].TotalMXN
	})

	resumen.NumCategorias, resumen.TotalPartidas, resumen.TotalProyecto = totalesProyecto(partidas)
	return resumen
}
