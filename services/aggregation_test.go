package services

import (
	"math"
	"reflect"
	"testing"

	"backend/models"
)

func partidasDePrueba() []models.Partida {
	// categories ALBANILERIA (muros + pisos) and INSTALACIONES (hidraulica)
	return []models.Partida{
		{ID: 1, Categoria: "ALBANILERIA", Concepto: "MUROS", Detalle: "Muro block 15cm", Proveedor: "Constructora MX", Torre: "A", Piso: "1", Moneda: "MXN", ImporteSinIVA: 100, SobrecostoMonto: 10, IVAMonto: 17.6, TotalMXN: 127.6},
		{ID: 2, Categoria: "ALBANILERIA", Concepto: "MUROS", Detalle: "Muro block 20cm", Proveedor: "Constructora MX", Torre: "A", Piso: "2", Moneda: "MXN", ImporteSinIVA: 200, SobrecostoMonto: 20, IVAMonto: 35.2, TotalMXN: 255.2},
		{ID: 3, Categoria: "ALBANILERIA", Concepto: "PISOS", Detalle: "Firme de concreto", Proveedor: "Pisos SA", Torre: "B", Piso: "1", Moneda: "MXN", ImporteSinIVA: 50, SobrecostoMonto: 0, IVAMonto: 8, TotalMXN: 58},
		{ID: 4, Categoria: "INSTALACIONES", Concepto: "HIDRAULICA", Detalle: "Tubo PVC 4in", Proveedor: "Plomeria SA", Torre: "A", Piso: "1", Moneda: "USD", ImporteSinIVA: 300, SobrecostoMonto: 30, IVAMonto: 52.8, TotalMXN: 382.8},
	}
}

func TestResumenProyecto(t *testing.T) {
	resumen := ResumenProyecto(partidasDePrueba())

	if resumen.NumCategorias != 2 {
		t.Errorf("NumCategorias = %d, want 2", resumen.NumCategorias)
	}
	if resumen.TotalPartidas != 4 {
		t.Errorf("TotalPartidas = %d, want 4", resumen.TotalPartidas)
	}
	if !almostEqual(resumen.TotalProyecto, 823.6) {
		t.Errorf("TotalProyecto = %v, want 823.6", resumen.TotalProyecto)
	}
	if len(resumen.Categorias) != 2 {
		t.Fatalf("got %d categories, want 2", len(resumen.Categorias))
	}
	// ALBANILERIA (440.8) sorts above INSTALACIONES (382.8)
	if resumen.Categorias[0].Categoria != "ALBANILERIA" {
		t.Errorf("first category = %q, want ALBANILERIA", resumen.Categorias[0].Categoria)
	}
	if resumen.Categorias[0].NumPartidas != 3 {
		t.Errorf("ALBANILERIA NumPartidas = %d, want 3", resumen.Categorias[0].NumPartidas)
	}
	if !almostEqual(resumen.Categorias[0].TotalMXN, 440.8) {
		t.Errorf("ALBANILERIA TotalMXN = %v, want 440.8", resumen.Categorias[0].TotalMXN)
	}
}

func TestResumenProyectoEmpty(t *testing.T) {
	resumen := ResumenProyecto(nil)
	if len(resumen.Categorias) != 0 || resumen.TotalPartidas != 0 || resumen.TotalProyecto != 0 {
		t.Errorf("empty input should yield empty summary, got %+v", resumen)
	}
}

func TestResumenConceptos(t *testing.T) {
	resumen := ResumenConceptos(partidasDePrueba(), "ALBANILERIA")

	if resumen.Categoria != "ALBANILERIA" {
		t.Errorf("Categoria = %q", resumen.Categoria)
	}
	if len(resumen.Conceptos) != 2 {
		t.Fatalf("got %d concepts, want 2", len(resumen.Conceptos))
	}
	// MUROS (382.8) above PISOS (58)
	if resumen.Conceptos[0].Concepto != "MUROS" || resumen.Conceptos[1].Concepto != "PISOS" {
		t.Errorf("concept order = %q, %q", resumen.Conceptos[0].Concepto, resumen.Conceptos[1].Concepto)
	}
	if !almostEqual(resumen.TotalCategoria, 440.8) {
		t.Errorf("TotalCategoria = %v, want 440.8", resumen.TotalCategoria)
	}
	if resumen.TotalPartidas != 3 {
		t.Errorf("TotalPartidas = %d, want 3", resumen.TotalPartidas)
	}
}

func TestResumenConceptosUnknownCategory(t *testing.T) {
	resumen := ResumenConceptos(partidasDePrueba(), "NO EXISTE")
	if len(resumen.Conceptos) != 0 || resumen.TotalPartidas != 0 {
		t.Errorf("unknown category should yield empty result, got %+v", resumen)
	}
}

func TestDetalleConcepto(t *testing.T) {
	detalle := DetalleConcepto(partidasDePrueba(), "ALBANILERIA", "MUROS")

	if len(detalle.Partidas) != 2 {
		t.Fatalf("got %d lines, want 2", len(detalle.Partidas))
	}
	// sorted descending by total
	if detalle.Partidas[0].ID != 2 || detalle.Partidas[1].ID != 1 {
		t.Errorf("line order = %d, %d; want 2, 1", detalle.Partidas[0].ID, detalle.Partidas[1].ID)
	}
}

func TestDetalleConceptoUnknownPair(t *testing.T) {
	detalle := DetalleConcepto(partidasDePrueba(), "ALBANILERIA", "NO EXISTE")
	if detalle.Partidas == nil {
		t.Fatal("Partidas should be an empty slice, not nil")
	}
	if len(detalle.Partidas) != 0 {
		t.Errorf("got %d lines, want 0", len(detalle.Partidas))
	}
}

// roll-up consistency: project total == sum of category totals == sum of
// concept totals within each category == sum of line totals.
func TestRollupConsistency(t *testing.T) {
	partidas := partidasDePrueba()
	nivel1 := ResumenProyecto(partidas)

	var sumaCategorias float64
	for _, cat := range nivel1.Categorias {
		sumaCategorias += cat.TotalMXN

		nivel2 := ResumenConceptos(partidas, cat.Categoria)
		var sumaConceptos float64
		for _, con := range nivel2.Conceptos {
			sumaConceptos += con.TotalMXN

			nivel3 := DetalleConcepto(partidas, cat.Categoria, con.Concepto)
			var sumaLineas float64
			for _, linea := range nivel3.Partidas {
				sumaLineas += linea.TotalMXN
			}
			if !almostEqual(sumaLineas, con.TotalMXN) {
				t.Errorf("%s/%s: line sum %v != concept total %v", cat.Categoria, con.Concepto, sumaLineas, con.TotalMXN)
			}
		}
		if !almostEqual(sumaConceptos, cat.TotalMXN) {
			t.Errorf("%s: concept sum %v != category total %v", cat.Categoria, sumaConceptos, cat.TotalMXN)
		}
	}
	if !almostEqual(sumaCategorias, nivel1.TotalProyecto) {
		t.Errorf("category sum %v != project total %v", sumaCategorias, nivel1.TotalProyecto)
	}
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name   string
		campos []string
		want   []Dimension
	}{
		{"empty defaults to categoria", nil, []Dimension{DimCategoria}},
		{"unknown field falls back to categoria", []string{"foo"}, []Dimension{DimCategoria}},
		{"unknown mixed with known keeps known", []string{"foo", "proveedor"}, []Dimension{DimProveedor}},
		{"order preserved", []string{"torre", "categoria"}, []Dimension{DimTorre, DimCategoria}},
		{"duplicates dropped", []string{"piso", "piso"}, []Dimension{DimPiso}},
		{"whitespace and case tolerated", []string{" Torre ", "DEPTO"}, []Dimension{DimTorre, DimDepto}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDimensions(tt.campos)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDimensions(%v) = %v, want %v", tt.campos, got, tt.want)
			}
		})
	}
}

func TestResumenAgrupado(t *testing.T) {
	partidas := partidasDePrueba()
	resumen := ResumenAgrupado(partidas, []Dimension{DimProveedor, DimTorre})

	if !reflect.DeepEqual(resumen.Campos, []string{"proveedor", "torre"}) {
		t.Errorf("Campos = %v", resumen.Campos)
	}
	// groups: (Constructora MX, A) x2, (Pisos SA, B), (Plomeria SA, A)
	if len(resumen.Grupos) != 3 {
		t.Fatalf("got %d groups, want 3", len(resumen.Grupos))
	}
	var grupoMX *models.GrupoResumen
	for i := range resumen.Grupos {
		if resumen.Grupos[i].Campos["proveedor"] == "Constructora MX" {
			grupoMX = &resumen.Grupos[i]
		}
	}
	if grupoMX == nil {
		t.Fatal("group for Constructora MX not found")
	}
	if grupoMX.NumPartidas != 2 {
		t.Errorf("NumPartidas = %d, want 2", grupoMX.NumPartidas)
	}
	if !almostEqual(grupoMX.TotalMXN, 382.8) {
		t.Errorf("TotalMXN = %v, want 382.8", grupoMX.TotalMXN)
	}
	if !almostEqual(grupoMX.Subtotal, 300) {
		t.Errorf("Subtotal = %v, want 300", grupoMX.Subtotal)
	}
	if !almostEqual(grupoMX.TotalIVA, 52.8) {
		t.Errorf("TotalIVA = %v, want 52.8", grupoMX.TotalIVA)
	}
	if !almostEqual(grupoMX.TotalSobrecosto, 30) {
		t.Errorf("TotalSobrecosto = %v, want 30", grupoMX.TotalSobrecosto)
	}

	// group totals add up to project total
	var suma float64
	for _, g := range resumen.Grupos {
		suma += g.TotalMXN
	}
	if math.Abs(suma-resumen.TotalProyecto) > tolerance {
		t.Errorf("group sum %v != project total %v", suma, resumen.TotalProyecto)
	}

	// descending order by total
	for i := 1; i < len(resumen.Grupos); i++ {
		if resumen.Grupos[i-1].TotalMXN < resumen.Grupos[i].TotalMXN {
			t.Errorf("groups not sorted descending at index %d", i)
		}
	}
}

func TestResumenAgrupadoSingleDimensionMatchesNivel1(t *testing.T) {
	partidas := partidasDePrueba()
	agrupado := ResumenAgrupado(partidas, []Dimension{DimCategoria})
	nivel1 := ResumenProyecto(partidas)

	if len(agrupado.Grupos) != len(nivel1.Categorias) {
		t.Fatalf("group count %d != category count %d", len(agrupado.Grupos), len(nivel1.Categorias))
	}
	for i, g := range agrupado.Grupos {
		cat := nivel1.Categorias[i]
		if g.Campos["categoria"] != cat.Categoria {
			t.Errorf("group %d = %q, want %q", i, g.Campos["categoria"], cat.Categoria)
		}
		if !almostEqual(g.TotalMXN, cat.TotalMXN) {
			t.Errorf("%s: group total %v != category total %v", cat.Categoria, g.TotalMXN, cat.TotalMXN)
		}
	}
}
