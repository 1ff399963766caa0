package services

import (
	"reflect"
	"testing"
)

func TestCompararUnitariosNormalization(t *testing.T) {
	// same product with messy whitespace and casing lands in one group
	items := []ItemCotizado{
		{Proyecto: "Lote 3", Descripcion: "Tubo PVC ", Unidad: "ML", PrecioUnitario: 150.5},
		{Proyecto: "Beachfront", Descripcion: "tubo pvc", Unidad: "ML", PrecioUnitario: 162},
	}

	resultado := CompararUnitarios("Plomeria SA", items)

	if len(resultado.Grupos) != 1 {
		t.Fatalf("got %d groups, want 1", len(resultado.Grupos))
	}
	g := resultado.Grupos[0]
	if g.Descripcion != "Tubo PVC " {
		t.Errorf("Descripcion = %q, want original casing of first item", g.Descripcion)
	}
	if len(g.Precios) != 2 {
		t.Errorf("Precios = %v, want 2 entries", g.Precios)
	}
	if g.MinPrecio == nil || !almostEqual(*g.MinPrecio, 150.5) {
		t.Errorf("MinPrecio = %v, want 150.5", g.MinPrecio)
	}
	if g.MaxPrecio == nil || !almostEqual(*g.MaxPrecio, 162) {
		t.Errorf("MaxPrecio = %v, want 162", g.MaxPrecio)
	}
	// (162 - 150.5) / 150.5 * 100 = 7.641..., rounded to 7.6
	if g.DiferenciaPct == nil || !almostEqual(*g.DiferenciaPct, 7.6) {
		t.Errorf("DiferenciaPct = %v, want 7.6", g.DiferenciaPct)
	}
	if !reflect.DeepEqual(resultado.Proyectos, []string{"Beachfront", "Lote 3"}) {
		t.Errorf("Proyectos = %v, want sorted list", resultado.Proyectos)
	}
}

func TestCompararUnitariosSingleProject(t *testing.T) {
	// one project can never produce a spread
	items := []ItemCotizado{
		{Proyecto: "Lote 3", Descripcion: "Cemento gris", Unidad: "TON", PrecioUnitario: 2800},
		{Proyecto: "Lote 3", Descripcion: "Varilla 3/8", Unidad: "TON", PrecioUnitario: 18500},
	}

	resultado := CompararUnitarios("Aceros SA", items)

	if len(resultado.Grupos) != 2 {
		t.Fatalf("got %d groups, want 2", len(resultado.Grupos))
	}
	for _, g := range resultado.Grupos {
		if g.DiferenciaPct != nil {
			t.Errorf("%q: DiferenciaPct = %v, want nil", g.Descripcion, *g.DiferenciaPct)
		}
		if g.MinPrecio != nil || g.MaxPrecio != nil {
			t.Errorf("%q: min/max should not be set", g.Descripcion)
		}
	}
}

func TestCompararUnitariosFirstPriceWins(t *testing.T) {
	items := []ItemCotizado{
		{Proyecto: "Lote 3", Descripcion: "Cemento gris", PrecioUnitario: 2800},
		{Proyecto: "Lote 3", Descripcion: "CEMENTO GRIS", PrecioUnitario: 9999},
	}

	resultado := CompararUnitarios("Aceros SA", items)

	if len(resultado.Grupos) != 1 {
		t.Fatalf("got %d groups, want 1", len(resultado.Grupos))
	}
	if precio := resultado.Grupos[0].Precios["Lote 3"]; !almostEqual(precio, 2800) {
		t.Errorf("price = %v, want first encountered 2800", precio)
	}
}

func TestCompararUnitariosZeroPriceExcluded(t *testing.T) {
	// zero is unreliable, so two projects with {0, 150} produce no spread
	items := []ItemCotizado{
		{Proyecto: "Lote 3", Descripcion: "Tubo PVC", PrecioUnitario: 0},
		{Proyecto: "Beachfront", Descripcion: "Tubo PVC", PrecioUnitario: 150},
	}

	resultado := CompararUnitarios("Plomeria SA", items)

	if len(resultado.Grupos) != 1 {
		t.Fatalf("got %d groups, want 1", len(resultado.Grupos))
	}
	if resultado.Grupos[0].DiferenciaPct != nil {
		t.Errorf("DiferenciaPct = %v, want nil", *resultado.Grupos[0].DiferenciaPct)
	}
}

func TestCompararUnitariosEmptyDescriptionDropped(t *testing.T) {
	items := []ItemCotizado{
		{Proyecto: "Lote 3", Descripcion: "   ", PrecioUnitario: 100},
		{Proyecto: "Lote 3", Descripcion: "", PrecioUnitario: 200},
		{Proyecto: "Lote 3", Descripcion: "Cemento", PrecioUnitario: 2800},
	}

	resultado := CompararUnitarios("Aceros SA", items)
	if len(resultado.Grupos) != 1 {
		t.Errorf("got %d groups, want 1", len(resultado.Grupos))
	}
}

func TestCompararUnitariosSortedByDifference(t *testing.T) {
	items := []ItemCotizado{
		// 10% spread
		{Proyecto: "Lote 3", Descripcion: "Cemento", PrecioUnitario: 100},
		{Proyecto: "Beachfront", Descripcion: "Cemento", PrecioUnitario: 110},
		// no spread (single project)
		{Proyecto: "Lote 3", Descripcion: "Arena", PrecioUnitario: 500},
		// 50% spread
		{Proyecto: "Lote 3", Descripcion: "Grava", PrecioUnitario: 200},
		{Proyecto: "Beachfront", Descripcion: "Grava", PrecioUnitario: 300},
	}

	resultado := CompararUnitarios("Materiales SA", items)

	if len(resultado.Grupos) != 3 {
		t.Fatalf("got %d groups, want 3", len(resultado.Grupos))
	}
	want := []string{"Grava", "Cemento", "Arena"}
	for i, descripcion := range want {
		if resultado.Grupos[i].Descripcion != descripcion {
			t.Errorf("position %d = %q, want %q", i, resultado.Grupos[i].Descripcion, descripcion)
		}
	}
}

func TestCompararUnitariosEmptyInput(t *testing.T) {
	resultado := CompararUnitarios("Nadie SA", nil)

	if resultado.Proveedor != "Nadie SA" {
		t.Errorf("Proveedor = %q", resultado.Proveedor)
	}
	if len(resultado.Grupos) != 0 {
		t.Errorf("got %d groups, want 0", len(resultado.Grupos))
	}
	if len(resultado.Proyectos) != 0 {
		t.Errorf("got %d projects, want 0", len(resultado.Proyectos))
	}
}
