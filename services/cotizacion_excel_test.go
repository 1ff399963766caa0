package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			celda, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, celda, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestExtraerItemsExcel(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"COTIZACION PLOMERIA"},
		{},
		{"Clave", "Descripcion", "Unidad", "Cantidad", "Precio Unitario", "Importe"},
		{"TUB-401", "Tubo PVC 4 pulgadas", "ML", 100, 150.5, 15050},
		{"COD-90", "Codo 90 grados 4 pulg", "PZA", 20, 45, 900},
		{"", "SUBTOTAL", "", "", "", 15950},
	})

	resultado, err := ExtraerItemsExcel(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(resultado.Items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(resultado.Items), resultado.Items)
	}

	item := resultado.Items[0]
	if item.Codigo != "TUB-401" {
		t.Errorf("Codigo = %q", item.Codigo)
	}
	if item.Descripcion != "Tubo PVC 4 pulgadas" {
		t.Errorf("Descripcion = %q", item.Descripcion)
	}
	if item.Unidad != "ML" {
		t.Errorf("Unidad = %q", item.Unidad)
	}
	if !almostEqual(item.Cantidad, 100) || !almostEqual(item.PrecioUnitario, 150.5) || !almostEqual(item.Importe, 15050) {
		t.Errorf("numbers = %v %v %v", item.Cantidad, item.PrecioUnitario, item.Importe)
	}
}

func TestExtraerItemsExcelSkipsRowsWithoutCode(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"Codigo", "Descripcion", "Cantidad", "Precio"},
		{"A-1", "Producto completo valido", 5, 100},
		{"", "Fila de subtotal sin codigo", "", 500},
	})

	resultado, err := ExtraerItemsExcel(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(resultado.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resultado.Items))
	}
	if resultado.Items[0].Codigo != "A-1" {
		t.Errorf("Codigo = %q", resultado.Items[0].Codigo)
	}
}

func TestExtraerItemsExcelShortDescriptionsSkipped(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"Codigo", "Descripcion", "Cantidad", "Precio"},
		{"A-1", "Tubo", 5, 100},
		{"A-2", "Tubo PVC largo", 5, 100},
	})

	resultado, err := ExtraerItemsExcel(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(resultado.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(resultado.Items))
	}
	if resultado.Items[0].Codigo != "A-2" {
		t.Errorf("Codigo = %q", resultado.Items[0].Codigo)
	}
}

func TestExtraerItemsExcelNoDescriptionColumn(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"Columna A", "Columna B"},
		{"dato", "dato"},
	})

	resultado, err := ExtraerItemsExcel(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(resultado.Items) != 0 {
		t.Errorf("got %d items, want 0", len(resultado.Items))
	}
	if len(resultado.Errores) == 0 {
		t.Error("expected an extraction error to be reported")
	}
}

func TestParsePartidasExcel(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"PRESUPUESTO LOTE 3"},
		{"CATEGORIA", "CONCEPTO", "DETALLE", "PROVEEDOR", "UNIDAD", "CANTIDAD", "MONEDA", "UNITARIO", "% SOBRECOSTO", "% IVA", "T.C", "NOTAS", "PARAMETRO", "TORRE", "PISO", "DEPTO"},
		{"ALBANILERIA", "MUROS", "Muro block 15cm", "Constructora MX", "M2", 120.5, "MXN", 350, 0.1, 0.16, "", "", "PRESUPUESTO", "A", "3", "301"},
		{"", "fila sin categoria se salta"},
		{"INSTALACIONES", "HIDRAULICA", "Tubo PVC", "Plomeria SA", "ML", 100, "USD", 7.5, 0, 0.16, 20.5, "", "", "B", "1", ""},
	})

	partidas, _, err := ParsePartidasExcel(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(partidas) != 2 {
		t.Fatalf("got %d partidas, want 2", len(partidas))
	}

	p := partidas[0]
	if p.Categoria != "ALBANILERIA" || p.Concepto != "MUROS" {
		t.Errorf("classification = %q/%q", p.Categoria, p.Concepto)
	}
	if !almostEqual(p.Cantidad.Float64(), 120.5) || !almostEqual(p.Unitario.Float64(), 350) {
		t.Errorf("cantidad/unitario = %v/%v", p.Cantidad, p.Unitario)
	}
	if !almostEqual(p.SobrecostoPct.Float64(), 0.1) || !almostEqual(p.IVAPct.Float64(), 0.16) {
		t.Errorf("pct = %v/%v", p.SobrecostoPct, p.IVAPct)
	}
	if p.Torre != "A" || p.Piso != "3" || p.Depto != "301" {
		t.Errorf("location = %q/%q/%q", p.Torre, p.Piso, p.Depto)
	}

	p2 := partidas[1]
	if p2.Moneda != "USD" || !almostEqual(p2.TipoCambio.Float64(), 20.5) {
		t.Errorf("moneda/tc = %q/%v", p2.Moneda, p2.TipoCambio)
	}
	if p2.EsParametro != "PRESUPUESTO" {
		t.Errorf("EsParametro = %q, want default PRESUPUESTO", p2.EsParametro)
	}
}

func TestParsePartidasExcelMissingHeader(t *testing.T) {
	r := workbookBytes(t, [][]interface{}{
		{"hoja sin encabezados"},
		{"dato", "dato"},
	})

	if _, _, err := ParsePartidasExcel(r); err == nil {
		t.Fatal("expected error for workbook without header row")
	}
}
