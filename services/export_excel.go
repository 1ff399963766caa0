package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"backend/models"
)

// partida sheet column order, mirrors the import layout
var columnasExport = []string{
	"CATEGORIA", "CONCEPTO", "DETALLE", "PROVEEDOR", "UNIDAD", "CANTIDAD",
	"MONEDA", "UNITARIO", "IMPORTE SIN IVA", "% SOBRECOSTO", "TOTAL SOBRECOSTO",
	"% IVA", "$ IVA", "IMPORTE TOTAL", "T.C", "TOTAL MXN", "NOTAS",
	"PARAMETRO", "TORRE", "PISO", "DEPTO",
}

// GenerarExcelPresupuesto builds the budget workbook of a project: a
// Resumen sheet with the category rollup and a BD sheet with every line in
// the same column layout the importer reads, so an exported file can be
// re-imported unchanged.
func GenerarExcelPresupuesto(proyecto models.Proyecto, partidas []models.Partida) (*excelize.File, error) {
	f := excelize.NewFile()

	resumenSheet := "Resumen"
	index, err := f.NewSheet(resumenSheet)
	if err != nil {
		return nil, fmt.Errorf("could not create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)

	bdSheet := "BD"
	if _, err := f.NewSheet(bdSheet); err != nil {
		return nil, fmt.Errorf("could not create data sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   14,
			Family: "Arial",
			Color:  "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Family: "Arial"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9E1F2"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create header style: %w", err)
	}

	resumen := ResumenProyecto(partidas)

	f.SetCellValue(resumenSheet, "A1", fmt.Sprintf("Presupuesto %s", proyecto.Nombre))
	f.SetCellStyle(resumenSheet, "A1", "C1", titleStyle)
	f.SetCellValue(resumenSheet, "A2", "Partidas")
	f.SetCellValue(resumenSheet, "B2", resumen.TotalPartidas)
	f.SetCellValue(resumenSheet, "A3", "Categorias")
	f.SetCellValue(resumenSheet, "B3", resumen.NumCategorias)
	f.SetCellValue(resumenSheet, "A4", "Total MXN")
	f.SetCellValue(resumenSheet, "B4", resumen.TotalProyecto)

	f.SetCellValue(resumenSheet, "A6", "CATEGORIA")
	f.SetCellValue(resumenSheet, "B6", "PARTIDAS")
	f.SetCellValue(resumenSheet, "C6", "TOTAL MXN")
	f.SetCellStyle(resumenSheet, "A6", "C6", headerStyle)
	for i, cat := range resumen.Categorias {
		fila := 7 + i
		f.SetCellValue(resumenSheet, fmt.Sprintf("A%d", fila), cat.Categoria)
		f.SetCellValue(resumenSheet, fmt.Sprintf("B%d", fila), cat.NumPartidas)
		f.SetCellValue(resumenSheet, fmt.Sprintf("C%d", fila), cat.TotalMXN)
	}

	for i, col := range columnasExport {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(bdSheet, celda, col)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columnasExport), 1)
	f.SetCellStyle(bdSheet, "A1", lastHeader, headerStyle)

	for i, p := range partidas {
		valores := []interface{}{
			p.Categoria, p.Concepto, p.Detalle, p.Proveedor, p.Unidad, p.Cantidad,
			p.Moneda, p.Unitario, p.ImporteSinIVA, p.SobrecostoPct, p.SobrecostoMonto,
			p.IVAPct, p.IVAMonto, p.ImporteTotal, p.TipoCambio, p.TotalMXN, p.Notas,
			p.EsParametro, p.Torre, p.Piso, p.Depto,
		}
		for j, v := range valores {
			celda, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(bdSheet, celda, v)
		}
	}

	return f, nil
}
