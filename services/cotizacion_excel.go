package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"backend/models"
)

// header keywords that identify a quotation item table
var palabrasEncabezado = []string{
	"descripcion", "clave", "codigo", "cantidad",
	"precio", "total", "unidad", "importe",
}

// column synonyms per field, matched by substring against the header row
var sinonimosColumna = map[string][]string{
	"codigo":          {"clave", "codigo", "cve", "partida", "no."},
	"descripcion":     {"descripcion", "concepto"},
	"unidad":          {"unidad", "um", "unid", "u"},
	"cantidad":        {"cantidad", "cant", "vol"},
	"precio_unitario": {"precio unitario", "precio", "unitario", "p.u.", "pu", "costo"},
	"importe":         {"total neto", "importe", "total", "monto", "subtotal"},
}

// rows whose description is one of these are table furniture, not items
var palabrasIgnorar = map[string]bool{
	"descripcion": true, "concepto": true, "total": true, "subtotal": true,
	"iva": true, "suma": true, "gran total": true,
}

func normalizarEncabezado(celda string) string {
	celda = strings.ToLower(strings.TrimSpace(celda))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u")
	return replacer.Replace(celda)
}

// detectarEncabezados scans the first rows of the sheet for the item table
// header: the first row matching at least two of the known header keywords
// within the first 30 rows. Falls back to row 0.
func detectarEncabezados(rows [][]string) int {
	limit := len(rows)
	if limit > 30 {
		limit = 30
	}
	for idx := 0; idx < limit; idx++ {
		matches := 0
		for _, palabra := range palabrasEncabezado {
			for _, celda := range rows[idx] {
				if strings.Contains(normalizarEncabezado(celda), palabra) {
					matches++
					break
				}
			}
		}
		if matches >= 2 {
			return idx
		}
	}
	return 0
}

func mapearColumnasCotizacion(headers []string) map[string]int {
	colMap := make(map[string]int)
	for idx, celda := range headers {
		val := normalizarEncabezado(celda)
		if val == "" {
			continue
		}
		for campo, palabras := range sinonimosColumna {
			if _, ok := colMap[campo]; ok {
				continue
			}
			for _, palabra := range palabras {
				if strings.Contains(val, palabra) {
					colMap[campo] = idx
					break
				}
			}
		}
	}
	return colMap
}

// ExtraerItemsExcel pulls quotation line items out of an uploaded
// spreadsheet. It auto-detects the header row and the column layout, then
// reads every following row that has a code, a usable description and at
// least one numeric value. Rows without a code are skipped since subtotal
// and total rows never carry one.
func ExtraerItemsExcel(r io.Reader) (models.ExtraccionResultado, error) {
	resultado := models.ExtraccionResultado{
		Items:   []models.CotizacionItem{},
		Errores: []string{},
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return resultado, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return resultado, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return resultado, nil
	}

	headerRow := detectarEncabezados(rows)
	colMap := mapearColumnasCotizacion(rows[headerRow])
	if _, ok := colMap["descripcion"]; !ok {
		resultado.Errores = append(resultado.Errores, "no description column detected")
		return resultado, nil
	}

	for idx := headerRow + 1; idx < len(rows); idx++ {
		row := rows[idx]

		descripcion := strings.TrimSpace(celdaDe(row, colMap, "descripcion"))
		if len(descripcion) < 5 || palabrasIgnorar[strings.ToLower(descripcion)] {
			continue
		}

		codigo := strings.TrimSpace(celdaDe(row, colMap, "codigo"))
		if codigo == "" {
			continue
		}

		cantidad := limpiarNumero(celdaDe(row, colMap, "cantidad"))
		precioUnitario := limpiarNumero(celdaDe(row, colMap, "precio_unitario"))
		importe := limpiarNumero(celdaDe(row, colMap, "importe"))
		if cantidad == 0 && precioUnitario == 0 && importe == 0 {
			continue
		}

		resultado.Items = append(resultado.Items, models.CotizacionItem{
			Codigo:         codigo,
			Descripcion:    descripcion,
			Unidad:         strings.TrimSpace(celdaDe(row, colMap, "unidad")),
			Cantidad:       cantidad,
			PrecioUnitario: precioUnitario,
			Importe:        importe,
		})
	}

	return resultado, nil
}
