package services

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/shockerli/cvt"
	"github.com/xuri/excelize/v2"

	"backend/models"
	"backend/utils"
)

// ImportResultado summarizes an Excel budget import.
type ImportResultado struct {
	ProyectoID         int      `json:"proyecto_id"`
	PartidasImportadas int      `json:"partidas_importadas"`
	PartidasError      int      `json:"partidas_error"`
	Errores            []string `json:"errores,omitempty"`
}

// missing-value markers commonly found in the budget sheets
var valoresVacios = map[string]bool{
	"": true, "S/D": true, "N/A": true, "-": true,
}

func limpiarTexto(celda string) string {
	celda = strings.TrimSpace(celda)
	if valoresVacios[strings.ToUpper(celda)] {
		return ""
	}
	return celda
}

func limpiarNumero(celda string) float64 {
	celda = strings.ReplaceAll(strings.TrimSpace(celda), ",", "")
	celda = strings.TrimPrefix(celda, "$")
	v, err := cvt.Float64E(celda)
	if err != nil {
		return 0
	}
	return v
}

// mapearColumnas resolves header names to column indexes. Header matching is
// tolerant of the synonyms the source spreadsheets use (T.C vs TIPO CAMBIO,
// DEPTO vs DEPARTAMENTO, accent variants).
func mapearColumnas(headers []string) map[string]int {
	colMap := make(map[string]int)
	for idx, h := range headers {
		h = strings.ToUpper(strings.TrimSpace(h))
		h = strings.ReplaceAll(h, "Í", "I")
		switch {
		case strings.Contains(h, "CATEGORIA"):
			colMap["categoria"] = idx
		case h == "CONCEPTO":
			colMap["concepto"] = idx
		case h == "DETALLE":
			colMap["detalle"] = idx
		case h == "PROVEEDOR":
			colMap["proveedor"] = idx
		case h == "UNIDAD":
			colMap["unidad"] = idx
		case h == "CANTIDAD":
			colMap["cantidad"] = idx
		case h == "MONEDA":
			colMap["moneda"] = idx
		case strings.Contains(h, "UNITARIO"):
			colMap["unitario"] = idx
		case h == "SOBRECOSTO" || h == "% SOBRECOSTO":
			colMap["sobrecosto_pct"] = idx
		case h == "% IVA":
			colMap["iva_pct"] = idx
		case h == "T.C" || h == "T.C." || h == "TC" || h == "TIPO CAMBIO":
			colMap["tipo_cambio"] = idx
		case h == "NOTAS":
			colMap["notas"] = idx
		case strings.Contains(h, "PARAMETR") || strings.Contains(h, "PPTO"):
			colMap["es_parametro"] = idx
		case h == "TORRE":
			colMap["torre"] = idx
		case h == "PISO":
			colMap["piso"] = idx
		case h == "DEPTO" || h == "DEPARTAMENTO":
			colMap["depto"] = idx
		}
	}
	return colMap
}

func celdaDe(row []string, colMap map[string]int, campo string) string {
	idx, ok := colMap[campo]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// ParsePartidasExcel reads a budget workbook and returns the line inputs it
// contains. It scans the "BD" sheet if present (first sheet otherwise) for a
// header row containing CATEGORIA, maps the columns by name, and reads every
// following row that has a category. Derived monetary columns in the sheet
// are ignored; the caller recomputes them.
func ParsePartidasExcel(r io.Reader) ([]models.PartidaInput, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheet := "BD"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read sheet %q: %w", sheet, err)
	}

	headerRow := -1
	var colMap map[string]int
	for idx, row := range rows {
		for _, celda := range row {
			h := strings.ToUpper(strings.TrimSpace(celda))
			h = strings.ReplaceAll(h, "Í", "I")
			if h == "CATEGORIA" {
				headerRow = idx
				colMap = mapearColumnas(row)
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return nil, nil, fmt.Errorf("header row not found in sheet %q", sheet)
	}

	var partidas []models.PartidaInput
	var errores []string
	for idx := headerRow + 1; idx < len(rows); idx++ {
		row := rows[idx]
		categoria := limpiarTexto(celdaDe(row, colMap, "categoria"))
		if categoria == "" {
			continue
		}

		moneda := limpiarTexto(celdaDe(row, colMap, "moneda"))
		if moneda == "" {
			moneda = "MXN"
		}
		esParametro := limpiarTexto(celdaDe(row, colMap, "es_parametro"))
		if esParametro == "" {
			esParametro = "PRESUPUESTO"
		}

		partidas = append(partidas, models.PartidaInput{
			Categoria:     categoria,
			Concepto:      limpiarTexto(celdaDe(row, colMap, "concepto")),
			Detalle:       limpiarTexto(celdaDe(row, colMap, "detalle")),
			Proveedor:     limpiarTexto(celdaDe(row, colMap, "proveedor")),
			Unidad:        limpiarTexto(celdaDe(row, colMap, "unidad")),
			Cantidad:      models.FlexFloat(limpiarNumero(celdaDe(row, colMap, "cantidad"))),
			Moneda:        moneda,
			Unitario:      models.FlexFloat(limpiarNumero(celdaDe(row, colMap, "unitario"))),
			SobrecostoPct: models.FlexFloat(limpiarNumero(celdaDe(row, colMap, "sobrecosto_pct"))),
			IVAPct:        models.FlexFloat(limpiarNumero(celdaDe(row, colMap, "iva_pct"))),
			TipoCambio:    models.FlexFloat(limpiarNumero(celdaDe(row, colMap, "tipo_cambio"))),
			Notas:         limpiarTexto(celdaDe(row, colMap, "notas")),
			EsParametro:   esParametro,
			Torre:         limpiarTexto(celdaDe(row, colMap, "torre")),
			Piso:          limpiarTexto(celdaDe(row, colMap, "piso")),
			Depto:         limpiarTexto(celdaDe(row, colMap, "depto")),
		})
	}
	return partidas, errores, nil
}

// ImportarPartidas replaces a project's budget lines with the parsed ones.
// Existing lines are wiped first, then every new line is inserted with its
// monetary fields recomputed through the cost calculator. Runs in one
// transaction so a failed import leaves the project untouched.
func ImportarPartidas(db *sql.DB, proyectoID int, partidas []models.PartidaInput, rates RateProvider) (ImportResultado, error) {
	resultado := ImportResultado{ProyectoID: proyectoID}

	ctx, cancel := utils.GetSlowQueryContext(nil)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return resultado, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM partidas WHERE proyecto_id = $1", proyectoID); err != nil {
		return resultado, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO partidas (
			proyecto_id, categoria, concepto, detalle, proveedor, unidad,
			cantidad, moneda, unitario, importe_sin_iva, sobrecosto_pct,
			sobrecosto_monto, iva_pct, iva_monto, importe_total, tipo_cambio,
			total_mxn, notas, es_parametro, torre, piso, depto
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`)
	if err != nil {
		return resultado, err
	}
	defer stmt.Close()

	for i, p := range partidas {
		tipoCambio := ResolverTipoCambio(rates, p.Moneda, p.TipoCambio.Float64())
		costos := CalcularCostos(CostosInput{
			Cantidad:      p.Cantidad.Float64(),
			Unitario:      p.Unitario.Float64(),
			SobrecostoPct: p.SobrecostoPct.Float64(),
			IVAPct:        p.IVAPct.Float64(),
			TipoCambio:    tipoCambio,
		})

		_, err = stmt.ExecContext(ctx,
			proyectoID, p.Categoria, p.Concepto, p.Detalle, p.Proveedor, p.Unidad,
			p.Cantidad.Float64(), p.Moneda, p.Unitario.Float64(), costos.ImporteSinIVA, p.SobrecostoPct.Float64(),
			costos.SobrecostoMonto, p.IVAPct.Float64(), costos.IVAMonto, costos.ImporteTotal, costos.TipoCambio,
			costos.TotalMXN, p.Notas, p.EsParametro, p.Torre, p.Piso, p.Depto)
		if err != nil {
			resultado.PartidasError++
			resultado.Errores = append(resultado.Errores, fmt.Sprintf("fila %d: %v", i+1, err))
			continue
		}
		resultado.PartidasImportadas++
	}

	if err := tx.Commit(); err != nil {
		return resultado, err
	}
	return resultado, nil
}
