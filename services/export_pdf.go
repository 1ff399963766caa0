package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"backend/models"
)

// GenerarPDFPresupuesto renders the budget report of a project: title block,
// category rollup table, then one table per category with its concept
// totals. Returns the encoded PDF bytes.
func GenerarPDFPresupuesto(proyecto models.Proyecto, partidas []models.Partida) ([]byte, error) {
	titleCaser := cases.Title(language.Und)
	resumen := ResumenProyecto(partidas)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(10, 10, 10)

	// --- Header ---
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, fmt.Sprintf("Presupuesto - %s", titleCaser.String(proyecto.Nombre)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if proyecto.Descripcion != "" {
		pdf.MultiCell(190, 6, proyecto.Descripcion, "", "", false)
		pdf.Ln(4)
	}
	pdf.Cell(95, 6, fmt.Sprintf("Partidas: %d", resumen.TotalPartidas))
	pdf.Cell(95, 6, fmt.Sprintf("Categorias: %d", resumen.NumCategorias))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(190, 8, fmt.Sprintf("Total: $%.2f MXN", resumen.TotalProyecto))
	pdf.Ln(12)

	// --- Category rollup ---
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(100, 8, "Categoria", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Partidas", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 8, "Total MXN", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, cat := range resumen.Categorias {
		pdf.CellFormat(100, 8, titleCaser.String(cat.Categoria), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", cat.NumPartidas), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 8, fmt.Sprintf("%.2f", cat.TotalMXN), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	// --- Concept breakdown per category ---
	for _, cat := range resumen.Categorias {
		conceptos := ResumenConceptos(partidas, cat.Categoria)

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, titleCaser.String(cat.Categoria))
		pdf.Ln(9)

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(100, 7, "Concepto", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 7, "Partidas", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Total MXN", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, con := range conceptos.Conceptos {
			nombre := con.Concepto
			if nombre == "" {
				nombre = "(sin concepto)"
			}
			pdf.CellFormat(100, 7, nombre, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", con.NumPartidas), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 7, fmt.Sprintf("%.2f", con.TotalMXN), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("could not render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
