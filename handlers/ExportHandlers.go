package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func fetchProyecto(db *sql.DB, proyectoID int) (models.Proyecto, error) {
	var proyecto models.Proyecto
	err := db.QueryRow(`
		SELECT id, nombre, descripcion, fecha_creacion, fecha_modificacion
		FROM proyectos WHERE id = $1`, proyectoID).
		Scan(&proyecto.ID, &proyecto.Nombre, &proyecto.Descripcion,
			&proyecto.FechaCreacion, &proyecto.FechaModificacion)
	return proyecto, err
}

// Build a filename safe for Content-Disposition from the project name
// (sanitize and support UTF-8).
func safeFilename(nombre string) string {
	safe := strings.TrimSpace(nombre)
	safe = strings.ReplaceAll(safe, " ", "_")
	for _, ch := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		safe = strings.ReplaceAll(safe, ch, "-")
	}
	return safe
}

// ExportProyectoExcel godoc
// @Summary      Download a project budget as an Excel workbook
// @Description  Produces a workbook with a Resumen sheet (per-category rollup) and a BD sheet with every budget line, in the same column layout the importer accepts.
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        id   path  int  true  "Project ID"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/export/excel [get]
func ExportProyectoExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		proyecto, err := fetchProyecto(db, proyectoID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching project", "details": err.Error()})
			return
		}

		partidas, err := repository.FetchPartidas(db, proyectoID, repository.PartidaFiltro{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		f, err := services.GenerarExcelPresupuesto(proyecto, partidas)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating Excel file", "details": err.Error()})
			return
		}

		filename := fmt.Sprintf("presupuesto_%s_%d.xlsx", safeFilename(proyecto.Nombre), proyecto.ID)
		escaped := url.PathEscape(filename)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, escaped))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}

// ExportProyectoPDF godoc
// @Summary      Download a project budget summary as PDF
// @Tags         export
// @Produce      application/pdf
// @Param        id   path  int  true  "Project ID"
// @Success      200  {file}    file
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/export/pdf [get]
func ExportProyectoPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		proyecto, err := fetchProyecto(db, proyectoID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching project", "details": err.Error()})
			return
		}

		partidas, err := repository.FetchPartidas(db, proyectoID, repository.PartidaFiltro{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		pdfBytes, err := services.GenerarPDFPresupuesto(proyecto, partidas)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating PDF", "details": err.Error()})
			return
		}

		filename := fmt.Sprintf("presupuesto_%s_%d.pdf", safeFilename(proyecto.Nombre), proyecto.ID)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
	}
}

// ImportPartidasExcel godoc
// @Summary      Import budget lines from an Excel workbook
// @Description  Replaces all existing budget lines of the project with the rows parsed from the uploaded workbook. Costs are recomputed server side; monetary columns in the sheet are ignored.
// @Tags         export
// @Accept       multipart/form-data
// @Produce      json
// @Param        id       path      int   true  "Project ID"
// @Param        archivo  formData  file  true  "Excel workbook with a BD sheet"
// @Success      200  {object}  services.ImportResultado
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/import/excel [post]
func ImportPartidasExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		if _, err := fetchProyecto(db, proyectoID); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching project", "details": err.Error()})
			return
		}

		file, handler, err := c.Request.FormFile("archivo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(handler.Filename))
		if ext != ".xlsx" && ext != ".xls" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Solo se aceptan archivos Excel (.xlsx, .xls)"})
			return
		}

		partidas, errores, err := services.ParsePartidasExcel(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error parsing Excel file", "details": err.Error()})
			return
		}

		resultado, err := services.ImportarPartidas(db, proyectoID, partidas, services.DBRateProvider{DB: db})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error importing partidas", "details": err.Error()})
			return
		}
		resultado.Errores = append(errores, resultado.Errores...)
		resultado.PartidasError += len(errores)

		c.JSON(http.StatusOK, resultado)
	}
}
