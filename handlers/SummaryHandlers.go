package handlers

import (
	"backend/repository"
	"backend/services"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// location filters shared by every summary level
func filtroResumen(c *gin.Context) repository.PartidaFiltro {
	return repository.PartidaFiltro{
		Torre: c.Query("torre"),
		Piso:  c.Query("piso"),
		Depto: c.Query("depto"),
	}
}

// GetResumenProyecto godoc
// @Summary      Level-1 summary: category totals
// @Tags         resumen
// @Produce      json
// @Param        id     path   int     true   "Project ID"
// @Param        torre  query  string  false  "Filter by tower"
// @Param        piso   query  string  false  "Filter by floor"
// @Param        depto  query  string  false  "Filter by unit"
// @Success      200  {object}  models.ResumenProyecto
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/resumen [get]
func GetResumenProyecto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		partidas, err := repository.FetchPartidas(db, proyectoID, filtroResumen(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, services.ResumenProyecto(partidas))
	}
}

// GetResumenConceptos godoc
// @Summary      Level-2 summary: concept totals within a category
// @Description  An unknown category yields an empty result, not an error
// @Tags         resumen
// @Produce      json
// @Param        id         path   int     true   "Project ID"
// @Param        categoria  path   string  true   "Category name"
// @Param        torre      query  string  false  "Filter by tower"
// @Param        piso       query  string  false  "Filter by floor"
// @Param        depto      query  string  false  "Filter by unit"
// @Success      200  {object}  models.ResumenConceptos
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/resumen/{categoria} [get]
func GetResumenConceptos(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}
		categoria := c.Param("categoria")

		partidas, err := repository.FetchPartidas(db, proyectoID, filtroResumen(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, services.ResumenConceptos(partidas, categoria))
	}
}

// GetDetalleConcepto godoc
// @Summary      Level-3 detail: raw lines of a category+concept pair
// @Tags         resumen
// @Produce      json
// @Param        id         path   int     true   "Project ID"
// @Param        categoria  path   string  true   "Category name"
// @Param        concepto   path   string  true   "Concept name"
// @Param        torre      query  string  false  "Filter by tower"
// @Param        piso       query  string  false  "Filter by floor"
// @Param        depto      query  string  false  "Filter by unit"
// @Success      200  {object}  models.DetalleConcepto
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/resumen/{categoria}/{concepto} [get]
func GetDetalleConcepto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}
		categoria := c.Param("categoria")
		concepto := c.Param("concepto")

		partidas, err := repository.FetchPartidas(db, proyectoID, filtroResumen(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, services.DetalleConcepto(partidas, categoria, concepto))
	}
}

// GetResumenAgrupado godoc
// @Summary      Arbitrary group-by summary
// @Description  campos is a comma separated list of categoria, concepto, proveedor, torre, piso, depto, moneda, es_parametro. Unknown names are dropped; an empty list groups by categoria.
// @Tags         resumen
// @Produce      json
// @Param        id      path   int     true   "Project ID"
// @Param        campos  query  string  false  "Comma separated grouping fields"
// @Param        torre   query  string  false  "Filter by tower"
// @Param        piso    query  string  false  "Filter by floor"
// @Param        depto   query  string  false  "Filter by unit"
// @Success      200  {object}  models.ResumenAgrupado
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/resumen-agrupado [get]
func GetResumenAgrupado(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var campos []string
		if raw := c.Query("campos"); raw != "" {
			campos = strings.Split(raw, ",")
		}
		dims := services.ParseDimensions(campos)

		partidas, err := repository.FetchPartidas(db, proyectoID, filtroResumen(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, services.ResumenAgrupado(partidas, dims))
	}
}
