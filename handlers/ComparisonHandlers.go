package handlers

import (
	"backend/services"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProveedores godoc
// @Summary      List distinct vendors that have quotations
// @Tags         comparacion
// @Produce      json
// @Success      200  {array}   string
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proveedores [get]
func GetProveedores(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`
			SELECT DISTINCT proveedor FROM cotizaciones
			WHERE proveedor <> ''
			ORDER BY proveedor`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching vendors", "details": err.Error()})
			return
		}
		defer rows.Close()

		proveedores := []string{}
		for rows.Next() {
			var proveedor string
			if err := rows.Scan(&proveedor); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning vendor", "details": err.Error()})
				return
			}
			proveedores = append(proveedores, proveedor)
		}

		c.JSON(http.StatusOK, proveedores)
	}
}

// GetComparacionUnitarios godoc
// @Summary      Compare a vendor's unit prices across projects
// @Description  Groups the vendor's quoted items by normalized description and reports min, max and diferencia_pct per group. A vendor with no quotations yields an empty result.
// @Tags         comparacion
// @Produce      json
// @Param        proveedor  query  string  true   "Vendor name (exact match)"
// @Param        categoria  query  string  false  "Restrict to quotations tagged with this category"
// @Success      200  {object}  models.ComparacionUnitarios
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/comparacion-unitarios [get]
func GetComparacionUnitarios(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proveedor := c.Query("proveedor")
		if proveedor == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El proveedor es requerido"})
			return
		}

		resultado, err := services.CompararProveedor(db, proveedor, c.Query("categoria"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error comparing prices", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resultado)
	}
}
