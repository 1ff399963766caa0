package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetTiposCambio godoc
// @Summary      List exchange rates against MXN
// @Tags         tipos-cambio
// @Produce      json
// @Success      200  {array}   models.TipoCambio
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/tipos-cambio [get]
func GetTiposCambio(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := db.Query(`SELECT id, moneda, valor FROM tipos_cambio ORDER BY moneda`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching exchange rates", "details": err.Error()})
			return
		}
		defer rows.Close()

		tipos := []models.TipoCambio{}
		for rows.Next() {
			var t models.TipoCambio
			var valor float64
			if err := rows.Scan(&t.ID, &t.Moneda, &valor); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning exchange rate", "details": err.Error()})
				return
			}
			t.Valor = models.FlexFloat(valor)
			tipos = append(tipos, t)
		}

		c.JSON(http.StatusOK, tipos)
	}
}

// UpsertTipoCambio godoc
// @Summary      Set the current rate for a currency
// @Description  Overwrites any previous value; no history is kept. Existing lines keep the rate frozen at their write time.
// @Tags         tipos-cambio
// @Accept       json
// @Produce      json
// @Success      200  {object}  utils.Response
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/tipos-cambio [put]
func UpsertTipoCambio(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.TipoCambio
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Moneda y valor son requeridos"})
			return
		}
		if input.Valor.Float64() <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El valor debe ser positivo"})
			return
		}

		_, err := db.Exec(`
			INSERT INTO tipos_cambio (moneda, valor) VALUES ($1, $2)
			ON CONFLICT (moneda) DO UPDATE SET valor = EXCLUDED.valor`,
			input.Moneda, input.Valor.Float64())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving exchange rate", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
