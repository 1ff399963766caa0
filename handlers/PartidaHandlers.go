package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/utils"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func filtroFromQuery(c *gin.Context) repository.PartidaFiltro {
	return repository.PartidaFiltro{
		Categoria: c.Query("categoria"),
		Concepto:  c.Query("concepto"),
		Torre:     c.Query("torre"),
		Piso:      c.Query("piso"),
		Depto:     c.Query("depto"),
	}
}

// GetPartidas godoc
// @Summary      List budget lines of a project
// @Tags         partidas
// @Produce      json
// @Param        id         path   int     true   "Project ID"
// @Param        categoria  query  string  false  "Filter by category"
// @Param        concepto   query  string  false  "Filter by concept"
// @Param        torre      query  string  false  "Filter by tower"
// @Param        piso       query  string  false  "Filter by floor"
// @Param        depto      query  string  false  "Filter by unit"
// @Success      200  {array}   models.Partida
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/partidas [get]
func GetPartidas(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		partidas, err := repository.FetchPartidas(db, proyectoID, filtroFromQuery(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partidas", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, partidas)
	}
}

// GetPartida godoc
// @Summary      Get one budget line
// @Tags         partidas
// @Produce      json
// @Param        id   path      int  true  "Partida ID"
// @Success      200  {object}  models.Partida
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/partidas/{id} [get]
func GetPartida(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		partidaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partida id"})
			return
		}

		partida, err := repository.GetPartidaByID(db, partidaID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partida no encontrada"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching partida", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, partida)
	}
}

// CreatePartida godoc
// @Summary      Create a budget line
// @Description  Monetary fields are derived server side; values sent for them are ignored
// @Tags         partidas
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Project ID"
// @Param        partida  body  models.PartidaInput  true  "Line data"
// @Success      201  {object}  models.Partida
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/partidas [post]
func CreatePartida(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var input models.PartidaInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		normalizePartidaInput(&input)

		rates := services.DBRateProvider{DB: db}
		tipoCambio := services.ResolverTipoCambio(rates, input.Moneda, input.TipoCambio.Float64())
		costos := services.CalcularCostos(services.CostosInput{
			Cantidad:      input.Cantidad.Float64(),
			Unitario:      input.Unitario.Float64(),
			SobrecostoPct: input.SobrecostoPct.Float64(),
			IVAPct:        input.IVAPct.Float64(),
			TipoCambio:    tipoCambio,
		})

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var partidaID int
		err = db.QueryRowContext(ctx, `
			INSERT INTO partidas (
				proyecto_id, categoria, concepto, detalle, proveedor, unidad,
				cantidad, moneda, unitario, importe_sin_iva, sobrecosto_pct,
				sobrecosto_monto, iva_pct, iva_monto, importe_total, tipo_cambio,
				total_mxn, notas, es_parametro, torre, piso, depto
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
			RETURNING id`,
			proyectoID, input.Categoria, input.Concepto, input.Detalle, input.Proveedor, input.Unidad,
			input.Cantidad.Float64(), input.Moneda, input.Unitario.Float64(), costos.ImporteSinIVA, input.SobrecostoPct.Float64(),
			costos.SobrecostoMonto, input.IVAPct.Float64(), costos.IVAMonto, costos.ImporteTotal, costos.TipoCambio,
			costos.TotalMXN, input.Notas, input.EsParametro, input.Torre, input.Piso, input.Depto,
		).Scan(&partidaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating partida", "details": err.Error()})
			return
		}

		partida, err := repository.GetPartidaByID(db, partidaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching created partida", "details": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, partida)
	}
}

// UpdatePartida godoc
// @Summary      Update a budget line
// @Description  Full recompute of derived fields on every update
// @Tags         partidas
// @Accept       json
// @Produce      json
// @Param        id       path  int                  true  "Partida ID"
// @Param        partida  body  models.PartidaInput  true  "Line data"
// @Success      200  {object}  models.Partida
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/partidas/{id} [put]
func UpdatePartida(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		partidaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partida id"})
			return
		}

		var input models.PartidaInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		normalizePartidaInput(&input)

		rates := services.DBRateProvider{DB: db}
		tipoCambio := services.ResolverTipoCambio(rates, input.Moneda, input.TipoCambio.Float64())
		costos := services.CalcularCostos(services.CostosInput{
			Cantidad:      input.Cantidad.Float64(),
			Unitario:      input.Unitario.Float64(),
			SobrecostoPct: input.SobrecostoPct.Float64(),
			IVAPct:        input.IVAPct.Float64(),
			TipoCambio:    tipoCambio,
		})

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		result, err := db.ExecContext(ctx, `
			UPDATE partidas SET
				categoria = $1, concepto = $2, detalle = $3, proveedor = $4, unidad = $5,
				cantidad = $6, moneda = $7, unitario = $8, importe_sin_iva = $9,
				sobrecosto_pct = $10, sobrecosto_monto = $11, iva_pct = $12, iva_monto = $13,
				importe_total = $14, tipo_cambio = $15, total_mxn = $16, notas = $17,
				es_parametro = $18, torre = $19, piso = $20, depto = $21,
				fecha_modificacion = NOW()
			WHERE id = $22`,
			input.Categoria, input.Concepto, input.Detalle, input.Proveedor, input.Unidad,
			input.Cantidad.Float64(), input.Moneda, input.Unitario.Float64(), costos.ImporteSinIVA,
			input.SobrecostoPct.Float64(), costos.SobrecostoMonto, input.IVAPct.Float64(), costos.IVAMonto,
			costos.ImporteTotal, costos.TipoCambio, costos.TotalMXN, input.Notas,
			input.EsParametro, input.Torre, input.Piso, input.Depto, partidaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating partida", "details": err.Error()})
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Partida no encontrada"})
			return
		}

		partida, err := repository.GetPartidaByID(db, partidaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching updated partida", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, partida)
	}
}

// DeletePartida godoc
// @Summary      Delete a budget line
// @Tags         partidas
// @Produce      json
// @Param        id   path      int  true  "Partida ID"
// @Success      200  {object}  utils.Response
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/partidas/{id} [delete]
func DeletePartida(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		partidaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid partida id"})
			return
		}

		if _, err := db.Exec(`DELETE FROM partidas WHERE id = $1`, partidaID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting partida", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func normalizePartidaInput(input *models.PartidaInput) {
	if input.Moneda == "" {
		input.Moneda = "MXN"
	}
	if input.EsParametro == "" {
		input.EsParametro = "PRESUPUESTO"
	}
}

// GetCategoriasDePartidas godoc
// @Summary      List distinct categories used by a project's lines
// @Tags         partidas
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {array}   string
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/categorias [get]
func GetCategoriasDePartidas(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		rows, err := db.Query(`
			SELECT DISTINCT categoria FROM partidas
			WHERE proyecto_id = $1 AND categoria <> ''
			ORDER BY categoria`, proyectoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching categories", "details": err.Error()})
			return
		}
		defer rows.Close()

		categorias := []string{}
		for rows.Next() {
			var categoria string
			if err := rows.Scan(&categoria); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning category", "details": err.Error()})
				return
			}
			categorias = append(categorias, categoria)
		}

		c.JSON(http.StatusOK, categorias)
	}
}

// GetConceptosDePartidas godoc
// @Summary      List distinct concepts used by a project's lines
// @Tags         partidas
// @Produce      json
// @Param        id         path   int     true   "Project ID"
// @Param        categoria  query  string  false  "Restrict to one category"
// @Success      200  {array}   string
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/conceptos [get]
func GetConceptosDePartidas(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		query := `
			SELECT DISTINCT concepto FROM partidas
			WHERE proyecto_id = $1 AND concepto <> ''`
		args := []interface{}{proyectoID}
		if categoria := c.Query("categoria"); categoria != "" {
			query += ` AND categoria = $2`
			args = append(args, categoria)
		}
		query += ` ORDER BY concepto`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching concepts", "details": err.Error()})
			return
		}
		defer rows.Close()

		conceptos := []string{}
		for rows.Next() {
			var concepto string
			if err := rows.Scan(&concepto); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning concept", "details": err.Error()})
				return
			}
			conceptos = append(conceptos, concepto)
		}

		c.JSON(http.StatusOK, conceptos)
	}
}
