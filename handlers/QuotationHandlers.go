package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"backend/storage"
	"database/sql"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ==================== COTIZACION CRUD OPERATIONS ====================

func scanCotizacion(rows *sql.Rows) (models.Cotizacion, error) {
	var cot models.Cotizacion
	err := rows.Scan(&cot.ID, &cot.ProyectoID, &cot.Proveedor, &cot.Archivo, &cot.Fecha,
		&cot.Moneda, &cot.Notas, &cot.NumItems, &cot.MontoTotal, &cot.FechaCreacion)
	return cot, err
}

const cotizacionColumns = `id, proyecto_id, proveedor, archivo, fecha, moneda, notas, num_items, monto_total, fecha_creacion`

// GetCotizaciones godoc
// @Summary      List quotations of a project
// @Tags         cotizaciones
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {array}   models.Cotizacion
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/cotizaciones [get]
func GetCotizaciones(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		rows, err := db.Query(`
			SELECT `+cotizacionColumns+` FROM cotizaciones
			WHERE proyecto_id = $1 ORDER BY fecha_creacion DESC`, proyectoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotations", "details": err.Error()})
			return
		}
		defer rows.Close()

		cotizaciones := []models.Cotizacion{}
		for rows.Next() {
			cot, err := scanCotizacion(rows)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning quotation", "details": err.Error()})
				return
			}
			cotizaciones = append(cotizaciones, cot)
		}

		for i := range cotizaciones {
			categorias, err := repository.GetCotizacionCategorias(db, cotizaciones[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotation categories", "details": err.Error()})
				return
			}
			cotizaciones[i].Categorias = categorias
		}

		c.JSON(http.StatusOK, cotizaciones)
	}
}

// GetCotizacion godoc
// @Summary      Get one quotation with its items
// @Tags         cotizaciones
// @Produce      json
// @Param        id   path      int  true  "Quotation ID"
// @Success      200  {object}  models.Cotizacion
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/cotizaciones/{id} [get]
func GetCotizacion(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cotizacionID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation id"})
			return
		}

		var cot models.Cotizacion
		err = db.QueryRow(`
			SELECT `+cotizacionColumns+` FROM cotizaciones WHERE id = $1`, cotizacionID).
			Scan(&cot.ID, &cot.ProyectoID, &cot.Proveedor, &cot.Archivo, &cot.Fecha,
				&cot.Moneda, &cot.Notas, &cot.NumItems, &cot.MontoTotal, &cot.FechaCreacion)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cotizacion no encontrada"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotation", "details": err.Error()})
			return
		}

		if cot.Categorias, err = repository.GetCotizacionCategorias(db, cot.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotation categories", "details": err.Error()})
			return
		}
		if cot.Items, err = repository.GetCotizacionItems(db, cot.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quotation items", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, cot)
	}
}

// CreateCotizacion godoc
// @Summary      Upload a quotation
// @Description  Multipart form with the quotation file plus proveedor, fecha, moneda, notas and a comma separated categorias field. Items are extracted from xlsx/xls files automatically; other formats store the file with no items.
// @Tags         cotizaciones
// @Accept       multipart/form-data
// @Produce      json
// @Param        id         path      int     true   "Project ID"
// @Param        archivo    formData  file    false  "Quotation file"
// @Param        proveedor  formData  string  true   "Vendor name"
// @Success      201  {object}  models.Cotizacion
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id}/cotizaciones [post]
func CreateCotizacion(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		proveedor := strings.TrimSpace(c.PostForm("proveedor"))
		if proveedor == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El proveedor es requerido"})
			return
		}
		fecha := c.PostForm("fecha")
		moneda := c.PostForm("moneda")
		if moneda == "" {
			moneda = "MXN"
		}
		notas := c.PostForm("notas")

		var categorias []string
		if raw := c.PostForm("categorias"); raw != "" {
			categorias = strings.Split(raw, ",")
		}

		archivoNombre := ""
		var extraccion models.ExtraccionResultado
		if file, handler, err := c.Request.FormFile("archivo"); err == nil {
			defer file.Close()

			ext := strings.ToLower(filepath.Ext(handler.Filename))
			if ext == ".xlsx" || ext == ".xls" {
				resultado, err := services.ExtraerItemsExcel(file)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Error extracting items", "details": err.Error()})
					return
				}
				extraccion = resultado
				if _, err := file.Seek(0, 0); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Error rewinding file"})
					return
				}
			}

			if archivoNombre, err = SaveUploadedFile(file, handler.Filename); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		var cotizacionID int
		err = db.QueryRow(`
			INSERT INTO cotizaciones (proyecto_id, proveedor, archivo, fecha, moneda, notas)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			proyectoID, proveedor, archivoNombre, fecha, moneda, notas).Scan(&cotizacionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating quotation", "details": err.Error()})
			return
		}

		if err := repository.SetCotizacionCategorias(db, cotizacionID, categorias); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving quotation categories", "details": err.Error()})
			return
		}

		for posicion, item := range extraccion.Items {
			_, err := db.Exec(`
				INSERT INTO cotizacion_items (cotizacion_id, codigo, descripcion, unidad, cantidad, precio_unitario, importe, moneda, posicion)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				cotizacionID, item.Codigo, item.Descripcion, item.Unidad,
				item.Cantidad, item.PrecioUnitario, item.Importe, moneda, posicion)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving quotation item", "details": err.Error()})
				return
			}
		}
		if err := storage.RecalcularCotizacion(db, cotizacionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":               cotizacionID,
			"folio":            repository.GenerateFolio(),
			"archivo":          archivoNombre,
			"items_extraidos":  len(extraccion.Items),
			"errores_extraccion": extraccion.Errores,
		})
	}
}

// UpdateCotizacion godoc
// @Summary      Update quotation metadata
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Quotation ID"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/cotizaciones/{id} [put]
func UpdateCotizacion(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cotizacionID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation id"})
			return
		}

		var input struct {
			Proveedor  string   `json:"proveedor" binding:"required"`
			Fecha      string   `json:"fecha"`
			Moneda     string   `json:"moneda"`
			Notas      string   `json:"notas"`
			Categorias []string `json:"categorias"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}
		if input.Moneda == "" {
			input.Moneda = "MXN"
		}

		result, err := db.Exec(`
			UPDATE cotizaciones
			SET proveedor = $1, fecha = $2, moneda = $3, notas = $4
			WHERE id = $5`,
			input.Proveedor, input.Fecha, input.Moneda, input.Notas, cotizacionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating quotation", "details": err.Error()})
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cotizacion no encontrada"})
			return
		}

		if input.Categorias != nil {
			if err := repository.SetCotizacionCategorias(db, cotizacionID, input.Categorias); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving quotation categories", "details": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "Cotizacion actualizada"})
	}
}

// DeleteCotizacion godoc
// @Summary      Delete a quotation and its items
// @Tags         cotizaciones
// @Produce      json
// @Param        id   path      int  true  "Quotation ID"
// @Success      200  {object}  utils.Response
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/cotizaciones/{id} [delete]
func DeleteCotizacion(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cotizacionID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation id"})
			return
		}

		if _, err := db.Exec(`DELETE FROM cotizaciones WHERE id = $1`, cotizacionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting quotation", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ==================== COTIZACION ITEM OPERATIONS ====================

// CreateCotizacionItem godoc
// @Summary      Add an item to a quotation
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "Quotation ID"
// @Param        item  body  models.CotizacionItemInput  true  "Item data"
// @Success      201  {object}  models.CotizacionItem
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/cotizaciones/{id}/items [post]
func CreateCotizacionItem(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cotizacionID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation id"})
			return
		}

		var input models.CotizacionItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		importe := input.Importe.Float64()
		if importe == 0 {
			importe = input.Cantidad.Float64() * input.PrecioUnitario.Float64()
		}

		var itemID int
		err = db.QueryRow(`
			INSERT INTO cotizacion_items (cotizacion_id, codigo, descripcion, unidad, cantidad, precio_unitario, importe, moneda, posicion)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
				(SELECT COALESCE(MAX(posicion), 0) + 1 FROM cotizacion_items WHERE cotizacion_id = $1))
			RETURNING id`,
			cotizacionID, input.Codigo, input.Descripcion, input.Unidad,
			input.Cantidad.Float64(), input.PrecioUnitario.Float64(), importe, input.Moneda).Scan(&itemID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating item", "details": err.Error()})
			return
		}

		if err := storage.RecalcularCotizacion(db, cotizacionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": itemID})
	}
}

// UpdateCotizacionItem godoc
// @Summary      Update a quotation item
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true  "Item ID"
// @Param        item  body  models.CotizacionItemInput  true  "Item data"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/cotizacion-items/{id} [put]
func UpdateCotizacionItem(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}

		var input models.CotizacionItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		importe := input.Importe.Float64()
		if importe == 0 {
			importe = input.Cantidad.Float64() * input.PrecioUnitario.Float64()
		}

		var cotizacionID int
		err = db.QueryRow(`
			UPDATE cotizacion_items
			SET codigo = $1, descripcion = $2, unidad = $3, cantidad = $4,
				precio_unitario = $5, importe = $6, moneda = $7
			WHERE id = $8
			RETURNING cotizacion_id`,
			input.Codigo, input.Descripcion, input.Unidad, input.Cantidad.Float64(),
			input.PrecioUnitario.Float64(), importe, input.Moneda, itemID).Scan(&cotizacionID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating item", "details": err.Error()})
			return
		}

		if err := storage.RecalcularCotizacion(db, cotizacionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item actualizado"})
	}
}

// DeleteCotizacionItem godoc
// @Summary      Delete a quotation item
// @Tags         cotizaciones
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/cotizacion-items/{id} [delete]
func DeleteCotizacionItem(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}

		var cotizacionID int
		err = db.QueryRow(`DELETE FROM cotizacion_items WHERE id = $1 RETURNING cotizacion_id`, itemID).
			Scan(&cotizacionID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting item", "details": err.Error()})
			return
		}

		if err := storage.RecalcularCotizacion(db, cotizacionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
