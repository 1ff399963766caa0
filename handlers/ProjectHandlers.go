package handlers

import (
	"backend/models"
	"backend/utils"
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetProyectos godoc
// @Summary      List all projects
// @Tags         proyectos
// @Produce      json
// @Success      200  {array}   models.Proyecto
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/proyectos [get]
func GetProyectos(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rows, err := db.QueryContext(ctx, `
			SELECT id, nombre, descripcion, fecha_creacion, fecha_modificacion
			FROM proyectos
			ORDER BY nombre`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching projects", "details": err.Error()})
			return
		}
		defer rows.Close()

		proyectos := []models.Proyecto{}
		for rows.Next() {
			var p models.Proyecto
			if err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.FechaCreacion, &p.FechaModificacion); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning project", "details": err.Error()})
				return
			}
			proyectos = append(proyectos, p)
		}
		if err := rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating projects", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, proyectos)
	}
}

// GetProyecto godoc
// @Summary      Get one project
// @Tags         proyectos
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  models.Proyecto
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id} [get]
func GetProyecto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var p models.Proyecto
		err = db.QueryRow(`
			SELECT id, nombre, descripcion, fecha_creacion, fecha_modificacion
			FROM proyectos WHERE id = $1`, proyectoID).
			Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.FechaCreacion, &p.FechaModificacion)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, p)
	}
}

// CreateProyecto godoc
// @Summary      Create a project
// @Description  Creating with a name that already exists returns the existing project instead of failing
// @Tags         proyectos
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.Proyecto
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/proyectos [post]
func CreateProyecto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Nombre      string `json:"nombre" binding:"required"`
			Descripcion string `json:"descripcion"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		// name collision hands back the existing project, import flows
		// rely on create-or-get semantics
		var proyectoID int
		err := db.QueryRow(`
			INSERT INTO proyectos (nombre, descripcion) VALUES ($1, $2)
			ON CONFLICT (nombre) DO UPDATE SET nombre = EXCLUDED.nombre
			RETURNING id`, input.Nombre, input.Descripcion).Scan(&proyectoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":          proyectoID,
			"nombre":      input.Nombre,
			"descripcion": input.Descripcion,
		})
	}
}

// UpdateProyecto godoc
// @Summary      Update a project
// @Tags         proyectos
// @Accept       json
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id} [put]
func UpdateProyecto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var input struct {
			Nombre      string `json:"nombre" binding:"required"`
			Descripcion string `json:"descripcion"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		result, err := db.Exec(`
			UPDATE proyectos
			SET nombre = $1, descripcion = $2, fecha_modificacion = NOW()
			WHERE id = $3`, input.Nombre, input.Descripcion, proyectoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating project", "details": err.Error()})
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Proyecto no encontrado"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Proyecto actualizado"})
	}
}

// DeleteProyecto godoc
// @Summary      Delete a project and everything it owns
// @Tags         proyectos
// @Produce      json
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  utils.Response
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/proyectos/{id} [delete]
func DeleteProyecto(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		// partidas, glossary and cotizaciones go with it via ON DELETE CASCADE
		if _, err := db.Exec(`DELETE FROM proyectos WHERE id = $1`, proyectoID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting project", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
