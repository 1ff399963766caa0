package handlers

import (
	"backend/models"
	"backend/storage"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ==================== GLOSSARY CRUD OPERATIONS ====================

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetGlosario lists a project's glossary
// @Summary List glossary categories with their concepts
// @Tags Glosario
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.GlosarioListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/proyectos/{id}/glosario [get]
func GetGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		gdb := storage.GetGormDB()
		var categorias []models.CategoriaGlosario
		err = gdb.Where("proyecto_id = ?", proyectoID).
			Preload("Conceptos", func(db *gorm.DB) *gorm.DB {
				return db.Order("posicion, nombre")
			}).
			Order("nombre").
			Find(&categorias).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching glossary", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.GlosarioListResponse{
			Success: true,
			Message: "Glossary fetched successfully",
			Data:    categorias,
		})
	}
}

// CreateCategoriaGlosario creates a glossary category
// @Summary Create glossary category
// @Tags Glosario
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 201 {object} models.CategoriaGlosarioResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/proyectos/{id}/glosario/categorias [post]
func CreateCategoriaGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var input struct {
			Nombre string `json:"nombre" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		categoria := models.CategoriaGlosario{
			ProyectoID: uint(proyectoID),
			Nombre:     input.Nombre,
		}
		if err := storage.GetGormDB().Create(&categoria).Error; err != nil {
			if isDuplicateErr(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "La categoria ya existe en este proyecto"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating category", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, models.CategoriaGlosarioResponse{
			Success: true,
			Message: "Categoria creada",
			Data:    &categoria,
		})
	}
}

// UpdateCategoriaGlosario renames a glossary category
// @Summary Rename glossary category
// @Tags Glosario
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.CategoriaGlosarioResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/glosario/categorias/{id} [put]
func UpdateCategoriaGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoriaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}

		var input struct {
			Nombre string `json:"nombre" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		gdb := storage.GetGormDB()
		var categoria models.CategoriaGlosario
		if err := gdb.First(&categoria, categoriaID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Categoria no encontrada"})
			return
		}

		categoria.Nombre = input.Nombre
		if err := gdb.Save(&categoria).Error; err != nil {
			if isDuplicateErr(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "La categoria ya existe en este proyecto"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating category", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.CategoriaGlosarioResponse{
			Success: true,
			Message: "Categoria actualizada",
			Data:    &categoria,
		})
	}
}

// DeleteCategoriaGlosario deletes a glossary category and its concepts
// @Summary Delete glossary category
// @Tags Glosario
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/glosario/categorias/{id} [delete]
func DeleteCategoriaGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoriaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}

		gdb := storage.GetGormDB()
		result := gdb.Select("Conceptos").Delete(&models.CategoriaGlosario{ID: uint(categoriaID)})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting category", "details": result.Error.Error()})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Categoria no encontrada"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// CreateConceptoGlosario adds a concept under a glossary category
// @Summary Create glossary concept
// @Tags Glosario
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 201 {object} models.ConceptoGlosarioResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/glosario/categorias/{id}/conceptos [post]
func CreateConceptoGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		categoriaID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}

		var input struct {
			Nombre   string `json:"nombre" binding:"required"`
			Posicion int    `json:"posicion"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		gdb := storage.GetGormDB()
		var categoria models.CategoriaGlosario
		if err := gdb.First(&categoria, categoriaID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Categoria no encontrada"})
			return
		}

		concepto := models.ConceptoGlosario{
			CategoriaID: uint(categoriaID),
			Nombre:      input.Nombre,
			Posicion:    input.Posicion,
		}
		if err := gdb.Create(&concepto).Error; err != nil {
			if isDuplicateErr(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "El concepto ya existe en esta categoria"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating concept", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, models.ConceptoGlosarioResponse{
			Success: true,
			Message: "Concepto creado",
			Data:    &concepto,
		})
	}
}

// UpdateConceptoGlosario renames or repositions a glossary concept
// @Summary Update glossary concept
// @Tags Glosario
// @Accept json
// @Produce json
// @Param id path int true "Concept ID"
// @Success 200 {object} models.ConceptoGlosarioResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/glosario/conceptos/{id} [put]
func UpdateConceptoGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		conceptoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid concept id"})
			return
		}

		var input struct {
			Nombre   string `json:"nombre" binding:"required"`
			Posicion *int   `json:"posicion"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es requerido"})
			return
		}

		gdb := storage.GetGormDB()
		var concepto models.ConceptoGlosario
		if err := gdb.First(&concepto, conceptoID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Concepto no encontrado"})
			return
		}

		concepto.Nombre = input.Nombre
		if input.Posicion != nil {
			concepto.Posicion = *input.Posicion
		}
		if err := gdb.Save(&concepto).Error; err != nil {
			if isDuplicateErr(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "El concepto ya existe en esta categoria"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating concept", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.ConceptoGlosarioResponse{
			Success: true,
			Message: "Concepto actualizado",
			Data:    &concepto,
		})
	}
}

// DeleteConceptoGlosario deletes a glossary concept
// @Summary Delete glossary concept
// @Tags Glosario
// @Produce json
// @Param id path int true "Concept ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/glosario/conceptos/{id} [delete]
func DeleteConceptoGlosario() gin.HandlerFunc {
	return func(c *gin.Context) {
		conceptoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid concept id"})
			return
		}

		result := storage.GetGormDB().Delete(&models.ConceptoGlosario{}, conceptoID)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting concept", "details": result.Error.Error()})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Concepto no encontrado"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ImportGlosarioFromPartidas seeds the glossary from existing budget lines
// @Summary Import glossary from the project's partidas
// @Description Every distinct categoria/concepto pair present in the project's lines becomes a glossary entry. Existing entries are kept, not duplicated.
// @Tags Glosario
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.GlosarioImportResult
// @Failure 500 {object} models.ErrorResponse
// @Router /api/proyectos/{id}/glosario/import-partidas [post]
func ImportGlosarioFromPartidas(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		rows, err := db.Query(`
			SELECT DISTINCT categoria, concepto FROM partidas
			WHERE proyecto_id = $1 AND categoria <> ''
			ORDER BY categoria, concepto`, proyectoID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading partidas", "details": err.Error()})
			return
		}
		defer rows.Close()

		secciones := map[string][]string{}
		var ordenCategorias []string
		for rows.Next() {
			var categoria, concepto string
			if err := rows.Scan(&categoria, &concepto); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning partidas", "details": err.Error()})
				return
			}
			if _, ok := secciones[categoria]; !ok {
				ordenCategorias = append(ordenCategorias, categoria)
				secciones[categoria] = []string{}
			}
			if concepto != "" {
				secciones[categoria] = append(secciones[categoria], concepto)
			}
		}

		resultado, err := importGlosarioSecciones(proyectoID, ordenCategorias, secciones)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error importing glossary", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resultado)
	}
}

// ImportGlosarioEstructura bulk-loads a parsed glossary structure
// @Summary Import glossary structure
// @Description Accepts a list of categoria sections with ordered concept names. Duplicates are skipped and counted.
// @Tags Glosario
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.GlosarioImportResult
// @Failure 400 {object} models.ErrorResponse
// @Router /api/proyectos/{id}/glosario/import [post]
func ImportGlosarioEstructura() gin.HandlerFunc {
	return func(c *gin.Context) {
		proyectoID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project id"})
			return
		}

		var input struct {
			Secciones []models.GlosarioSeccion `json:"secciones" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
			return
		}

		secciones := map[string][]string{}
		var orden []string
		for _, s := range input.Secciones {
			if _, ok := secciones[s.Categoria]; !ok {
				orden = append(orden, s.Categoria)
			}
			secciones[s.Categoria] = append(secciones[s.Categoria], s.Conceptos...)
		}

		resultado, err := importGlosarioSecciones(proyectoID, orden, secciones)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error importing glossary", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, resultado)
	}
}

func importGlosarioSecciones(proyectoID int, orden []string, secciones map[string][]string) (models.GlosarioImportResult, error) {
	gdb := storage.GetGormDB()
	var resultado models.GlosarioImportResult

	for _, nombreCategoria := range orden {
		var categoria models.CategoriaGlosario
		err := gdb.Where("proyecto_id = ? AND nombre = ?", proyectoID, nombreCategoria).
			First(&categoria).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			categoria = models.CategoriaGlosario{ProyectoID: uint(proyectoID), Nombre: nombreCategoria}
			if err := gdb.Create(&categoria).Error; err != nil {
				return resultado, err
			}
			resultado.CategoriasCreadas++
		} else if err != nil {
			return resultado, err
		}

		for posicion, nombreConcepto := range secciones[nombreCategoria] {
			concepto := models.ConceptoGlosario{
				CategoriaID: categoria.ID,
				Nombre:      nombreConcepto,
				Posicion:    posicion,
			}
			if err := gdb.Create(&concepto).Error; err != nil {
				if isDuplicateErr(err) {
					resultado.Omitidos++
					continue
				}
				return resultado, err
			}
			resultado.ConceptosCreados++
		}
	}

	return resultado, nil
}
