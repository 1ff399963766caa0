package models

import (
	"time"

	"gorm.io/gorm"
)

// CategoriaGlosario represents the categorias_glosario table with GORM tags.
// Category names are unique within a project; deleting a category cascades
// to its conceptos.
type CategoriaGlosario struct {
	ID         uint               `gorm:"primaryKey;column:id" json:"id" example:"1"`
	ProyectoID uint               `gorm:"column:proyecto_id;not null;uniqueIndex:idx_glosario_proyecto_nombre" json:"proyecto_id" example:"1"`
	Nombre     string             `gorm:"column:nombre;not null;uniqueIndex:idx_glosario_proyecto_nombre" json:"nombre" example:"ALBANILERIA"`
	CreatedAt  time.Time          `gorm:"column:created_at" json:"created_at,omitempty" example:"2024-01-15T10:30:00Z"`
	UpdatedAt  time.Time          `gorm:"column:updated_at" json:"updated_at,omitempty" example:"2024-01-15T10:30:00Z"`
	DeletedAt  gorm.DeletedAt     `gorm:"-" json:"-"`
	Conceptos  []ConceptoGlosario `gorm:"foreignKey:CategoriaID;constraint:OnDelete:CASCADE" json:"conceptos,omitempty"`
}

// TableName specifies the table name for CategoriaGlosario
func (CategoriaGlosario) TableName() string {
	return "categorias_glosario"
}

// ConceptoGlosario represents the conceptos_glosario table. Concept names
// are unique within their category; Posicion preserves insertion order.
type ConceptoGlosario struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id" example:"1"`
	CategoriaID uint      `gorm:"column:categoria_id;not null;uniqueIndex:idx_glosario_categoria_nombre" json:"categoria_id" example:"1"`
	Nombre      string    `gorm:"column:nombre;not null;uniqueIndex:idx_glosario_categoria_nombre" json:"nombre" example:"MUROS"`
	Posicion    int       `gorm:"column:posicion;not null;default:0" json:"posicion" example:"0"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at,omitempty" example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at,omitempty" example:"2024-01-15T10:30:00Z"`
}

// TableName specifies the table name for ConceptoGlosario
func (ConceptoGlosario) TableName() string {
	return "conceptos_glosario"
}

// GlosarioSeccion is one parsed spreadsheet section used by the bulk
// structure import: a category name with its concept names in order.
type GlosarioSeccion struct {
	Categoria string   `json:"categoria" binding:"required" example:"ALBANILERIA"`
	Conceptos []string `json:"conceptos" example:"MUROS,CASTILLOS"`
}

// GlosarioImportResult reports what a bulk import actually created.
type GlosarioImportResult struct {
	CategoriasCreadas int `json:"categorias_creadas" example:"5"`
	ConceptosCreados  int `json:"conceptos_creados" example:"38"`
	Omitidos          int `json:"omitidos" example:"4"`
}

// CategoriaGlosarioResponse represents the response for single-category operations
type CategoriaGlosarioResponse struct {
	Success bool               `json:"success" example:"true"`
	Message string             `json:"message" example:"Success"`
	Data    *CategoriaGlosario `json:"data,omitempty"`
	Error   string             `json:"error,omitempty" example:""`
}

// GlosarioListResponse represents the response for glossary list operations
type GlosarioListResponse struct {
	Success bool                `json:"success" example:"true"`
	Message string              `json:"message" example:"Success"`
	Data    []CategoriaGlosario `json:"data,omitempty"`
	Error   string              `json:"error,omitempty" example:""`
}

// ConceptoGlosarioResponse represents the response for concept operations
type ConceptoGlosarioResponse struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"Success"`
	Data    *ConceptoGlosario `json:"data,omitempty"`
	Error   string            `json:"error,omitempty" example:""`
}
