package models

import (
	"time"

	_ "github.com/lib/pq"
)

// Proyecto represents the proyectos table. Deleting a project cascades to
// its partidas, glossary and cotizaciones at the schema level.
type Proyecto struct {
	ID                int       `json:"id" example:"1"`
	Nombre            string    `json:"nombre" binding:"required" example:"Lote 3"`
	Descripcion       string    `json:"descripcion" example:"Importado desde IZ - NAUKA PPTO Lote 3.xlsx"`
	FechaCreacion     time.Time `json:"fecha_creacion" example:"2024-01-15T10:30:00Z"`
	FechaModificacion time.Time `json:"fecha_modificacion" example:"2024-01-15T10:30:00Z"`
}

// Partida represents a single budget line of a project. The monetary fields
// from ImporteSinIVA down to TotalMXN are always recomputed server side on
// every write; they are never accepted from the caller as-is.
type Partida struct {
	ID                int       `json:"id" example:"1"`
	ProyectoID        int       `json:"proyecto_id" example:"1"`
	Categoria         string    `json:"categoria" example:"ALBANILERIA"`
	Concepto          string    `json:"concepto" example:"MUROS"`
	Detalle           string    `json:"detalle" example:"Muro block 15cm"`
	Proveedor         string    `json:"proveedor" example:"Constructora MX"`
	Unidad            string    `json:"unidad" example:"M2"`
	Cantidad          float64   `json:"cantidad" example:"120.5"`
	Moneda            string    `json:"moneda" example:"MXN"`
	Unitario          float64   `json:"unitario" example:"350.00"`
	ImporteSinIVA     float64   `json:"importe_sin_iva" example:"42175.00"`
	SobrecostoPct     float64   `json:"sobrecosto_pct" example:"0.1"`
	SobrecostoMonto   float64   `json:"sobrecosto_monto" example:"4217.50"`
	IVAPct            float64   `json:"iva_pct" example:"0.16"`
	IVAMonto          float64   `json:"iva_monto" example:"7422.80"`
	ImporteTotal      float64   `json:"importe_total" example:"53815.30"`
	TipoCambio        float64   `json:"tipo_cambio" example:"1"`
	TotalMXN          float64   `json:"total_mxn" example:"53815.30"`
	Notas             string    `json:"notas" example:""`
	EsParametro       string    `json:"es_parametro" example:"PRESUPUESTO"`
	Torre             string    `json:"torre" example:"A"`
	Piso              string    `json:"piso" example:"3"`
	Depto             string    `json:"depto" example:"301"`
	FechaCreacion     time.Time `json:"fecha_creacion" example:"2024-01-15T10:30:00Z"`
	FechaModificacion time.Time `json:"fecha_modificacion" example:"2024-01-15T10:30:00Z"`
}

// PartidaInput is the create/update payload for a partida. Monetary fields
// bind through FlexFloat so non-numeric input coerces to zero instead of
// failing the request.
type PartidaInput struct {
	Categoria     string    `json:"categoria" example:"ALBANILERIA"`
	Concepto      string    `json:"concepto" example:"MUROS"`
	Detalle       string    `json:"detalle" example:"Muro block 15cm"`
	Proveedor     string    `json:"proveedor" example:"Constructora MX"`
	Unidad        string    `json:"unidad" example:"M2"`
	Cantidad      FlexFloat `json:"cantidad" swaggertype:"number" example:"120.5"`
	Moneda        string    `json:"moneda" example:"MXN"`
	Unitario      FlexFloat `json:"unitario" swaggertype:"number" example:"350.00"`
	SobrecostoPct FlexFloat `json:"sobrecosto_pct" swaggertype:"number" example:"0.1"`
	IVAPct        FlexFloat `json:"iva_pct" swaggertype:"number" example:"0.16"`
	TipoCambio    FlexFloat `json:"tipo_cambio" swaggertype:"number" example:"0"`
	Notas         string    `json:"notas" example:""`
	EsParametro   string    `json:"es_parametro" example:"PRESUPUESTO"`
	Torre         string    `json:"torre" example:"A"`
	Piso          string    `json:"piso" example:"3"`
	Depto         string    `json:"depto" example:"301"`
}

// TipoCambio is the single current rate of a currency against MXN. Updates
// overwrite the previous value; no history is kept.
type TipoCambio struct {
	ID     int       `json:"id" example:"1"`
	Moneda string    `json:"moneda" binding:"required" example:"USD"`
	Valor  FlexFloat `json:"valor" swaggertype:"number" example:"20.5"`
}

// ResumenCategoria is one Level-1 rollup row.
type ResumenCategoria struct {
	Categoria   string  `json:"categoria" example:"ALBANILERIA"`
	NumPartidas int     `json:"num_partidas" example:"42"`
	TotalMXN    float64 `json:"total_mxn" example:"1250000.50"`
}

// ResumenProyecto is the Level-1 response: category rollups plus
// project-wide totals computed over the same filter set.
type ResumenProyecto struct {
	Categorias    []ResumenCategoria `json:"categorias"`
	NumCategorias int                `json:"num_categorias" example:"8"`
	TotalPartidas int                `json:"total_partidas" example:"312"`
	TotalProyecto float64            `json:"total_proyecto" example:"9800000.00"`
}

// ResumenConcepto is one Level-2 rollup row within a category.
type ResumenConcepto struct {
	Concepto    string  `json:"concepto" example:"MUROS"`
	NumPartidas int     `json:"num_partidas" example:"12"`
	TotalMXN    float64 `json:"total_mxn" example:"420000.00"`
}

// ResumenConceptos is the Level-2 response scoped to one category.
type ResumenConceptos struct {
	Categoria      string            `json:"categoria" example:"ALBANILERIA"`
	Conceptos      []ResumenConcepto `json:"conceptos"`
	TotalPartidas  int               `json:"total_partidas" example:"42"`
	TotalCategoria float64           `json:"total_categoria" example:"1250000.50"`
}

// DetallePartida is one Level-3 detail row (no aggregation).
type DetallePartida struct {
	ID        int     `json:"id" example:"1"`
	Detalle   string  `json:"detalle" example:"Muro block 15cm"`
	Proveedor string  `json:"proveedor" example:"Constructora MX"`
	Torre     string  `json:"torre" example:"A"`
	Piso      string  `json:"piso" example:"3"`
	Depto     string  `json:"depto" example:"301"`
	Cantidad  float64 `json:"cantidad" example:"120.5"`
	Unidad    string  `json:"unidad" example:"M2"`
	TotalMXN  float64 `json:"total_mxn" example:"53815.30"`
}

// DetalleConcepto is the Level-3 response scoped to a category+concept pair.
type DetalleConcepto struct {
	Categoria string           `json:"categoria" example:"ALBANILERIA"`
	Concepto  string           `json:"concepto" example:"MUROS"`
	Partidas  []DetallePartida `json:"partidas"`
}

// GrupoResumen is one row of the arbitrary group-by summary: a distinct
// combination of the requested fields with its aggregates.
type GrupoResumen struct {
	Campos          map[string]string `json:"campos"`
	NumPartidas     int               `json:"num_partidas" example:"12"`
	TotalMXN        float64           `json:"total_mxn" example:"420000.00"`
	Subtotal        float64           `json:"subtotal" example:"340000.00"`
	TotalIVA        float64           `json:"total_iva" example:"54400.00"`
	TotalSobrecosto float64           `json:"total_sobrecosto" example:"25600.00"`
}

// ResumenAgrupado is the arbitrary group-by response.
type ResumenAgrupado struct {
	Campos        []string       `json:"campos"`
	Grupos        []GrupoResumen `json:"grupos"`
	NumCategorias int            `json:"num_categorias" example:"8"`
	TotalPartidas int            `json:"total_partidas" example:"312"`
	TotalProyecto float64        `json:"total_proyecto" example:"9800000.00"`
}

// ErrorResponse is the generic error envelope used in swagger annotations.
type ErrorResponse struct {
	Error   string `json:"error" example:"Proyecto not found"`
	Details string `json:"details,omitempty" example:""`
}

type User struct {
	ID        int       `json:"id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Password  string    `json:"password,omitempty" example:""`
	Nombre    string    `json:"nombre" example:"Alfonso"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

type Session struct {
	UserID                int       `json:"user_id" example:"1"`
	SessionID             string    `json:"session_id" example:""`
	HostName              string    `json:"host_name" example:"user@example.com"`
	IPAddress             string    `json:"ip_address" example:"10.0.0.1"`
	Timestamp             time.Time `json:"timestp" example:"2024-01-15T10:30:00Z"`
	ExpiresAt             time.Time `json:"expires_at" example:"2024-01-16T10:30:00Z"`
	RefreshToken          string    `json:"refresh_token,omitempty" example:""`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty" example:"2024-01-30T10:30:00Z"`
}
