package models

import (
	"time"
)

// Cotizacion represents a vendor quotation document scoped to a project.
// NumItems and MontoTotal are rollups recomputed whenever its items change.
// Categorias is persisted as rows in cotizacion_categorias, not as a
// serialized list.
type Cotizacion struct {
	ID            int              `json:"id" example:"1"`
	ProyectoID    int              `json:"proyecto_id" example:"1"`
	Proveedor     string           `json:"proveedor" example:"Plomeria Industrial SA"`
	Categorias    []string         `json:"categorias" example:"INSTALACION HIDRAULICA"`
	Archivo       string           `json:"archivo" example:"cotizacion-plomeria.xlsx"`
	Fecha         string           `json:"fecha" example:"2024-03-01"`
	Moneda        string           `json:"moneda" example:"MXN"`
	Notas         string           `json:"notas" example:""`
	NumItems      int              `json:"num_items" example:"34"`
	MontoTotal    float64          `json:"monto_total" example:"185000.00"`
	FechaCreacion time.Time        `json:"fecha_creacion" example:"2024-03-01T10:30:00Z"`
	Items         []CotizacionItem `json:"items,omitempty"`
}

// CotizacionItem is one extracted quotation line. The description is stored
// verbatim; normalization for comparison happens at query time.
type CotizacionItem struct {
	ID             int     `json:"id" example:"1"`
	CotizacionID   int     `json:"cotizacion_id" example:"1"`
	Codigo         string  `json:"codigo" example:"TUB-401"`
	Descripcion    string  `json:"descripcion" example:"Tubo PVC 4 pulgadas"`
	Unidad         string  `json:"unidad" example:"ML"`
	Cantidad       float64 `json:"cantidad" example:"100"`
	PrecioUnitario float64 `json:"precio_unitario" example:"150.50"`
	Importe        float64 `json:"importe" example:"15050.00"`
	Moneda         string  `json:"moneda" example:"MXN"`
}

// CotizacionItemInput is the create/update payload for a quotation item.
type CotizacionItemInput struct {
	Codigo         string    `json:"codigo" example:"TUB-401"`
	Descripcion    string    `json:"descripcion" example:"Tubo PVC 4 pulgadas"`
	Unidad         string    `json:"unidad" example:"ML"`
	Cantidad       FlexFloat `json:"cantidad" swaggertype:"number" example:"100"`
	PrecioUnitario FlexFloat `json:"precio_unitario" swaggertype:"number" example:"150.50"`
	Importe        FlexFloat `json:"importe" swaggertype:"number" example:"15050.00"`
	Moneda         string    `json:"moneda" example:"MXN"`
}

// GrupoComparacion is one normalized-description group of the unit-price
// comparison. Precios maps project name to the unit price quoted there.
// Min/max/diferencia are present only when at least two distinct positive
// prices exist across projects.
type GrupoComparacion struct {
	Descripcion   string             `json:"descripcion" example:"Tubo PVC 4 pulgadas"`
	Unidad        string             `json:"unidad" example:"ML"`
	Precios       map[string]float64 `json:"precios"`
	MinPrecio     *float64           `json:"min_precio,omitempty" example:"145.00"`
	MaxPrecio     *float64           `json:"max_precio,omitempty" example:"162.00"`
	DiferenciaPct *float64           `json:"diferencia_pct,omitempty" example:"11.7"`
}

// ComparacionUnitarios is the full comparison result for one vendor.
// Proyectos lists the distinct project names touched, sorted, for
// column-header construction by the caller.
type ComparacionUnitarios struct {
	Proveedor string             `json:"proveedor" example:"Plomeria Industrial SA"`
	Grupos    []GrupoComparacion `json:"grupos"`
	Proyectos []string           `json:"proyectos" example:"Beachfront,Lote 3"`
}

// ExtraccionResultado is what the spreadsheet extraction returns for a
// quotation upload: the items it found plus any per-row problems.
type ExtraccionResultado struct {
	Items   []CotizacionItem `json:"items"`
	Errores []string         `json:"errores"`
}
