package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	SKU            string          `json:"sku"            validate:"required,max=64"`
	Nombre         string          `json:"nombre"         validate:"required,max=200"`
	Categoria      string          `json:"categoria"      validate:"required,max=100"`
	Marca          *string         `json:"marca"          validate:"omitempty,max=100"`
	Presentacion   *string         `json:"presentacion"   validate:"omitempty,max=100"`
	Especificacion *string         `json:"especificacion" validate:"omitempty,max=255"`
	OEMCode        *string         `json:"oemCode"        validate:"omitempty,max=100"`
	PrecioCompra   decimal.Decimal `json:"precioCompra"   validate:"min=0"`
	PrecioVenta    decimal.Decimal `json:"precioVenta"    validate:"min=0"`
	MinStock       int             `json:"minStock"       validate:"min=0"`
}

// ActualizarProductoRequest only carries the fields editable from the product
// form; SKU, stock and purchase price are not editable here.
type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"         validate:"omitempty,min=1,max=200"`
	Categoria      *string          `json:"categoria"      validate:"omitempty,min=1,max=100"`
	Marca          *string          `json:"marca"          validate:"omitempty,max=100"`
	Presentacion   *string          `json:"presentacion"   validate:"omitempty,max=100"`
	Especificacion *string          `json:"especificacion" validate:"omitempty,max=255"`
	OEMCode        *string          `json:"oemCode"        validate:"omitempty,max=100"`
	PrecioVenta    *decimal.Decimal `json:"precioVenta"    validate:"omitempty,min=0"`
	MinStock       *int             `json:"minStock"       validate:"omitempty,min=0"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// ProductoFilter extends the common listing with the low-stock view.
type ProductoFilter struct {
	Listado
	StockBajo bool
}

var ProductoListado = ListadoConfig{
	DefaultPageSize: 10,
	MaxPageSize:     50,
	SortKeys:        []string{"sku", "nombre", "precio", "stock", "actualizado"},
	DefaultSort:     "actualizado",
	DefaultDesc:     true,
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID                 string          `json:"id"`
	SKU                string          `json:"sku"`
	Nombre             string          `json:"nombre"`
	Categoria          string          `json:"categoria"`
	Marca              *string         `json:"marca"`
	Presentacion       *string         `json:"presentacion"`
	Especificacion     *string         `json:"especificacion"`
	OEMCode            *string         `json:"oemCode"`
	PrecioCompra       decimal.Decimal `json:"precioCompra"`
	PrecioVenta        decimal.Decimal `json:"precioVenta"`
	Stock              int             `json:"stock"`
	MinStock           int             `json:"minStock"`
	StockBajo          bool            `json:"stockBajo"`
	FechaActualizacion time.Time       `json:"fechaActualizacion"`
}

type MovimientoStockResponse struct {
	ID            string    `json:"id"`
	Tipo          string    `json:"tipo"`
	Motivo        string    `json:"motivo"`
	Cantidad      int       `json:"cantidad"`
	StockAnterior int       `json:"stockAnterior"`
	StockNuevo    int       `json:"stockNuevo"`
	ReferenciaID  string    `json:"referenciaId"`
	Fecha         time.Time `json:"fecha"`
}

var MovimientoListado = ListadoConfig{
	DefaultPageSize: 20,
	MaxPageSize:     50,
	DefaultSort:     "fecha",
	DefaultDesc:     true,
}
