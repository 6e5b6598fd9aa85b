package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemCompraRequest struct {
	ProductoID string          `json:"productoId" validate:"required,uuid"`
	Cantidad   int             `json:"cantidad"   validate:"required,min=1"`
	CostoUnit  decimal.Decimal `json:"costoUnit"  validate:"min=0"`
}

// CrearCompraRequest requires either ProveedorID or ProveedorNuevo; the
// latter is created in the same transaction as the compra.
type CrearCompraRequest struct {
	ProveedorID    *string             `json:"proveedorId"    validate:"omitempty,uuid"`
	ProveedorNuevo *ProveedorRequest   `json:"proveedorNuevo" validate:"omitempty"`
	Fecha          string              `json:"fecha"          validate:"required"`
	TipoDocumento  *string             `json:"tipoDocumento"  validate:"omitempty,max=50"`
	Serie          *string             `json:"serie"          validate:"omitempty,max=20"`
	Numero         *string             `json:"numero"         validate:"omitempty,max=30"`
	Moneda         *string             `json:"moneda"         validate:"omitempty,max=10"`
	MetodoPago     *string             `json:"metodoPago"     validate:"omitempty,max=50"`
	Notas          *string             `json:"notas"`
	Items          []ItemCompraRequest `json:"items"          validate:"required,min=1,dive"`
}

// ItemCompraEdicion is deliberately loose: rows with no product, a
// non-positive quantity or a negative cost are dropped by the service.
type ItemCompraEdicion struct {
	DetalleID  *string         `json:"detalleId"  validate:"omitempty,uuid"`
	ProductoID string          `json:"productoId" validate:"omitempty,uuid"`
	Cantidad   int             `json:"cantidad"`
	CostoUnit  decimal.Decimal `json:"costoUnit"`
}

type ActualizarCompraRequest struct {
	Fecha         string              `json:"fecha"         validate:"required"`
	TipoDocumento *string             `json:"tipoDocumento" validate:"omitempty,max=50"`
	Serie         *string             `json:"serie"         validate:"omitempty,max=20"`
	Numero        *string             `json:"numero"        validate:"omitempty,max=30"`
	Moneda        *string             `json:"moneda"        validate:"omitempty,max=10"`
	MetodoPago    *string             `json:"metodoPago"    validate:"omitempty,max=50"`
	Notas         *string             `json:"notas"`
	Items         []ItemCompraEdicion `json:"items"         validate:"dive"`
}

var CompraListado = ListadoConfig{
	DefaultPageSize: 10,
	MaxPageSize:     50,
	SortKeys:        []string{"fecha", "total", "proveedor", "numero"},
	DefaultSort:     "fecha",
	DefaultDesc:     true,
	ConFechas:       true,
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CompraCreadaResponse is the minimal projection returned by POST.
type CompraCreadaResponse struct {
	ID          string          `json:"id"`
	ProveedorID string          `json:"proveedorId"`
	Fecha       time.Time       `json:"fecha"`
	Total       decimal.Decimal `json:"total"`
}

type CompraListItem struct {
	ID            string            `json:"id"`
	Fecha         time.Time         `json:"fecha"`
	TipoDocumento *string           `json:"tipoDocumento"`
	Serie         *string           `json:"serie"`
	Numero        *string           `json:"numero"`
	Moneda        *string           `json:"moneda"`
	MetodoPago    *string           `json:"metodoPago"`
	Notas         *string           `json:"notas"`
	Total         decimal.Decimal   `json:"total"`
	Proveedor     *ProveedorResumen `json:"proveedor"`
	CantidadItems int               `json:"cantidadItems"`
}

type ItemCompraResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"productoId"`
	SKU            string          `json:"sku"`
	NombreProducto string          `json:"nombreProducto"`
	Cantidad       int             `json:"cantidad"`
	CostoUnit      decimal.Decimal `json:"costoUnit"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CompraResponse struct {
	ID            string               `json:"id"`
	Fecha         time.Time            `json:"fecha"`
	Proveedor     *ProveedorResumen    `json:"proveedor"`
	TipoDocumento *string              `json:"tipoDocumento"`
	Serie         *string              `json:"serie"`
	Numero        *string              `json:"numero"`
	Moneda        *string              `json:"moneda"`
	MetodoPago    *string              `json:"metodoPago"`
	Notas         *string              `json:"notas"`
	Total         decimal.Decimal      `json:"total"`
	Items         []ItemCompraResponse `json:"items"`
}
