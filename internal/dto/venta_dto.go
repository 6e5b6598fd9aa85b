package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string          `json:"productoId" validate:"required,uuid"`
	Cantidad   int             `json:"cantidad"   validate:"required,min=1"`
	PrecioUnit decimal.Decimal `json:"precioUnit" validate:"min=0"`
	Descuento  decimal.Decimal `json:"descuento"  validate:"min=0"`
}

type CrearVentaRequest struct {
	NombreCliente string             `json:"nombreCliente" validate:"required,max=200"`
	DNI           *string            `json:"dni"           validate:"omitempty,max=20"`
	MetodoPago    *string            `json:"metodoPago"    validate:"omitempty,max=50"`
	Notas         *string            `json:"notas"`
	Items         []ItemVentaRequest `json:"items"         validate:"required,min=1,dive"`
}

// ItemVentaEdicion follows the same drop rules as ItemCompraEdicion.
type ItemVentaEdicion struct {
	DetalleID  *string         `json:"detalleId"  validate:"omitempty,uuid"`
	ProductoID string          `json:"productoId" validate:"omitempty,uuid"`
	Cantidad   int             `json:"cantidad"`
	PrecioUnit decimal.Decimal `json:"precioUnit"`
	Descuento  decimal.Decimal `json:"descuento"`
}

type ActualizarVentaRequest struct {
	NombreCliente string             `json:"nombreCliente" validate:"required,max=200"`
	DNI           *string            `json:"dni"           validate:"omitempty,max=20"`
	MetodoPago    *string            `json:"metodoPago"    validate:"omitempty,max=50"`
	Notas         *string            `json:"notas"`
	Fecha         *string            `json:"fecha"` // YYYY-MM-DD; nil keeps the current date
	Items         []ItemVentaEdicion `json:"items"         validate:"dive"`
}

var VentaListado = ListadoConfig{
	DefaultPageSize: 10,
	MaxPageSize:     50,
	SortKeys:        []string{"fecha", "total", "cliente"},
	DefaultSort:     "fecha",
	DefaultDesc:     true,
	ConFechas:       true,
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaCreadaResponse struct {
	ID            string          `json:"id"`
	FechaCreacion time.Time       `json:"fechaCreacion"`
	NombreCliente string          `json:"nombreCliente"`
	Total         decimal.Decimal `json:"total"`
}

type VentaListItem struct {
	ID            string          `json:"id"`
	FechaCreacion time.Time       `json:"fechaCreacion"`
	NombreCliente string          `json:"nombreCliente"`
	DNI           *string         `json:"dni"`
	MetodoPago    *string         `json:"metodoPago"`
	Notas         *string         `json:"notas"`
	Total         decimal.Decimal `json:"total"`
	CantidadItems int             `json:"cantidadItems"`
}

type ItemVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"productoId"`
	SKU            string          `json:"sku"`
	NombreProducto string          `json:"nombreProducto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnit     decimal.Decimal `json:"precioUnit"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	FechaCreacion time.Time           `json:"fechaCreacion"`
	NombreCliente string              `json:"nombreCliente"`
	DNI           *string             `json:"dni"`
	MetodoPago    *string             `json:"metodoPago"`
	Notas         *string             `json:"notas"`
	Total         decimal.Decimal     `json:"total"`
	Items         []ItemVentaResponse `json:"items"`
}
