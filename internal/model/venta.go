package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a customer sale. No customer entity exists; the buyer is captured
// by name and optional DNI.
type Venta struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	FechaCreacion time.Time `gorm:"not null;index"`
	NombreCliente string    `gorm:"not null;index"`
	DNI           *string   `gorm:"column:dni"`
	MetodoPago    *string
	Notas         *string
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UpdatedAt     time.Time

	CantidadItems int `gorm:"->;-:migration"`

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
}

// TableName pins the plural; GORM's inflector would map venta → venta.
func (Venta) TableName() string { return "ventas" }

// DetalleVenta is one sold product line.
// Subtotal = max(0, PrecioUnit − Descuento) × Cantidad.
type DetalleVenta struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad   int             `gorm:"not null"`
	PrecioUnit decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }
