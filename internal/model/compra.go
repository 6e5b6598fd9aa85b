package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra is a supplier purchase. Total is written from the submitted line
// items on every create/update and never recomputed on read.
type Compra struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProveedorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Fecha         time.Time `gorm:"not null;index"`
	TipoDocumento *string
	Serie         *string
	Numero        *string `gorm:"index"`
	Moneda        *string
	MetodoPago    *string
	Notas         *string
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// CantidadItems is only populated by listing queries.
	CantidadItems int `gorm:"->;-:migration"`

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Detalles  []DetalleCompra `gorm:"foreignKey:CompraID"`
}

func (Compra) TableName() string { return "compras" }

// DetalleCompra is one purchased product line; Subtotal = Cantidad × CostoUnit.
type DetalleCompra struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompraID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad   int             `gorm:"not null"`
	CostoUnit  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleCompra) TableName() string { return "detalles_compra" }
