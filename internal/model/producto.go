package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item. Stock is only changed through compras and ventas;
// the remaining fields are edited directly.
type Producto struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU            string    `gorm:"column:sku;uniqueIndex;not null"`
	Nombre         string    `gorm:"index;not null"`
	Categoria      string    `gorm:"not null"`
	Marca          *string
	Presentacion   *string
	Especificacion *string
	OEMCode        *string         `gorm:"column:oem_code"`
	PrecioCompra   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecioVenta    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Stock is expected to stay >= 0 but the database does not enforce it.
	Stock              int `gorm:"not null;default:0"`
	MinStock           int `gorm:"not null;default:0"`
	FechaActualizacion time.Time `gorm:"autoUpdateTime"`
	CreatedAt          time.Time
}

func (Producto) TableName() string { return "productos" }

// StockBajo reports whether the product is at or below its minimum threshold.
func (p Producto) StockBajo() bool { return p.Stock <= p.MinStock }
