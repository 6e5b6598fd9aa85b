package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoCompra = "compra"
	MovimientoVenta  = "venta"

	MotivoAlta        = "alta"
	MotivoEdicion     = "edicion"
	MotivoEliminacion = "eliminacion"
)

// MovimientoStock registra cada cambio neto de stock aplicado a un producto
// por una compra o venta. Cantidad es positiva para entradas y negativa para salidas.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"type:varchar(20);not null"`
	Motivo        string    `gorm:"type:varchar(20);not null"`
	Cantidad      int       `gorm:"not null"`
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	ReferenciaID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"index"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
