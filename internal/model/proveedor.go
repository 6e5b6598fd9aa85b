package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor represents a supplier. RUC is the tax id and is optional because
// suppliers can be created inline from the purchase form with only a name.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre    string    `gorm:"index;not null"`
	RUC       *string   `gorm:"column:ruc;index"`
	Telefono  *string
	Correo    *string
	Ciudad    *string
	Notas     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
