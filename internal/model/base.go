package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero primary key before insert so the same models work on
// PostgreSQL and on the SQLite test store (no gen_random_uuid there).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Producto) BeforeCreate(*gorm.DB) error        { assignID(&p.ID); return nil }
func (p *Proveedor) BeforeCreate(*gorm.DB) error       { assignID(&p.ID); return nil }
func (c *Compra) BeforeCreate(*gorm.DB) error          { assignID(&c.ID); return nil }
func (d *DetalleCompra) BeforeCreate(*gorm.DB) error   { assignID(&d.ID); return nil }
func (v *Venta) BeforeCreate(*gorm.DB) error           { assignID(&v.ID); return nil }
func (d *DetalleVenta) BeforeCreate(*gorm.DB) error    { assignID(&d.ID); return nil }
func (u *Usuario) BeforeCreate(*gorm.DB) error         { assignID(&u.ID); return nil }
func (m *MovimientoStock) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Usuario{},
		&Proveedor{},
		&Producto{},
		&Compra{},
		&DetalleCompra{},
		&Venta{},
		&DetalleVenta{},
		&MovimientoStock{},
	}
}
