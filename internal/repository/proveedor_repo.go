package repository

import (
	"context"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	CreateTx(tx *gorm.DB, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error)
	List(ctx context.Context, l dto.Listado) ([]model.Proveedor, int64, error)
	Update(ctx context.Context, p *model.Proveedor) error
	Delete(ctx context.Context, id uuid.UUID) error
	ContarCompras(ctx context.Context, id uuid.UUID) (int64, error)
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) CreateTx(tx *gorm.DB, p *model.Proveedor) error {
	return tx.Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *proveedorRepo) ExistsTx(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.Proveedor{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *proveedorRepo) List(ctx context.Context, l dto.Listado) ([]model.Proveedor, int64, error) {
	var proveedores []model.Proveedor
	filtrar := func(q *gorm.DB) *gorm.DB {
		return buscarTexto(q, l, "proveedores.nombre", "proveedores.ruc")
	}
	total, err := contarYBuscar(ctx, r.db, &model.Proveedor{}, filtrar, func(q *gorm.DB) error {
		return ordenar(q, l, map[string]string{"nombre": "proveedores.nombre"}, "proveedores").
			Limit(l.PageSize).Offset(l.Offset()).
			Find(&proveedores).Error
	})
	return proveedores, total, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Model(p).
		Select("nombre", "ruc", "telefono", "correo", "ciudad", "notas", "updated_at").
		Updates(p).Error
}

func (r *proveedorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Proveedor{}).Error
}

func (r *proveedorRepo) ContarCompras(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Compra{}).Where("proveedor_id = ?", id).Count(&n).Error
	return n, err
}
