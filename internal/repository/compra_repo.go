package repository

import (
	"context"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompraRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, l dto.Listado) ([]model.Compra, int64, error)
	Recientes(ctx context.Context, n int) ([]model.Compra, error)
	Resumen(ctx context.Context, desde, hasta time.Time) (dto.ResumenPeriodo, error)

	// Used inside transactions; callers must pass the tx instance
	CreateTx(tx *gorm.DB, c *model.Compra) error
	// FindForUpdateTx locks the compra row and loads its current line items.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error)
	UpdateTx(tx *gorm.DB, c *model.Compra) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CreateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error
	UpdateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error
	DeleteDetallesTx(tx *gorm.DB, ids []uuid.UUID) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

var compraOrden = map[string]string{
	"fecha":     "compras.fecha",
	"total":     "compras.total",
	"proveedor": "proveedores.nombre",
	"numero":    "compras.numero",
}

const compraColumnas = "compras.*, (SELECT COUNT(*) FROM detalles_compra d WHERE d.compra_id = compras.id) AS cantidad_items"

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Proveedor").
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("detalles_compra.id") }).
		Preload("Detalles.Producto").
		Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *compraRepo) List(ctx context.Context, l dto.Listado) ([]model.Compra, int64, error) {
	var compras []model.Compra
	filtrar := func(q *gorm.DB) *gorm.DB {
		if l.Q != "" {
			patron := l.Patron()
			q = q.Where("(compras.proveedor_id IN (SELECT p.id FROM proveedores p WHERE "+
				likeInsensible("p.nombre")+" OR "+likeInsensible("p.ruc")+") OR "+
				likeInsensible("compras.tipo_documento")+" OR "+
				likeInsensible("compras.serie")+" OR "+
				likeInsensible("compras.numero")+")",
				patron, patron, patron, patron, patron)
		}
		return rangoFechas(q, l, "compras.fecha")
	}
	total, err := contarYBuscar(ctx, r.db, &model.Compra{}, filtrar, func(q *gorm.DB) error {
		q = q.Select(compraColumnas)
		if l.Sort == "proveedor" {
			q = q.Joins("LEFT JOIN proveedores ON proveedores.id = compras.proveedor_id")
		}
		return ordenar(q, l, compraOrden, "compras").
			Preload("Proveedor").
			Limit(l.PageSize).Offset(l.Offset()).
			Find(&compras).Error
	})
	return compras, total, err
}

func (r *compraRepo) Recientes(ctx context.Context, n int) ([]model.Compra, error) {
	var compras []model.Compra
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Select(compraColumnas).
		Preload("Proveedor").
		Order("compras.fecha DESC").Order("compras.created_at DESC").
		Limit(n).Find(&compras).Error
	return compras, err
}

func (r *compraRepo) Resumen(ctx context.Context, desde, hasta time.Time) (dto.ResumenPeriodo, error) {
	var res dto.ResumenPeriodo
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Select("COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS total").
		Where("fecha >= ? AND fecha <= ?", desde, hasta).
		Scan(&res).Error
	return res, err
}

func (r *compraRepo) CreateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Omit(clause.Associations).Create(c).Error
}

func (r *compraRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("compra_id = ?", id).Order("id").Find(&c.Detalles).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *compraRepo) UpdateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Model(c).Omit(clause.Associations).
		Select("fecha", "tipo_documento", "serie", "numero", "moneda", "metodo_pago", "notas", "total", "updated_at").
		Updates(c).Error
}

func (r *compraRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("compra_id = ?", id).Delete(&model.DetalleCompra{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Compra{}).Error
}

func (r *compraRepo) CreateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *compraRepo) UpdateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error {
	return tx.Model(d).Omit(clause.Associations).
		Select("producto_id", "cantidad", "costo_unit", "subtotal").
		Updates(d).Error
}

func (r *compraRepo) DeleteDetallesTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).Delete(&model.DetalleCompra{}).Error
}
