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

type VentaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, l dto.Listado) ([]model.Venta, int64, error)
	Recientes(ctx context.Context, n int) ([]model.Venta, error)
	Resumen(ctx context.Context, desde, hasta time.Time) (dto.ResumenPeriodo, error)

	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error)
	UpdateTx(tx *gorm.DB, v *model.Venta) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	CreateDetalleTx(tx *gorm.DB, d *model.DetalleVenta) error
	UpdateDetalleTx(tx *gorm.DB, d *model.DetalleVenta) error
	DeleteDetallesTx(tx *gorm.DB, ids []uuid.UUID) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

var ventaOrden = map[string]string{
	"fecha":   "ventas.fecha_creacion",
	"total":   "ventas.total",
	"cliente": "ventas.nombre_cliente",
}

const ventaColumnas = "ventas.*, (SELECT COUNT(*) FROM detalles_venta d WHERE d.venta_id = ventas.id) AS cantidad_items"

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("detalles_venta.id") }).
		Preload("Detalles.Producto").
		Where("id = ?", id).First(&v).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, l dto.Listado) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	filtrar := func(q *gorm.DB) *gorm.DB {
		q = buscarTexto(q, l, "ventas.nombre_cliente", "ventas.dni", "ventas.metodo_pago")
		return rangoFechas(q, l, "ventas.fecha_creacion")
	}
	total, err := contarYBuscar(ctx, r.db, &model.Venta{}, filtrar, func(q *gorm.DB) error {
		return ordenar(q.Select(ventaColumnas), l, ventaOrden, "ventas").
			Limit(l.PageSize).Offset(l.Offset()).
			Find(&ventas).Error
	})
	return ventas, total, err
}

func (r *ventaRepo) Recientes(ctx context.Context, n int) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select(ventaColumnas).
		Order("ventas.fecha_creacion DESC").
		Limit(n).Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) Resumen(ctx context.Context, desde, hasta time.Time) (dto.ResumenPeriodo, error) {
	var res dto.ResumenPeriodo
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COUNT(*) AS cantidad, COALESCE(SUM(total), 0) AS total").
		Where("fecha_creacion >= ? AND fecha_creacion <= ?", desde, hasta).
		Scan(&res).Error
	return res, err
}

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit(clause.Associations).Create(v).Error
}

func (r *ventaRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("venta_id = ?", id).Order("id").Find(&v.Detalles).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) UpdateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Model(v).Omit(clause.Associations).
		Select("fecha_creacion", "nombre_cliente", "dni", "metodo_pago", "notas", "total", "updated_at").
		Updates(v).Error
}

func (r *ventaRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("venta_id = ?", id).Delete(&model.DetalleVenta{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.Venta{}).Error
}

func (r *ventaRepo) CreateDetalleTx(tx *gorm.DB, d *model.DetalleVenta) error {
	return tx.Omit(clause.Associations).Create(d).Error
}

func (r *ventaRepo) UpdateDetalleTx(tx *gorm.DB, d *model.DetalleVenta) error {
	return tx.Model(d).Omit(clause.Associations).
		Select("producto_id", "cantidad", "precio_unit", "descuento", "subtotal").
		Updates(d).Error
}

func (r *ventaRepo) DeleteDetallesTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).Delete(&model.DetalleVenta{}).Error
}
