package repository

import (
	"context"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ContarReferencias counts compra and venta line items pointing at the product.
	ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error)
	Contar(ctx context.Context) (int64, error)
	ContarStockBajo(ctx context.Context) (int64, error)

	// Used inside transactions; callers must pass the tx instance
	FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpdatePrecioCompraTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

var productoOrden = map[string]string{
	"sku":         "productos.sku",
	"nombre":      "productos.nombre",
	"precio":      "productos.precio_venta",
	"stock":       "productos.stock",
	"actualizado": "productos.fecha_actualizacion",
}

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	filtrar := func(q *gorm.DB) *gorm.DB {
		q = buscarTexto(q, filter.Listado,
			"productos.sku", "productos.nombre", "productos.marca", "productos.categoria", "productos.oem_code")
		if filter.StockBajo {
			q = q.Where("productos.stock <= productos.min_stock")
		}
		return q
	}
	total, err := contarYBuscar(ctx, r.db, &model.Producto{}, filtrar, func(q *gorm.DB) error {
		return ordenar(q, filter.Listado, productoOrden, "productos").
			Limit(filter.PageSize).Offset(filter.Offset()).
			Find(&productos).Error
	})
	return productos, total, err
}

// Update writes the editable catalog fields only; stock and purchase price
// are owned by the compra/venta flows.
func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Model(p).
		Select("nombre", "categoria", "marca", "presentacion", "especificacion",
			"oem_code", "precio_venta", "min_stock", "fecha_actualizacion").
		Updates(p).Error
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Producto{}).Error
}

func (r *productoRepo) ContarReferencias(ctx context.Context, id uuid.UUID) (int64, error) {
	var compras, ventas int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.DetalleCompra{}).Where("producto_id = ?", id).Count(&compras).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.DetalleVenta{}).Where("producto_id = ?", id).Count(&ventas).Error; err != nil {
		return 0, err
	}
	return compras + ventas, nil
}

func (r *productoRepo) Contar(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Count(&n).Error
	return n, err
}

func (r *productoRepo) ContarStockBajo(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).Where("stock <= min_stock").Count(&n).Error
	return n, err
}

// FindByIDsForUpdateTx locks the rows in id order so two writers touching the
// same products always acquire the locks in the same sequence.
func (r *productoRepo) FindByIDsForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).Order("id").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productoRepo) UpdatePrecioCompraTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"precio_compra":       costo,
			"fecha_actualizacion": time.Now().UTC(),
		}).Error
}
