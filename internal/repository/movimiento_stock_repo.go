package repository

import (
	"context"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, l dto.Listado) ([]model.MovimientoStock, int64, error)
	// SumaPorProducto returns the net of every movement recorded for the product.
	SumaPorProducto(ctx context.Context, productoID uuid.UUID) (int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) ListByProducto(ctx context.Context, productoID uuid.UUID, l dto.Listado) ([]model.MovimientoStock, int64, error) {
	var movimientos []model.MovimientoStock
	filtrar := func(q *gorm.DB) *gorm.DB { return q.Where("producto_id = ?", productoID) }
	total, err := contarYBuscar(ctx, r.db, &model.MovimientoStock{}, filtrar, func(q *gorm.DB) error {
		return q.Order("created_at DESC").Order("id").
			Limit(l.PageSize).Offset(l.Offset()).
			Find(&movimientos).Error
	})
	return movimientos, total, err
}

func (r *movimientoStockRepo) SumaPorProducto(ctx context.Context, productoID uuid.UUID) (int64, error) {
	var suma int64
	err := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).
		Where("producto_id = ?", productoID).
		Select("COALESCE(SUM(cantidad), 0)").Scan(&suma).Error
	return suma, err
}
