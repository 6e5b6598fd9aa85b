package infra

import (
	"fmt"

	"github.com/ChristianJLC/web/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseOptions tunes the connection pool.
type DatabaseOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// NewDatabase establishes a GORM connection backed by pgx. The returned handle
// is the process-wide pool; callers inject it, nothing reads it from a global.
func NewDatabase(dsn string, opts DatabaseOptions) (*gorm.DB, error) {
	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)

	return db, nil
}

// RunMigrations creates / updates all tables from the models, then applies
// the idempotent SQL patches AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs PostgreSQL-only DDL. Each statement uses IF NOT
// EXISTS semantics so re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// case-insensitive search on the catalog and sales listings
		`CREATE INDEX IF NOT EXISTS idx_productos_nombre_lower ON productos (LOWER(nombre))`,
		`CREATE INDEX IF NOT EXISTS idx_productos_sku_lower ON productos (LOWER(sku))`,
		`CREATE INDEX IF NOT EXISTS idx_ventas_cliente_lower ON ventas (LOWER(nombre_cliente))`,
		// dashboard "stock bajo" counter
		`CREATE INDEX IF NOT EXISTS idx_productos_stock_bajo ON productos (id) WHERE stock <= min_stock`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_detalles_compra_cantidad') THEN
		    ALTER TABLE detalles_compra ADD CONSTRAINT chk_detalles_compra_cantidad CHECK (cantidad > 0);
		  END IF;
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_detalles_venta_cantidad') THEN
		    ALTER TABLE detalles_venta ADD CONSTRAINT chk_detalles_venta_cantidad CHECK (cantidad > 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
