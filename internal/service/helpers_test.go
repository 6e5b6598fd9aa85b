package service

import (
	"context"
	"testing"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/infra"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"
	"github.com/ChristianJLC/web/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// One connection keeps every query on the same memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))
	return db
}

type fixture struct {
	db          *gorm.DB
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	proveedores repository.ProveedorRepository
	stock       *StockService
	compras     CompraService
	ventas      VentaService
	catalogo    ProductoService
}

type fixtureOpts struct {
	dispatcher          *worker.Dispatcher
	validarStockEdicion bool
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureOpts{validarStockEdicion: true})
}

func newFixtureWith(t *testing.T, o fixtureOpts) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:          db,
		productos:   repository.NewProductoRepository(db),
		movimientos: repository.NewMovimientoStockRepository(db),
		proveedores: repository.NewProveedorRepository(db),
	}
	f.stock = NewStockService(f.productos, f.movimientos, nil, o.dispatcher)
	f.compras = NewCompraService(repository.NewCompraRepository(db), f.proveedores, f.productos, f.stock)
	f.ventas = NewVentaService(repository.NewVentaRepository(db), f.stock, o.validarStockEdicion)
	f.catalogo = NewProductoService(f.productos, f.movimientos)
	return f
}

func (f *fixture) producto(t *testing.T, sku string, stock, minStock int) *model.Producto {
	t.Helper()
	p := &model.Producto{
		SKU:         sku,
		Nombre:      "Producto " + sku,
		Categoria:   "General",
		PrecioVenta: decimal.NewFromInt(20),
		Stock:       stock,
		MinStock:    minStock,
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) proveedor(t *testing.T, nombre string) *model.Proveedor {
	t.Helper()
	p := &model.Proveedor{Nombre: nombre}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) stockDe(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.productos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) contar(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *fixture) crearCompra(t *testing.T, proveedorID uuid.UUID, items ...dto.ItemCompraRequest) uuid.UUID {
	t.Helper()
	pid := proveedorID.String()
	resp, err := f.compras.Crear(context.Background(), dto.CrearCompraRequest{
		ProveedorID: &pid,
		Fecha:       "2024-03-15",
		Items:       items,
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func itemCompra(p *model.Producto, cantidad int, costo string) dto.ItemCompraRequest {
	return dto.ItemCompraRequest{ProductoID: p.ID.String(), Cantidad: cantidad, CostoUnit: decimal.RequireFromString(costo)}
}

func itemVenta(p *model.Producto, cantidad int, precio, descuento string) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{
		ProductoID: p.ID.String(),
		Cantidad:   cantidad,
		PrecioUnit: decimal.RequireFromString(precio),
		Descuento:  decimal.RequireFromString(descuento),
	}
}

func ptr[T any](v T) *T { return &v }
