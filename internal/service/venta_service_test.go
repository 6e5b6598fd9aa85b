package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func edicionVenta(v *dto.VentaResponse) []dto.ItemVentaEdicion {
	items := make([]dto.ItemVentaEdicion, len(v.Items))
	for i, it := range v.Items {
		items[i] = dto.ItemVentaEdicion{
			DetalleID:  ptr(it.ID),
			ProductoID: it.ProductoID,
			Cantidad:   it.Cantidad,
			PrecioUnit: it.PrecioUnit,
			Descuento:  it.Descuento,
		}
	}
	return items
}

func (f *fixture) crearVenta(t *testing.T, items ...dto.ItemVentaRequest) uuid.UUID {
	t.Helper()
	resp, err := f.ventas.Crear(context.Background(), dto.CrearVentaRequest{NombreCliente: "Cliente Mostrador", Items: items})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestVentaCrear_DescuentaStockYCalculaTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 10, 0)
	b := f.producto(t, "B-1", 5, 0)

	resp, err := f.ventas.Crear(ctx, dto.CrearVentaRequest{
		NombreCliente: "  Maria Quispe ",
		DNI:           ptr("45678912"),
		Items: []dto.ItemVentaRequest{
			itemVenta(a, 3, "10", "2.5"),
			// discount above price clamps the line to zero
			itemVenta(b, 2, "3", "5"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Quispe", resp.NombreCliente)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("22.5")), "total %s", resp.Total)
	assert.Equal(t, time.UTC, resp.FechaCreacion.Location())

	assert.Equal(t, 7, f.stockDe(t, a.ID))
	assert.Equal(t, 3, f.stockDe(t, b.ID))

	venta, err := f.ventas.Obtener(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	suma := decimal.Zero
	for _, it := range venta.Items {
		suma = suma.Add(it.Subtotal)
		assert.NotEmpty(t, it.SKU)
	}
	assert.True(t, venta.Total.Equal(suma))

	movs, err := f.catalogo.Movimientos(ctx, a.ID, dto.ListadoQuery{}.Normalizar(dto.MovimientoListado))
	require.NoError(t, err)
	require.Len(t, movs.Data, 1)
	assert.Equal(t, model.MovimientoVenta, movs.Data[0].Tipo)
	assert.Equal(t, -3, movs.Data[0].Cantidad)
	assert.Equal(t, 10, movs.Data[0].StockAnterior)
	assert.Equal(t, 7, movs.Data[0].StockNuevo)
}

func TestVentaCrear_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	a := f.producto(t, "A-1", 5, 0)
	b := f.producto(t, "B-1", 2, 0)

	_, err := f.ventas.Crear(context.Background(), dto.CrearVentaRequest{
		NombreCliente: "Cliente",
		Items:         []dto.ItemVentaRequest{itemVenta(a, 3, "1", "0"), itemVenta(b, 10, "1", "0")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReglaNegocio)
	assert.Contains(t, err.Error(), "B-1")
	assert.Contains(t, err.Error(), "disponible 2, solicitado 10")

	assert.Equal(t, 5, f.stockDe(t, a.ID))
	assert.Equal(t, 2, f.stockDe(t, b.ID))
	assert.Equal(t, int64(0), f.contar(t, &model.Venta{}))
	assert.Equal(t, int64(0), f.contar(t, &model.DetalleVenta{}))
	assert.Equal(t, int64(0), f.contar(t, &model.MovimientoStock{}))
}

func TestVentaCrear_ProductoRepetidoSeSumaAntesDeValidar(t *testing.T) {
	f := newFixture(t)
	a := f.producto(t, "A-1", 5, 0)

	_, err := f.ventas.Crear(context.Background(), dto.CrearVentaRequest{
		NombreCliente: "Cliente",
		Items:         []dto.ItemVentaRequest{itemVenta(a, 3, "1", "0"), itemVenta(a, 3, "1", "0")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disponible 5, solicitado 6")
	assert.Equal(t, 5, f.stockDe(t, a.ID))
}

func TestVentaCrear_Validaciones(t *testing.T) {
	f := newFixture(t)
	a := f.producto(t, "A-1", 5, 0)

	_, err := f.ventas.Crear(context.Background(), dto.CrearVentaRequest{NombreCliente: "  ", Items: []dto.ItemVentaRequest{itemVenta(a, 1, "1", "0")}})
	assert.ErrorIs(t, err, ErrValidacion)

	_, err = f.ventas.Crear(context.Background(), dto.CrearVentaRequest{NombreCliente: "X"})
	assert.ErrorIs(t, err, ErrValidacion)

	_, err = f.ventas.Crear(context.Background(), dto.CrearVentaRequest{NombreCliente: "X", Items: []dto.ItemVentaRequest{itemVenta(a, 1, "1", "-1")}})
	assert.ErrorIs(t, err, ErrValidacion)

	_, err = f.ventas.Crear(context.Background(), dto.CrearVentaRequest{
		NombreCliente: "X",
		Items:         []dto.ItemVentaRequest{{ProductoID: uuid.NewString(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, ErrReglaNegocio)

	assert.Equal(t, 5, f.stockDe(t, a.ID))
}

func TestVentaActualizar_AjustaDiferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 10, 0)
	id := f.crearVenta(t, itemVenta(a, 5, "2", "0"))
	require.Equal(t, 5, f.stockDe(t, a.ID))

	actual, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	items := edicionVenta(actual)
	items[0].Cantidad = 8

	resp, err := f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{NombreCliente: "Cliente", Items: items})
	require.NoError(t, err)
	assert.Equal(t, 2, f.stockDe(t, a.ID))
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(16)))

	items[0].Cantidad = 2
	_, err = f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{NombreCliente: "Cliente", Items: items})
	require.NoError(t, err)
	assert.Equal(t, 8, f.stockDe(t, a.ID))
}

func TestVentaActualizar_ValidaStockAlAumentar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 5, 0)
	id := f.crearVenta(t, itemVenta(a, 2, "1", "0"))

	actual, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	items := edicionVenta(actual)
	items[0].Cantidad = 10

	_, err = f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{NombreCliente: "Otro", Items: items})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReglaNegocio)
	assert.Equal(t, 3, f.stockDe(t, a.ID))

	venta, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cliente Mostrador", venta.NombreCliente)
	assert.Equal(t, 2, venta.Items[0].Cantidad)
}

func TestVentaActualizar_CambioDeProductoSinStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 5, 0)
	b := f.producto(t, "B-1", 1, 0)
	id := f.crearVenta(t, itemVenta(a, 2, "1", "0"))
	movimientos := f.contar(t, &model.MovimientoStock{})

	actual, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	items := edicionVenta(actual)
	items[0].ProductoID = b.ID.String()

	_, err = f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{NombreCliente: "Cliente Mostrador", Items: items})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReglaNegocio)
	assert.Contains(t, err.Error(), "Stock insuficiente para el producto Producto B-1")
	assert.Contains(t, err.Error(), "disponible 1, solicitado 2")

	assert.Equal(t, 3, f.stockDe(t, a.ID))
	assert.Equal(t, 1, f.stockDe(t, b.ID))
	assert.Equal(t, movimientos, f.contar(t, &model.MovimientoStock{}))

	venta, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	require.Len(t, venta.Items, 1)
	assert.Equal(t, a.ID.String(), venta.Items[0].ProductoID)
}

func TestVentaActualizar_SinValidacionPermiteNegativo(t *testing.T) {
	f := newFixtureWith(t, fixtureOpts{validarStockEdicion: false})
	ctx := context.Background()
	a := f.producto(t, "A-1", 5, 0)
	id := f.crearVenta(t, itemVenta(a, 2, "1", "0"))

	actual, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)
	items := edicionVenta(actual)
	items[0].Cantidad = 10

	_, err = f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{NombreCliente: "Cliente", Items: items})
	require.NoError(t, err)
	assert.Equal(t, -5, f.stockDe(t, a.ID))
}

func TestVentaActualizar_CambiaFechaYCliente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 5, 0)
	id := f.crearVenta(t, itemVenta(a, 1, "1", "0"))

	actual, err := f.ventas.Obtener(ctx, id)
	require.NoError(t, err)

	resp, err := f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{
		NombreCliente: "Jorge",
		Fecha:         ptr("2024-02-10"),
		Items:         edicionVenta(actual),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jorge", resp.NombreCliente)
	assert.True(t, resp.FechaCreacion.Equal(time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)), "fecha %s", resp.FechaCreacion)
	assert.Equal(t, 4, f.stockDe(t, a.ID))

	_, err = f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{
		NombreCliente: "Jorge",
		Fecha:         ptr("10-02-2024"),
		Items:         edicionVenta(actual),
	})
	assert.ErrorIs(t, err, ErrValidacion)
}

func TestVentaActualizar_SinItemsValidosYNoEncontrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 5, 0)
	id := f.crearVenta(t, itemVenta(a, 1, "1", "0"))

	_, err := f.ventas.Actualizar(ctx, id, dto.ActualizarVentaRequest{
		NombreCliente: "X",
		Items:         []dto.ItemVentaEdicion{{ProductoID: "no-es-uuid", Cantidad: 2}},
	})
	require.Error(t, err)
	assert.Equal(t, "No hay ítems válidos.", err.Error())

	_, err = f.ventas.Actualizar(ctx, uuid.New(), dto.ActualizarVentaRequest{
		NombreCliente: "X",
		Items:         []dto.ItemVentaEdicion{{ProductoID: a.ID.String(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, ErrNoEncontrado)
	assert.Equal(t, 4, f.stockDe(t, a.ID))
}

func TestVentaEliminar_DevuelveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 6, 0)
	b := f.producto(t, "B-1", 2, 0)
	id := f.crearVenta(t, itemVenta(a, 4, "1", "0"), itemVenta(b, 2, "1", "0"))
	require.Equal(t, 0, f.stockDe(t, b.ID))

	require.NoError(t, f.ventas.Eliminar(ctx, id))
	assert.Equal(t, 6, f.stockDe(t, a.ID))
	assert.Equal(t, 2, f.stockDe(t, b.ID))
	assert.Equal(t, int64(0), f.contar(t, &model.DetalleVenta{}))

	assert.ErrorIs(t, f.ventas.Eliminar(ctx, id), ErrNoEncontrado)
}

// stock must equal the initial stock plus the signed quantities of every
// persisted line, whatever sequence of operations produced them
func TestStock_IgualASumaDeLineasPersistidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.producto(t, "A-1", 0, 0)
	b := f.producto(t, "B-1", 0, 0)
	prov := f.proveedor(t, "Prov")

	c1 := f.crearCompra(t, prov.ID, itemCompra(a, 10, "2.5"), itemCompra(b, 6, "4"))
	c2 := f.crearCompra(t, prov.ID, itemCompra(a, 3, "2.5"))
	v1 := f.crearVenta(t, itemVenta(a, 4, "5", "0"), itemVenta(b, 1, "8", "0"))

	compra, err := f.compras.Obtener(ctx, c1)
	require.NoError(t, err)
	items := edicionCompra(compra)
	items[lineaDe(t, items, a)].Cantidad = 7
	items[lineaDe(t, items, b)].Cantidad = 2
	_, err = f.compras.Actualizar(ctx, c1, dto.ActualizarCompraRequest{Fecha: "2024-03-16", Items: items})
	require.NoError(t, err)

	require.NoError(t, f.compras.Eliminar(ctx, c2))

	venta, err := f.ventas.Obtener(ctx, v1)
	require.NoError(t, err)
	vitems := edicionVenta(venta)
	vitems = append(vitems, dto.ItemVentaEdicion{ProductoID: a.ID.String(), Cantidad: 1, PrecioUnit: decimal.NewFromInt(5)})
	_, err = f.ventas.Actualizar(ctx, v1, dto.ActualizarVentaRequest{NombreCliente: "Cliente", Items: vitems})
	require.NoError(t, err)

	for _, p := range []*model.Producto{a, b} {
		esperado := sumaLineas(t, f.db, "detalles_compra", p.ID) - sumaLineas(t, f.db, "detalles_venta", p.ID)
		assert.Equal(t, esperado, int64(f.stockDe(t, p.ID)), p.SKU)

		ledger, err := f.movimientos.SumaPorProducto(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, esperado, ledger, p.SKU)
	}
	assert.Equal(t, 2, f.stockDe(t, a.ID))
	assert.Equal(t, 1, f.stockDe(t, b.ID))
}

func sumaLineas(t *testing.T, db *gorm.DB, tabla string, productoID uuid.UUID) int64 {
	t.Helper()
	var suma int64
	require.NoError(t, db.Table(tabla).Where("producto_id = ?", productoID).
		Select("COALESCE(SUM(cantidad), 0)").Scan(&suma).Error)
	return suma
}

func TestVenta_EncolaAlertaDeStockBajo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixtureWith(t, fixtureOpts{dispatcher: worker.NewDispatcher(rdb), validarStockEdicion: true})
	a := f.producto(t, "A-1", 5, 2)
	b := f.producto(t, "B-1", 50, 2)

	f.crearVenta(t, itemVenta(a, 3, "1", "0"), itemVenta(b, 1, "1", "0"))

	jobs, err := mr.List(worker.QueueAlertas)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	var job worker.Job
	require.NoError(t, json.Unmarshal([]byte(jobs[0]), &job))
	assert.Equal(t, worker.JobAlertaStock, job.Type)

	var payload worker.AlertaStockPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, model.MovimientoVenta, payload.Origen)
	require.Len(t, payload.Productos, 1)
	assert.Equal(t, "A-1", payload.Productos[0].SKU)
	assert.Equal(t, 2, payload.Productos[0].Stock)

	// stock above the minimum does not alert
	prov := f.proveedor(t, "Prov")
	f.crearCompra(t, prov.ID, itemCompra(b, 1, "1"))
	jobs, err = mr.List(worker.QueueAlertas)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestVenta_RedisCaidoNoFallaLaOperacion(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	f := newFixtureWith(t, fixtureOpts{dispatcher: worker.NewDispatcher(rdb), validarStockEdicion: true})
	a := f.producto(t, "A-1", 1, 5)

	f.crearVenta(t, itemVenta(a, 1, "1", "0"))
	assert.Equal(t, 0, f.stockDe(t, a.ID))
}
