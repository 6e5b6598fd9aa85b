package service

import (
	"context"
	"sort"

	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/observability"
	"github.com/ChristianJLC/web/internal/repository"
	"github.com/ChristianJLC/web/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ── Stock reconciliation ─────────────────────────────────────────────────────
//
// Every compra/venta write goes through the same two steps:
//   1. conciliar diffs the persisted line items against the submitted ones and
//      produces a plan: which lines are kept, added, removed, and the net stock
//      delta per product.
//   2. StockService.Aplicar executes the deltas inside the caller's transaction.
//
// Create is a diff against no lines and delete is a diff against an empty
// submission, so the three operations share one code path.

// lineaStock is the stock-relevant part of a line item. DetalleID is zero for
// submitted lines that do not reference a persisted one.
type lineaStock struct {
	DetalleID  uuid.UUID
	ProductoID uuid.UUID
	Cantidad   int
}

// efecto is the sign a record kind applies to stock.
type efecto int

const (
	efectoCompra efecto = 1
	efectoVenta  efecto = -1
)

type deltaStock struct {
	ProductoID uuid.UUID
	Delta      int
}

type planConciliacion struct {
	// Conservadas maps a submitted index to the persisted line it replaces.
	Conservadas map[int]uuid.UUID
	Nuevas      []int
	Eliminadas  []uuid.UUID
	// Deltas are net per product, in first-touch order, zero nets omitted.
	Deltas []deltaStock
}

func conciliar(actuales, enviadas []lineaStock, e efecto) (planConciliacion, error) {
	plan := planConciliacion{Conservadas: make(map[int]uuid.UUID)}
	signo := int(e)

	porID := make(map[uuid.UUID]lineaStock, len(actuales))
	for _, a := range actuales {
		porID[a.DetalleID] = a
	}

	netos := make(map[uuid.UUID]int)
	var orden []uuid.UUID
	sumar := func(id uuid.UUID, delta int) {
		if _, ok := netos[id]; !ok {
			orden = append(orden, id)
		}
		netos[id] += delta
	}

	usados := make(map[uuid.UUID]bool, len(actuales))
	for i, en := range enviadas {
		if en.DetalleID != uuid.Nil {
			if prev, ok := porID[en.DetalleID]; ok {
				if usados[en.DetalleID] {
					return planConciliacion{}, errValidacion("El detalle %s aparece mas de una vez", en.DetalleID)
				}
				usados[en.DetalleID] = true
				plan.Conservadas[i] = prev.DetalleID
				if prev.ProductoID != en.ProductoID {
					sumar(prev.ProductoID, -signo*prev.Cantidad)
					sumar(en.ProductoID, signo*en.Cantidad)
				} else {
					sumar(en.ProductoID, signo*(en.Cantidad-prev.Cantidad))
				}
				continue
			}
		}
		plan.Nuevas = append(plan.Nuevas, i)
		sumar(en.ProductoID, signo*en.Cantidad)
	}

	for _, a := range actuales {
		if !usados[a.DetalleID] {
			plan.Eliminadas = append(plan.Eliminadas, a.DetalleID)
			sumar(a.ProductoID, -signo*a.Cantidad)
		}
	}

	for _, id := range orden {
		if d := netos[id]; d != 0 {
			plan.Deltas = append(plan.Deltas, deltaStock{ProductoID: id, Delta: d})
		}
	}
	return plan, nil
}

// ── Applying a plan ──────────────────────────────────────────────────────────

// AplicacionStock describes one reconciliation run.
type AplicacionStock struct {
	Tipo         string // model.MovimientoCompra | model.MovimientoVenta
	Motivo       string // model.MotivoAlta | MotivoEdicion | MotivoEliminacion
	ReferenciaID uuid.UUID
	// Referenciados are all product ids in the submission; each must exist
	// even when its net delta is zero.
	Referenciados []uuid.UUID
	// ValidarDisponible rejects the run when a negative delta exceeds stock.
	ValidarDisponible bool
}

// ResultadoStock is what a committed run reports after the fact.
type ResultadoStock struct {
	Tipo        string
	Motivo      string
	Movimientos []model.MovimientoStock
	Productos   []model.Producto // touched products with their new stock
}

// StockService owns Producto.stock writes and the movement ledger.
type StockService struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	metrics     *observability.Metrics
	dispatcher  *worker.Dispatcher
}

// NewStockService wires the reconciler. metrics and dispatcher may be nil.
func NewStockService(
	productos repository.ProductoRepository,
	movimientos repository.MovimientoStockRepository,
	metrics *observability.Metrics,
	dispatcher *worker.Dispatcher,
) *StockService {
	return &StockService{productos: productos, movimientos: movimientos, metrics: metrics, dispatcher: dispatcher}
}

// Aplicar locks every product involved, checks existence and (optionally)
// availability before writing anything, then applies the net deltas and
// appends one ledger row per product. It must run inside tx.
func (s *StockService) Aplicar(tx *gorm.DB, plan planConciliacion, a AplicacionStock) (*ResultadoStock, error) {
	ids := idsUnicos(a.Referenciados, plan.Deltas)
	productos, err := s.productos.FindByIDsForUpdateTx(tx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		porID[productos[i].ID] = &productos[i]
	}
	for _, id := range ids {
		if _, ok := porID[id]; !ok {
			return nil, errNegocio("Producto no encontrado: %s", id)
		}
	}

	if a.ValidarDisponible {
		for _, d := range plan.Deltas {
			p := porID[d.ProductoID]
			if d.Delta < 0 && p.Stock+d.Delta < 0 {
				return nil, errNegocio("Stock insuficiente para el producto %s (%s): disponible %d, solicitado %d",
					p.Nombre, p.SKU, p.Stock, -d.Delta)
			}
		}
	}

	res := &ResultadoStock{Tipo: a.Tipo, Motivo: a.Motivo}
	for _, d := range plan.Deltas {
		p := porID[d.ProductoID]
		if err := s.productos.UpdateStockTx(tx, p.ID, d.Delta); err != nil {
			return nil, err
		}
		mov := model.MovimientoStock{
			ProductoID:    p.ID,
			Tipo:          a.Tipo,
			Motivo:        a.Motivo,
			Cantidad:      d.Delta,
			StockAnterior: p.Stock,
			StockNuevo:    p.Stock + d.Delta,
			ReferenciaID:  a.ReferenciaID,
		}
		if err := s.movimientos.CreateTx(tx, &mov); err != nil {
			return nil, err
		}
		p.Stock += d.Delta
		res.Movimientos = append(res.Movimientos, mov)
		res.Productos = append(res.Productos, *p)
	}
	return res, nil
}

// Publicar runs the post-commit side effects of a run: metrics and the
// low-stock alert job. Failures are logged and never reach the caller.
func (s *StockService) Publicar(ctx context.Context, res *ResultadoStock) {
	if res == nil {
		return
	}
	s.metrics.Operacion(res.Tipo, res.Motivo)
	for _, m := range res.Movimientos {
		s.metrics.MovimientoStock(m.Tipo, m.Motivo, m.Cantidad)
	}
	if s.dispatcher == nil {
		return
	}

	var bajos []worker.ProductoAlerta
	for _, p := range res.Productos {
		if p.StockBajo() {
			bajos = append(bajos, worker.ProductoAlerta{
				ID: p.ID.String(), SKU: p.SKU, Nombre: p.Nombre, Stock: p.Stock, MinStock: p.MinStock,
			})
		}
	}
	if len(bajos) == 0 {
		return
	}
	sort.Slice(bajos, func(i, j int) bool { return bajos[i].SKU < bajos[j].SKU })
	if err := s.dispatcher.EnqueueAlertaStock(ctx, worker.AlertaStockPayload{Origen: res.Tipo, Productos: bajos}); err != nil {
		log.Warn().Err(err).Int("productos", len(bajos)).Msg("no se pudo encolar la alerta de stock")
	}
}

func idsUnicos(referenciados []uuid.UUID, deltas []deltaStock) []uuid.UUID {
	vistos := make(map[uuid.UUID]bool, len(referenciados)+len(deltas))
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !vistos[id] {
			vistos[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range referenciados {
		add(id)
	}
	for _, d := range deltas {
		add(d.ProductoID)
	}
	return ids
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func productoIDs(lineas []lineaStock) []uuid.UUID {
	ids := make([]uuid.UUID, len(lineas))
	for i, l := range lineas {
		ids[i] = l.ProductoID
	}
	return ids
}

// parseDetalleID reads an optional line id; blank or malformed ids count as
// "no id", which makes the line new.
func parseDetalleID(s *string) uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
