package service

import (
	"context"
	"strings"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompraService interface {
	Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.CompraListItem], error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	Crear(ctx context.Context, req dto.CrearCompraRequest) (*dto.CompraCreadaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type compraService struct {
	repo          repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	stock         *StockService
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	stock *StockService,
) CompraService {
	return &compraService{repo: repo, proveedorRepo: proveedorRepo, productoRepo: productoRepo, stock: stock}
}

const msgCompraNoEncontrada = "Compra no encontrada."

func (s *compraService) Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.CompraListItem], error) {
	compras, total, err := s.repo.List(ctx, l)
	if err != nil {
		return dto.Pagina[dto.CompraListItem]{}, err
	}
	return dto.NuevaPagina(mapSlice(compras, compraToListItem), total, l), nil
}

func (s *compraService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgCompraNoEncontrada)
	}
	return compraToResponse(c), nil
}

// ── Crear ────────────────────────────────────────────────────────────────────
// One transaction:
//   1. create the inline supplier, or check the selected one exists
//   2. lock products, apply +cantidad per product, write the ledger
//   3. insert header and lines, refresh each product's purchase price

func (s *compraService) Crear(ctx context.Context, req dto.CrearCompraRequest) (*dto.CompraCreadaResponse, error) {
	fecha, err := parseFecha(strings.TrimSpace(req.Fecha))
	if err != nil {
		return nil, err
	}

	var proveedorID uuid.UUID
	var nuevo *model.Proveedor
	switch {
	case req.ProveedorID != nil && strings.TrimSpace(*req.ProveedorID) != "":
		if proveedorID, err = uuid.Parse(strings.TrimSpace(*req.ProveedorID)); err != nil {
			return nil, errValidacion("Proveedor invalido.")
		}
	case req.ProveedorNuevo != nil:
		if nuevo, err = nuevoProveedor(*req.ProveedorNuevo); err != nil {
			return nil, err
		}
	default:
		return nil, errValidacion("Debe seleccionar o crear un proveedor.")
	}

	if len(req.Items) == 0 {
		return nil, errValidacion("Debe registrar al menos un ítem.")
	}
	detalles := make([]model.DetalleCompra, len(req.Items))
	lineas := make([]lineaStock, len(req.Items))
	total := decimal.Zero
	for i, it := range req.Items {
		pid, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, errValidacion("Producto invalido en el ítem %d.", i+1)
		}
		if it.Cantidad <= 0 {
			return nil, errValidacion("La cantidad del ítem %d debe ser mayor a cero.", i+1)
		}
		if it.CostoUnit.IsNegative() {
			return nil, errValidacion("El costo del ítem %d no puede ser negativo.", i+1)
		}
		detalles[i] = nuevoDetalleCompra(pid, it.Cantidad, it.CostoUnit)
		lineas[i] = lineaStock{ProductoID: pid, Cantidad: it.Cantidad}
		total = total.Add(detalles[i].Subtotal)
	}

	compra := &model.Compra{
		ID:            uuid.New(),
		Fecha:         fecha,
		TipoDocumento: opcional(req.TipoDocumento),
		Serie:         opcional(req.Serie),
		Numero:        opcional(req.Numero),
		Moneda:        opcional(req.Moneda),
		MetodoPago:    opcional(req.MetodoPago),
		Notas:         opcional(req.Notas),
		Total:         total,
	}

	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if nuevo != nil {
			if err := s.proveedorRepo.CreateTx(tx, nuevo); err != nil {
				return err
			}
			proveedorID = nuevo.ID
		} else {
			ok, err := s.proveedorRepo.ExistsTx(tx, proveedorID)
			if err != nil {
				return err
			}
			if !ok {
				return errNegocio("Proveedor no encontrado.")
			}
		}
		compra.ProveedorID = proveedorID

		plan, err := conciliar(nil, lineas, efectoCompra)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:          model.MovimientoCompra,
			Motivo:        model.MotivoAlta,
			ReferenciaID:  compra.ID,
			Referenciados: productoIDs(lineas),
		})
		if err != nil {
			return err
		}

		if err := s.repo.CreateTx(tx, compra); err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].CompraID = compra.ID
			if err := s.repo.CreateDetalleTx(tx, &detalles[i]); err != nil {
				return err
			}
			if err := s.productoRepo.UpdatePrecioCompraTx(tx, detalles[i].ProductoID, detalles[i].CostoUnit); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("compra_id", compra.ID.String()).Str("total", total.StringFixed(2)).
		Int("items", len(detalles)).Msg("compra registrada")

	return &dto.CompraCreadaResponse{
		ID:          compra.ID.String(),
		ProveedorID: compra.ProveedorID.String(),
		Fecha:       compra.Fecha,
		Total:       compra.Total,
	}, nil
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *compraService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCompraRequest) (*dto.CompraResponse, error) {
	fecha, err := parseFecha(strings.TrimSpace(req.Fecha))
	if err != nil {
		return nil, err
	}

	var detalles []model.DetalleCompra
	var enviadas []lineaStock
	total := decimal.Zero
	for _, it := range req.Items {
		pid, err := uuid.Parse(strings.TrimSpace(it.ProductoID))
		if err != nil || it.Cantidad <= 0 || it.CostoUnit.IsNegative() {
			continue
		}
		d := nuevoDetalleCompra(pid, it.Cantidad, it.CostoUnit)
		detalles = append(detalles, d)
		enviadas = append(enviadas, lineaStock{DetalleID: parseDetalleID(it.DetalleID), ProductoID: pid, Cantidad: it.Cantidad})
		total = total.Add(d.Subtotal)
	}
	if len(detalles) == 0 {
		return nil, errValidacion("No hay ítems válidos.")
	}

	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFoundOr(err, msgCompraNoEncontrada)
		}

		actuales := make([]lineaStock, len(compra.Detalles))
		for i, d := range compra.Detalles {
			actuales[i] = lineaStock{DetalleID: d.ID, ProductoID: d.ProductoID, Cantidad: d.Cantidad}
		}
		plan, err := conciliar(actuales, enviadas, efectoCompra)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:          model.MovimientoCompra,
			Motivo:        model.MotivoEdicion,
			ReferenciaID:  compra.ID,
			Referenciados: productoIDs(enviadas),
		})
		if err != nil {
			return err
		}

		if err := s.repo.DeleteDetallesTx(tx, plan.Eliminadas); err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].CompraID = compra.ID
			if detID, ok := plan.Conservadas[i]; ok {
				detalles[i].ID = detID
				err = s.repo.UpdateDetalleTx(tx, &detalles[i])
			} else {
				err = s.repo.CreateDetalleTx(tx, &detalles[i])
			}
			if err != nil {
				return err
			}
		}

		compra.Fecha = fecha
		compra.TipoDocumento = opcional(req.TipoDocumento)
		compra.Serie = opcional(req.Serie)
		compra.Numero = opcional(req.Numero)
		compra.Moneda = opcional(req.Moneda)
		compra.MetodoPago = opcional(req.MetodoPago)
		compra.Notas = opcional(req.Notas)
		compra.Total = total
		return s.repo.UpdateTx(tx, compra)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("compra_id", id.String()).Str("total", total.StringFixed(2)).Msg("compra actualizada")
	return s.Obtener(ctx, id)
}

// ── Eliminar ─────────────────────────────────────────────────────────────────

// Eliminar reverses every line's stock effect. The reversal is never blocked by
// availability: a compra whose units were already sold may leave stock negative.
func (s *compraService) Eliminar(ctx context.Context, id uuid.UUID) error {
	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		compra, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFoundOr(err, msgCompraNoEncontrada)
		}
		actuales := make([]lineaStock, len(compra.Detalles))
		for i, d := range compra.Detalles {
			actuales[i] = lineaStock{DetalleID: d.ID, ProductoID: d.ProductoID, Cantidad: d.Cantidad}
		}
		plan, err := conciliar(actuales, nil, efectoCompra)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:         model.MovimientoCompra,
			Motivo:       model.MotivoEliminacion,
			ReferenciaID: compra.ID,
		})
		if err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, compra.ID)
	})
	if txErr != nil {
		return txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("compra_id", id.String()).Msg("compra eliminada")
	return nil
}

// nuevoDetalleCompra rounds the cost to cents before computing the subtotal so
// the persisted subtotals always add up to the persisted total.
func nuevoDetalleCompra(productoID uuid.UUID, cantidad int, costo decimal.Decimal) model.DetalleCompra {
	costo = costo.Round(2)
	return model.DetalleCompra{
		ProductoID: productoID,
		Cantidad:   cantidad,
		CostoUnit:  costo,
		Subtotal:   costo.Mul(decimal.NewFromInt(int64(cantidad))),
	}
}
