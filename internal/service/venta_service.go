package service

import (
	"context"
	"strings"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.VentaListItem], error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	Crear(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaCreadaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVentaRequest) (*dto.VentaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type ventaService struct {
	repo  repository.VentaRepository
	stock *StockService
	// validarEdicion re-checks availability when a sale edit takes more units.
	validarEdicion bool
}

func NewVentaService(repo repository.VentaRepository, stock *StockService, validarStockEdicion bool) VentaService {
	return &ventaService{repo: repo, stock: stock, validarEdicion: validarStockEdicion}
}

const msgVentaNoEncontrada = "Venta no encontrada."

func (s *ventaService) Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.VentaListItem], error) {
	ventas, total, err := s.repo.List(ctx, l)
	if err != nil {
		return dto.Pagina[dto.VentaListItem]{}, err
	}
	return dto.NuevaPagina(mapSlice(ventas, ventaToListItem), total, l), nil
}

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgVentaNoEncontrada)
	}
	return ventaToResponse(v), nil
}

// ── Crear ────────────────────────────────────────────────────────────────────
// Availability is checked for the whole batch (repeated products summed)
// before anything is written; one short product aborts the sale.

func (s *ventaService) Crear(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaCreadaResponse, error) {
	cliente := strings.TrimSpace(req.NombreCliente)
	if cliente == "" {
		return nil, errValidacion("El nombre del cliente es obligatorio.")
	}
	if len(req.Items) == 0 {
		return nil, errValidacion("Debe registrar al menos un ítem.")
	}

	detalles := make([]model.DetalleVenta, len(req.Items))
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
		if it.PrecioUnit.IsNegative() || it.Descuento.IsNegative() {
			return nil, errValidacion("El precio y el descuento del ítem %d no pueden ser negativos.", i+1)
		}
		detalles[i] = nuevoDetalleVenta(pid, it.Cantidad, it.PrecioUnit, it.Descuento)
		lineas[i] = lineaStock{ProductoID: pid, Cantidad: it.Cantidad}
		total = total.Add(detalles[i].Subtotal)
	}

	venta := &model.Venta{
		ID:            uuid.New(),
		FechaCreacion: time.Now().UTC(),
		NombreCliente: cliente,
		DNI:           opcional(req.DNI),
		MetodoPago:    opcional(req.MetodoPago),
		Notas:         opcional(req.Notas),
		Total:         total,
	}

	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		plan, err := conciliar(nil, lineas, efectoVenta)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:              model.MovimientoVenta,
			Motivo:            model.MotivoAlta,
			ReferenciaID:      venta.ID,
			Referenciados:     productoIDs(lineas),
			ValidarDisponible: true,
		})
		if err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, venta); err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].VentaID = venta.ID
			if err := s.repo.CreateDetalleTx(tx, &detalles[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("venta_id", venta.ID.String()).Str("total", total.StringFixed(2)).
		Int("items", len(detalles)).Msg("venta registrada")

	return &dto.VentaCreadaResponse{
		ID:            venta.ID.String(),
		FechaCreacion: venta.FechaCreacion,
		NombreCliente: venta.NombreCliente,
		Total:         venta.Total,
	}, nil
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *ventaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVentaRequest) (*dto.VentaResponse, error) {
	cliente := strings.TrimSpace(req.NombreCliente)
	if cliente == "" {
		return nil, errValidacion("El nombre del cliente es obligatorio.")
	}
	var fecha *time.Time
	if req.Fecha != nil && strings.TrimSpace(*req.Fecha) != "" {
		f, err := parseFecha(strings.TrimSpace(*req.Fecha))
		if err != nil {
			return nil, err
		}
		fecha = &f
	}

	var detalles []model.DetalleVenta
	var enviadas []lineaStock
	total := decimal.Zero
	for _, it := range req.Items {
		pid, err := uuid.Parse(strings.TrimSpace(it.ProductoID))
		if err != nil || it.Cantidad <= 0 || it.PrecioUnit.IsNegative() || it.Descuento.IsNegative() {
			continue
		}
		d := nuevoDetalleVenta(pid, it.Cantidad, it.PrecioUnit, it.Descuento)
		detalles = append(detalles, d)
		enviadas = append(enviadas, lineaStock{DetalleID: parseDetalleID(it.DetalleID), ProductoID: pid, Cantidad: it.Cantidad})
		total = total.Add(d.Subtotal)
	}
	if len(detalles) == 0 {
		return nil, errValidacion("No hay ítems válidos.")
	}

	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFoundOr(err, msgVentaNoEncontrada)
		}

		actuales := make([]lineaStock, len(venta.Detalles))
		for i, d := range venta.Detalles {
			actuales[i] = lineaStock{DetalleID: d.ID, ProductoID: d.ProductoID, Cantidad: d.Cantidad}
		}
		plan, err := conciliar(actuales, enviadas, efectoVenta)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:              model.MovimientoVenta,
			Motivo:            model.MotivoEdicion,
			ReferenciaID:      venta.ID,
			Referenciados:     productoIDs(enviadas),
			ValidarDisponible: s.validarEdicion,
		})
		if err != nil {
			return err
		}

		if err := s.repo.DeleteDetallesTx(tx, plan.Eliminadas); err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].VentaID = venta.ID
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

		venta.NombreCliente = cliente
		venta.DNI = opcional(req.DNI)
		venta.MetodoPago = opcional(req.MetodoPago)
		venta.Notas = opcional(req.Notas)
		if fecha != nil {
			venta.FechaCreacion = *fecha
		}
		venta.Total = total
		return s.repo.UpdateTx(tx, venta)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("venta_id", id.String()).Str("total", total.StringFixed(2)).Msg("venta actualizada")
	return s.Obtener(ctx, id)
}

// ── Eliminar ─────────────────────────────────────────────────────────────────

// Eliminar returns every sold unit to stock.
func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	var res *ResultadoStock
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		venta, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return notFoundOr(err, msgVentaNoEncontrada)
		}
		actuales := make([]lineaStock, len(venta.Detalles))
		for i, d := range venta.Detalles {
			actuales[i] = lineaStock{DetalleID: d.ID, ProductoID: d.ProductoID, Cantidad: d.Cantidad}
		}
		plan, err := conciliar(actuales, nil, efectoVenta)
		if err != nil {
			return err
		}
		res, err = s.stock.Aplicar(tx, plan, AplicacionStock{
			Tipo:         model.MovimientoVenta,
			Motivo:       model.MotivoEliminacion,
			ReferenciaID: venta.ID,
		})
		if err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, venta.ID)
	})
	if txErr != nil {
		return txErr
	}

	s.stock.Publicar(ctx, res)
	log.Info().Str("venta_id", id.String()).Msg("venta eliminada")
	return nil
}

// nuevoDetalleVenta computes max(0, precio - descuento) × cantidad on values
// already rounded to cents.
func nuevoDetalleVenta(productoID uuid.UUID, cantidad int, precio, descuento decimal.Decimal) model.DetalleVenta {
	precio = precio.Round(2)
	descuento = descuento.Round(2)
	neto := decimal.Max(decimal.Zero, precio.Sub(descuento))
	return model.DetalleVenta{
		ProductoID: productoID,
		Cantidad:   cantidad,
		PrecioUnit: precio,
		Descuento:  descuento,
		Subtotal:   neto.Mul(decimal.NewFromInt(int64(cantidad))),
	}
}
