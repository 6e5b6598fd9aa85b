package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Listar(ctx context.Context, filter dto.ProductoFilter) (dto.Pagina[dto.ProductoResponse], error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Movimientos(ctx context.Context, id uuid.UUID, l dto.Listado) (dto.Pagina[dto.MovimientoStockResponse], error)
}

type productoService struct {
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewProductoService(repo repository.ProductoRepository, movimientos repository.MovimientoStockRepository) ProductoService {
	return &productoService{repo: repo, movimientos: movimientos}
}

const msgProductoNoEncontrado = "Producto no encontrado."

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (dto.Pagina[dto.ProductoResponse], error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.Pagina[dto.ProductoResponse]{}, err
	}
	return dto.NuevaPagina(mapSlice(productos, productoToResponse), total, filter.Listado), nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgProductoNoEncontrado)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

// Crear registers a product with zero stock; stock only moves through compras and ventas.
func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, errValidacion("El SKU es obligatorio.")
	}
	if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
		return nil, errNegocio("SKU ya registrado.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p := &model.Producto{
		SKU:            sku,
		Nombre:         strings.TrimSpace(req.Nombre),
		Categoria:      strings.TrimSpace(req.Categoria),
		Marca:          req.Marca,
		Presentacion:   req.Presentacion,
		Especificacion: req.Especificacion,
		OEMCode:        req.OEMCode,
		PrecioCompra:   req.PrecioCompra.Round(2),
		PrecioVenta:    req.PrecioVenta.Round(2),
		MinStock:       req.MinStock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		// two concurrent creates can both pass the lookup above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errNegocio("SKU ya registrado.")
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgProductoNoEncontrado)
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Categoria != nil {
		p.Categoria = strings.TrimSpace(*req.Categoria)
	}
	if req.Marca != nil {
		p.Marca = req.Marca
	}
	if req.Presentacion != nil {
		p.Presentacion = req.Presentacion
	}
	if req.Especificacion != nil {
		p.Especificacion = req.Especificacion
	}
	if req.OEMCode != nil {
		p.OEMCode = req.OEMCode
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = req.PrecioVenta.Round(2)
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	p.FechaActualizacion = time.Now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

// Eliminar hard-deletes a product that no compra or venta line references.
func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, msgProductoNoEncontrado)
	}
	refs, err := s.repo.ContarReferencias(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return errNegocio("El producto tiene compras o ventas registradas y no puede eliminarse.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errNegocio("El producto tiene compras o ventas registradas y no puede eliminarse.")
		}
		return err
	}
	return nil
}

func (s *productoService) Movimientos(ctx context.Context, id uuid.UUID, l dto.Listado) (dto.Pagina[dto.MovimientoStockResponse], error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return dto.Pagina[dto.MovimientoStockResponse]{}, notFoundOr(err, msgProductoNoEncontrado)
	}
	movs, total, err := s.movimientos.ListByProducto(ctx, id, l)
	if err != nil {
		return dto.Pagina[dto.MovimientoStockResponse]{}, err
	}
	return dto.NuevaPagina(mapSlice(movs, movimientoToResponse), total, l), nil
}
