package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
	"github.com/ChristianJLC/web/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorService interface {
	Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.ProveedorResponse], error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

const msgProveedorNoEncontrado = "Proveedor no encontrado."

func (s *proveedorService) Listar(ctx context.Context, l dto.Listado) (dto.Pagina[dto.ProveedorResponse], error) {
	proveedores, total, err := s.repo.List(ctx, l)
	if err != nil {
		return dto.Pagina[dto.ProveedorResponse]{}, err
	}
	return dto.NuevaPagina(mapSlice(proveedores, proveedorToResponse), total, l), nil
}

func (s *proveedorService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgProveedorNoEncontrado)
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Crear(ctx context.Context, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := nuevoProveedor(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, msgProveedorNoEncontrado)
	}
	datos, err := nuevoProveedor(req)
	if err != nil {
		return nil, err
	}
	datos.ID = p.ID
	datos.CreatedAt = p.CreatedAt
	if err := s.repo.Update(ctx, datos); err != nil {
		return nil, err
	}
	resp := proveedorToResponse(datos)
	return &resp, nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, msgProveedorNoEncontrado)
	}
	n, err := s.repo.ContarCompras(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errNegocio("El proveedor tiene compras registradas y no puede eliminarse.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errNegocio("El proveedor tiene compras registradas y no puede eliminarse.")
		}
		return err
	}
	return nil
}

// nuevoProveedor builds the model from a request, trimming text and turning
// blank optional fields into NULL. Also used for the inline supplier of a compra.
func nuevoProveedor(req dto.ProveedorRequest) (*model.Proveedor, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, errValidacion("El nombre del proveedor es obligatorio.")
	}
	return &model.Proveedor{
		Nombre:   nombre,
		RUC:      opcional(req.RUC),
		Telefono: opcional(req.Telefono),
		Correo:   opcional(req.Correo),
		Ciudad:   opcional(req.Ciudad),
		Notas:    opcional(req.Notas),
	}, nil
}

// opcional trims s and maps an empty result to nil.
func opcional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
