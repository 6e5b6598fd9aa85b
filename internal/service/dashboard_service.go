package service

import (
	"context"
	"strings"
	"time"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/repository"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	mesLayout        = "2006-01"
	ultimosRegistros = 5
)

type DashboardService interface {
	// Resumen aggregates the month given as YYYY-MM; empty means the current month.
	Resumen(ctx context.Context, mes string) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	productos repository.ProductoRepository
	compras   repository.CompraRepository
	ventas    repository.VentaRepository
	grupo     singleflight.Group
	now       func() time.Time
}

func NewDashboardService(
	productos repository.ProductoRepository,
	compras repository.CompraRepository,
	ventas repository.VentaRepository,
) DashboardService {
	return &dashboardService{productos: productos, compras: compras, ventas: ventas, now: time.Now}
}

func (s *dashboardService) Resumen(ctx context.Context, mes string) (*dto.DashboardResponse, error) {
	mes = strings.TrimSpace(mes)
	if mes == "" {
		mes = s.now().UTC().Format(mesLayout)
	}
	inicio, err := time.Parse(mesLayout, mes)
	if err != nil {
		return nil, errValidacion("Mes invalido (usa YYYY-MM)")
	}

	// identical concurrent requests share one set of queries
	v, err, _ := s.grupo.Do(mes, func() (interface{}, error) {
		return s.calcular(context.WithoutCancel(ctx), mes, inicio)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.DashboardResponse), nil
}

func (s *dashboardService) calcular(ctx context.Context, mes string, inicio time.Time) (*dto.DashboardResponse, error) {
	fin := inicio.AddDate(0, 1, 0).Add(-time.Nanosecond)
	resp := &dto.DashboardResponse{Mes: mes}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		resp.TotalProductos, err = s.productos.Contar(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.StockBajo, err = s.productos.ContarStockBajo(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Compras, err = s.compras.Resumen(gctx, inicio, fin)
		return err
	})
	g.Go(func() (err error) {
		resp.Ventas, err = s.ventas.Resumen(gctx, inicio, fin)
		return err
	})
	g.Go(func() error {
		compras, err := s.compras.Recientes(gctx, ultimosRegistros)
		if err != nil {
			return err
		}
		resp.UltimasCompras = mapSlice(compras, compraToListItem)
		return nil
	})
	g.Go(func() error {
		ventas, err := s.ventas.Recientes(gctx, ultimosRegistros)
		if err != nil {
			return err
		}
		resp.UltimasVentas = mapSlice(ventas, ventaToListItem)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}
