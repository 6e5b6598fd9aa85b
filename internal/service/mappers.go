package service

import (
	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/model"
)

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:                 p.ID.String(),
		SKU:                p.SKU,
		Nombre:             p.Nombre,
		Categoria:          p.Categoria,
		Marca:              p.Marca,
		Presentacion:       p.Presentacion,
		Especificacion:     p.Especificacion,
		OEMCode:            p.OEMCode,
		PrecioCompra:       p.PrecioCompra,
		PrecioVenta:        p.PrecioVenta,
		Stock:              p.Stock,
		MinStock:           p.MinStock,
		StockBajo:          p.StockBajo(),
		FechaActualizacion: p.FechaActualizacion,
	}
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoStockResponse {
	return dto.MovimientoStockResponse{
		ID:            m.ID.String(),
		Tipo:          m.Tipo,
		Motivo:        m.Motivo,
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		ReferenciaID:  m.ReferenciaID.String(),
		Fecha:         m.CreatedAt,
	}
}

func proveedorToResponse(p *model.Proveedor) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:       p.ID.String(),
		Nombre:   p.Nombre,
		RUC:      p.RUC,
		Telefono: p.Telefono,
		Correo:   p.Correo,
		Ciudad:   p.Ciudad,
		Notas:    p.Notas,
	}
}

func proveedorToResumen(p *model.Proveedor) *dto.ProveedorResumen {
	if p == nil {
		return nil
	}
	return &dto.ProveedorResumen{ID: p.ID.String(), Nombre: p.Nombre, RUC: p.RUC}
}

func compraToListItem(c *model.Compra) dto.CompraListItem {
	return dto.CompraListItem{
		ID:            c.ID.String(),
		Fecha:         c.Fecha,
		TipoDocumento: c.TipoDocumento,
		Serie:         c.Serie,
		Numero:        c.Numero,
		Moneda:        c.Moneda,
		MetodoPago:    c.MetodoPago,
		Notas:         c.Notas,
		Total:         c.Total,
		Proveedor:     proveedorToResumen(c.Proveedor),
		CantidadItems: c.CantidadItems,
	}
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	items := make([]dto.ItemCompraResponse, len(c.Detalles))
	for i, d := range c.Detalles {
		items[i] = dto.ItemCompraResponse{
			ID:         d.ID.String(),
			ProductoID: d.ProductoID.String(),
			Cantidad:   d.Cantidad,
			CostoUnit:  d.CostoUnit,
			Subtotal:   d.Subtotal,
		}
		if d.Producto != nil {
			items[i].SKU = d.Producto.SKU
			items[i].NombreProducto = d.Producto.Nombre
		}
	}
	return &dto.CompraResponse{
		ID:            c.ID.String(),
		Fecha:         c.Fecha,
		Proveedor:     proveedorToResumen(c.Proveedor),
		TipoDocumento: c.TipoDocumento,
		Serie:         c.Serie,
		Numero:        c.Numero,
		Moneda:        c.Moneda,
		MetodoPago:    c.MetodoPago,
		Notas:         c.Notas,
		Total:         c.Total,
		Items:         items,
	}
}

func ventaToListItem(v *model.Venta) dto.VentaListItem {
	return dto.VentaListItem{
		ID:            v.ID.String(),
		FechaCreacion: v.FechaCreacion,
		NombreCliente: v.NombreCliente,
		DNI:           v.DNI,
		MetodoPago:    v.MetodoPago,
		Notas:         v.Notas,
		Total:         v.Total,
		CantidadItems: v.CantidadItems,
	}
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, len(v.Detalles))
	for i, d := range v.Detalles {
		items[i] = dto.ItemVentaResponse{
			ID:         d.ID.String(),
			ProductoID: d.ProductoID.String(),
			Cantidad:   d.Cantidad,
			PrecioUnit: d.PrecioUnit,
			Descuento:  d.Descuento,
			Subtotal:   d.Subtotal,
		}
		if d.Producto != nil {
			items[i].SKU = d.Producto.SKU
			items[i].NombreProducto = d.Producto.Nombre
		}
	}
	return &dto.VentaResponse{
		ID:            v.ID.String(),
		FechaCreacion: v.FechaCreacion,
		NombreCliente: v.NombreCliente,
		DNI:           v.DNI,
		MetodoPago:    v.MetodoPago,
		Notas:         v.Notas,
		Total:         v.Total,
		Items:         items,
	}
}

// mapSlice converts a slice of models into response rows.
func mapSlice[M any, R any](in []M, f func(*M) R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = f(&in[i])
	}
	return out
}
