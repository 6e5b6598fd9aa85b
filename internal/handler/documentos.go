package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/infra"

	"github.com/gin-gonic/gin"
)

// enviarPDF renders into memory first so a rendering failure can still be
// answered with a JSON error instead of a truncated document.
func enviarPDF(c *gin.Context, filename string, doc infra.Documento) {
	var buf bytes.Buffer
	if err := infra.RenderDocumentoPDF(&buf, doc); err != nil {
		responderError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func compraDocumento(negocio string, c *dto.CompraResponse) infra.Documento {
	doc := infra.Documento{
		Negocio:    negocio,
		Titulo:     "Compra",
		Referencia: unir("-", c.Serie, c.Numero),
		Fecha:      c.Fecha,
		Moneda:     valor(c.Moneda),
		Total:      c.Total,
		Notas:      valor(c.Notas),
	}
	if doc.Referencia == "" {
		doc.Referencia = c.ID
	}
	if c.Proveedor != nil {
		doc.Contraparte = c.Proveedor.Nombre
		if c.Proveedor.RUC != nil {
			doc.Detalle = append(doc.Detalle, "RUC: "+*c.Proveedor.RUC)
		}
	}
	if c.TipoDocumento != nil {
		doc.Detalle = append(doc.Detalle, "Documento: "+*c.TipoDocumento)
	}
	if c.MetodoPago != nil {
		doc.Detalle = append(doc.Detalle, "Pago: "+*c.MetodoPago)
	}
	for _, it := range c.Items {
		doc.Lineas = append(doc.Lineas, infra.LineaDocumento{
			SKU:        it.SKU,
			Producto:   it.NombreProducto,
			Cantidad:   it.Cantidad,
			PrecioUnit: it.CostoUnit,
			Subtotal:   it.Subtotal,
		})
	}
	return doc
}

func ventaDocumento(negocio string, v *dto.VentaResponse) infra.Documento {
	doc := infra.Documento{
		Negocio:     negocio,
		Titulo:      "Venta",
		Referencia:  v.ID,
		Fecha:       v.FechaCreacion,
		Contraparte: v.NombreCliente,
		Total:       v.Total,
		Notas:       valor(v.Notas),
	}
	if v.DNI != nil {
		doc.Detalle = append(doc.Detalle, "DNI: "+*v.DNI)
	}
	if v.MetodoPago != nil {
		doc.Detalle = append(doc.Detalle, "Pago: "+*v.MetodoPago)
	}
	for _, it := range v.Items {
		doc.Lineas = append(doc.Lineas, infra.LineaDocumento{
			SKU:        it.SKU,
			Producto:   it.NombreProducto,
			Cantidad:   it.Cantidad,
			PrecioUnit: it.PrecioUnit,
			Descuento:  it.Descuento,
			Subtotal:   it.Subtotal,
		})
	}
	return doc
}

func valor(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func unir(sep string, partes ...*string) string {
	var out []string
	for _, p := range partes {
		if v := strings.TrimSpace(valor(p)); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
