package infra

// pdf.go: printable compra / venta documents using go-pdf/fpdf.
// Layout: business header, document title and metadata, counterpart block,
// item table (SKU, product, quantity, unit price, subtotal), bold total.

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// LineaDocumento is one printed row.
type LineaDocumento struct {
	SKU        string
	Producto   string
	Cantidad   int
	PrecioUnit decimal.Decimal
	Descuento  decimal.Decimal
	Subtotal   decimal.Decimal
}

// Documento is the print model shared by compras and ventas.
type Documento struct {
	Negocio     string
	Titulo      string // "Compra" | "Venta"
	Referencia  string // document series/number or record id
	Fecha       time.Time
	Contraparte string // supplier or customer label
	Detalle     []string
	Moneda      string
	Lineas      []LineaDocumento
	Total       decimal.Decimal
	Notas       string
}

// RenderDocumentoPDF writes doc as an A4 PDF to w.
func RenderDocumentoPDF(w io.Writer, doc Documento) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(doc.Titulo+" "+doc.Referencia, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(doc.Negocio), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("%s %s", doc.Titulo, doc.Referencia)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Fecha: "+doc.Fecha.Format("02/01/2006"), "", 1, "L", false, 0, "")
	if doc.Contraparte != "" {
		pdf.CellFormat(contentW, 6, tr(doc.Contraparte), "", 1, "L", false, 0, "")
	}
	for _, d := range doc.Detalle {
		pdf.CellFormat(contentW, 5, tr(d), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Items ────────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"SKU", 0.16, "L"},
		{"Producto", 0.36, "L"},
		{"Cant", 0.10, "R"},
		{"P. unit", 0.13, "R"},
		{"Desc.", 0.11, "R"},
		{"Subtotal", 0.14, "R"},
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(contentW*c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range doc.Lineas {
		nombre := l.Producto
		if r := []rune(nombre); len(r) > 40 {
			nombre = string(r[:39]) + "..."
		}
		values := []string{
			l.SKU,
			nombre,
			fmt.Sprintf("%d", l.Cantidad),
			l.PrecioUnit.StringFixed(2),
			l.Descuento.StringFixed(2),
			l.Subtotal.StringFixed(2),
		}
		for i, c := range cols {
			pdf.CellFormat(contentW*c.width, 6, tr(values[i]), "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	label := "TOTAL"
	if doc.Moneda != "" {
		label += " (" + doc.Moneda + ")"
	}
	pdf.CellFormat(contentW*0.86, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(contentW*0.14, 7, doc.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if doc.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notas: "+doc.Notas), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}
