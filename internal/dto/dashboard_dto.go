package dto

import "github.com/shopspring/decimal"

// ResumenPeriodo aggregates the compras or ventas of one month.
type ResumenPeriodo struct {
	Cantidad int64           `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

type DashboardResponse struct {
	Mes            string           `json:"mes"` // YYYY-MM
	TotalProductos int64            `json:"totalProductos"`
	StockBajo      int64            `json:"stockBajo"`
	Compras        ResumenPeriodo   `json:"compras"`
	Ventas         ResumenPeriodo   `json:"ventas"`
	UltimasCompras []CompraListItem `json:"ultimasCompras"`
	UltimasVentas  []VentaListItem  `json:"ultimasVentas"`
}
