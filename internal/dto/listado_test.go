package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizar_Defaults(t *testing.T) {
	l := ListadoQuery{}.Normalizar(CompraListado)

	assert.Equal(t, 1, l.Page)
	assert.Equal(t, 10, l.PageSize)
	assert.Equal(t, "fecha", l.Sort)
	assert.True(t, l.Desc)
	assert.Nil(t, l.Desde)
	assert.Nil(t, l.Hasta)
	assert.Equal(t, 0, l.Offset())
}

func TestNormalizar_Clamps(t *testing.T) {
	tests := []struct {
		name     string
		q        ListadoQuery
		page     int
		pageSize int
	}{
		{"pagina negativa", ListadoQuery{Page: "-3"}, 1, 10},
		{"pagina no numerica", ListadoQuery{Page: "dos"}, 1, 10},
		{"tamano excesivo", ListadoQuery{PageSize: "500"}, 1, 50},
		{"tamano cero", ListadoQuery{PageSize: "0"}, 1, 1},
		{"valores validos", ListadoQuery{Page: " 3 ", PageSize: "25"}, 3, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.q.Normalizar(VentaListado)
			assert.Equal(t, tt.page, l.Page)
			assert.Equal(t, tt.pageSize, l.PageSize)
		})
	}
}

func TestNormalizar_OrdenYDireccion(t *testing.T) {
	l := ListadoQuery{Sort: "PROVEEDOR", Dir: "asc"}.Normalizar(CompraListado)
	assert.Equal(t, "proveedor", l.Sort)
	assert.Equal(t, "ASC", l.Direction())

	// unknown keys fall back to the default
	l = ListadoQuery{Sort: "drop table", Dir: "sideways"}.Normalizar(CompraListado)
	assert.Equal(t, "fecha", l.Sort)
	assert.Equal(t, "DESC", l.Direction())

	l = ListadoQuery{Dir: "DESC"}.Normalizar(ProveedorListado)
	assert.True(t, l.Desc)
	assert.Equal(t, 20, ListadoQuery{PageSize: "99"}.Normalizar(ProveedorListado).PageSize)
}

func TestNormalizar_Fechas(t *testing.T) {
	l := ListadoQuery{From: "2024-03-01", To: "2024-03-31"}.Normalizar(CompraListado)
	require.NotNil(t, l.Desde)
	require.NotNil(t, l.Hasta)
	assert.True(t, l.Desde.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	// To is inclusive of the whole day
	assert.True(t, l.Hasta.After(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, l.Hasta.Before(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	l = ListadoQuery{From: "01/03/2024", To: "ayer"}.Normalizar(CompraListado)
	assert.Nil(t, l.Desde)
	assert.Nil(t, l.Hasta)

	// entities without a date filter ignore the bounds
	l = ListadoQuery{From: "2024-03-01"}.Normalizar(ProductoListado)
	assert.Nil(t, l.Desde)
}

func TestPatron_EscapaComodines(t *testing.T) {
	l := Listado{Q: `50%_A\B`}
	assert.Equal(t, `%50\%\_a\\b%`, l.Patron())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(15, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}

func TestNuevaPagina_DataNuncaNula(t *testing.T) {
	p := NuevaPagina[int](nil, 0, Listado{Page: 1, PageSize: 10})
	assert.NotNil(t, p.Data)
	assert.Empty(t, p.Data)
	assert.Equal(t, 1, p.TotalPages)
}
