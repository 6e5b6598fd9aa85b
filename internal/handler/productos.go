package handler

import (
	"net/http"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Listar godoc
// @Summary Listado paginado de productos
// @Tags productos
// @Produce json
// @Param q query string false "Busca en sku, nombre, marca, categoria, oemCode"
// @Param page query int false "Pagina (desde 1)"
// @Param pageSize query int false "Tamaño de pagina (1-50)"
// @Param sort query string false "sku | nombre | precio | stock | actualizado"
// @Param dir query string false "asc | desc"
// @Param stockBajo query string false "1 para ver solo stock bajo"
// @Success 200 {object} dto.Pagina[dto.ProductoResponse]
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	filter := dto.ProductoFilter{Listado: listado(c, dto.ProductoListado)}
	switch c.Query("stockBajo") {
	case "1", "true":
		filter.StockBajo = true
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary Registrar producto
// @Tags productos
// @Accept json
// @Produce json
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Movimientos returns the stock ledger of one product, newest first.
func (h *ProductosHandler) Movimientos(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Movimientos(c.Request.Context(), id, listado(c, dto.MovimientoListado))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
