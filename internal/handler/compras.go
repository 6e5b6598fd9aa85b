package handler

import (
	"net/http"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct {
	svc     service.CompraService
	negocio string
}

func NewComprasHandler(svc service.CompraService, negocio string) *ComprasHandler {
	return &ComprasHandler{svc: svc, negocio: negocio}
}

// Listar godoc
// @Summary Listado paginado de compras
// @Tags compras
// @Produce json
// @Param q query string false "Proveedor (nombre/ruc), tipo de documento, serie o numero"
// @Param from query string false "Desde (YYYY-MM-DD)"
// @Param to query string false "Hasta (YYYY-MM-DD, inclusive)"
// @Param page query int false "Pagina"
// @Param pageSize query int false "Tamaño de pagina (1-50)"
// @Param sort query string false "fecha | total | proveedor | numero"
// @Param dir query string false "asc | desc"
// @Success 200 {object} dto.Pagina[dto.CompraListItem]
// @Router /v1/compras [get]
func (h *ComprasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), listado(c, dto.CompraListado))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) Obtener(c *gin.Context) {
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
// @Summary Registrar compra
// @Description Suma el stock de cada producto y actualiza su precio de compra en una sola transaccion.
// @Tags compras
// @Accept json
// @Produce json
// @Param body body dto.CrearCompraRequest true "Compra"
// @Success 201 {object} dto.CompraCreadaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/compras [post]
func (h *ComprasHandler) Crear(c *gin.Context) {
	var req dto.CrearCompraRequest
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

// Actualizar godoc
// @Summary Editar compra
// @Description Los items con detalleId se conservan, el resto se crea; los ausentes se eliminan y su stock se revierte.
// @Tags compras
// @Accept json
// @Produce json
// @Param id path string true "Compra ID"
// @Param body body dto.ActualizarCompraRequest true "Compra"
// @Success 200 {object} dto.CompraResponse
// @Router /v1/compras/{id} [put]
func (h *ComprasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarCompraRequest
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

func (h *ComprasHandler) Eliminar(c *gin.Context) {
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

func (h *ComprasHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	compra, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	enviarPDF(c, "compra-"+compra.ID+".pdf", compraDocumento(h.negocio, compra))
}
