package handler

import (
	"net/http"

	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	svc     service.VentaService
	negocio string
}

func NewVentasHandler(svc service.VentaService, negocio string) *VentasHandler {
	return &VentasHandler{svc: svc, negocio: negocio}
}

func (h *VentasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), listado(c, dto.VentaListado))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) Obtener(c *gin.Context) {
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
// @Summary Registrar venta
// @Description Verifica el stock de todo el lote antes de descontar; si falta stock no se escribe nada.
// @Tags ventas
// @Accept json
// @Produce json
// @Param body body dto.CrearVentaRequest true "Venta"
// @Success 201 {object} dto.VentaCreadaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
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

func (h *VentasHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ActualizarVentaRequest
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

func (h *VentasHandler) Eliminar(c *gin.Context) {
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

func (h *VentasHandler) PDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	venta, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	enviarPDF(c, "venta-"+venta.ID+".pdf", ventaDocumento(h.negocio, venta))
}
