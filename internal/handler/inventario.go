package handler

import (
	"net/http"
	"strconv"

	"aceves/internal/dto"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// CrearProducto godoc
// @Summary Crea un producto de inventario con sus tallas
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearProductoInventarioRequest true "Producto y variaciones"
// @Success 201 {object} dto.ProductoInventarioResponse
// @Failure 400 {object} apierror.APIError
// @Router /inventario/productos [post]
func (h *InventarioHandler) CrearProducto(c *gin.Context) {
	var req dto.CrearProductoInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearProducto(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarProductos godoc
// @Summary Lista productos de inventario
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param incluir_inactivos query bool false "Incluir productos dados de baja"
// @Success 200 {array} dto.ProductoInventarioResponse
// @Router /inventario/productos [get]
func (h *InventarioHandler) ListarProductos(c *gin.Context) {
	incluir, _ := strconv.ParseBool(c.Query("incluir_inactivos"))
	resp, err := h.svc.ListarProductos(c.Request.Context(), incluir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ObtenerProducto(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerProducto(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ActualizarProducto(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarProducto(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) EliminarProducto(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarProducto(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto desactivado"})
}

// ActualizarStock godoc
// @Summary Ajusta el stock absoluto de una talla
// @Description Registra un movimiento entrada/salida/ajuste según el signo de la diferencia.
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ActualizarStockRequest true "Nuevo stock"
// @Success 200 {object} dto.ActualizarStockResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /inventario/stock [put]
func (h *InventarioHandler) ActualizarStock(c *gin.Context) {
	var req dto.ActualizarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarStock(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAlertas answers GET /inventario/stock. ?no_leidas=true restricts the
// list to unread alerts.
func (h *InventarioHandler) ListarAlertas(c *gin.Context) {
	soloNoLeidas, _ := strconv.ParseBool(c.Query("no_leidas"))
	resp, err := h.svc.ListarAlertas(c.Request.Context(), soloNoLeidas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) MarcarAlertaLeida(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarcarAlertaLeida(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Alerta marcada como leída"})
}

func (h *InventarioHandler) EliminarAlerta(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarAlerta(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
