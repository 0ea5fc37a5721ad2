package handler

import (
	"net/http"

	"aceves/internal/dto"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Crear godoc
// @Summary Registra un pedido pagado
// @Description Llamado por el checkout tras capturar el pago. Canjea el cupón y encola correo, pixel y marketing sin bloquear la respuesta.
// @Tags pedidos
// @Accept json
// @Produce json
// @Param X-Internal-Key header string true "Clave interna"
// @Param body body dto.CrearOrderRequest true "Pedido"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError
// @Router /orders/create [post]
func (h *OrdersHandler) Crear(c *gin.Context) {
	var req dto.CrearOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarEstado godoc
// @Summary Cambia el estado de envío de un pedido
// @Tags pedidos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID del pedido"
// @Param body body dto.ActualizarEstadoRequest true "Nuevo estado"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} apierror.APIError
// @Router /admin/orders/{id}/status [put]
func (h *OrdersHandler) ActualizarEstado(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarEstado(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Listar(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrdersHandler) Mine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListarDeUsuario(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
