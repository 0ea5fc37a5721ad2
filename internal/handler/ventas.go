package handler

import (
	"net/http"

	"aceves/internal/dto"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
)

// VentasHandler serves the sales ledger. Sales belong to the inventory
// service because every sale is also a stock movement.
type VentasHandler struct{ svc service.InventarioService }

func NewVentasHandler(svc service.InventarioService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una venta
// @Description  Valida stock, descuenta la talla, registra el movimiento de salida y la venta en una sola transacción.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /inventario/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Ventas más recientes primero, con totales de monto y piezas.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        desde  query string false "Fecha inicial YYYY-MM-DD"
// @Param        hasta  query string false "Fecha final YYYY-MM-DD"
// @Param        canal  query string false "admin | web | instagram | fisico"
// @Param        limite query int    false "Máximo de filas (default 100)"
// @Success      200  {object} dto.VentaListResponse
// @Router       /inventario/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
