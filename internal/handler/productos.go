package handler

import (
	"net/http"

	"aceves/internal/dto"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductosHandler serves the storefront catalog and its stock endpoints.
type ProductosHandler struct {
	catalogo service.CatalogoService
	stock    service.StockService
}

func NewProductosHandler(catalogo service.CatalogoService, stock service.StockService) *ProductosHandler {
	return &ProductosHandler{catalogo: catalogo, stock: stock}
}

func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.catalogo.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Obtener(c *gin.Context) {
	resp, err := h.catalogo.Obtener(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockDisponible godoc
// @Summary Stock disponible de un producto
// @Description Nunca falla: ante cualquier error devuelve 0. 999 significa que el producto no lleva control de stock.
// @Tags productos
// @Produce json
// @Param id path string true "ID del producto"
// @Param size query string false "Talla seleccionada"
// @Success 200 {object} dto.StockDisponibleResponse
// @Router /products/{id}/stock [get]
func (h *ProductosHandler) StockDisponible(c *gin.Context) {
	id := c.Param("id")
	size := c.Query("size")
	c.JSON(http.StatusOK, dto.StockDisponibleResponse{
		ProductID: id,
		Size:      size,
		Stock:     h.stock.StockDisponible(c.Request.Context(), id, size),
	})
}

// DescontarStock godoc
// @Summary Descuenta stock tras un pago confirmado
// @Description Aplica los artículos en orden. Si uno falla, los anteriores quedan aplicados y se reportan en details.aplicados.
// @Tags productos
// @Accept json
// @Produce json
// @Param X-Internal-Key header string true "Clave interna"
// @Param body body dto.DescontarStockRequest true "Artículos del carrito"
// @Success 200 {object} dto.DescontarStockResponse
// @Failure 400 {object} apierror.APIError
// @Router /update-stock [post]
func (h *ProductosHandler) DescontarStock(c *gin.Context) {
	var req dto.DescontarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.stock.DescontarStock(c.Request.Context(), req.CartItems)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalogo.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductosHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.catalogo.Actualizar(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Eliminar(c *gin.Context) {
	if err := h.catalogo.Eliminar(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
