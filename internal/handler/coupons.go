package handler

import (
	"net/http"

	"aceves/internal/apierror"
	"aceves/internal/dto"
	"aceves/internal/middleware"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponsHandler struct{ svc service.CouponService }

func NewCouponsHandler(svc service.CouponService) *CouponsHandler {
	return &CouponsHandler{svc: svc}
}

// Validar godoc
// @Summary Valida un cupón contra el total del carrito
// @Description Un cupón inválido responde 200 con valid=false y el motivo en message.
// @Tags cupones
// @Accept json
// @Produce json
// @Param body body dto.ValidarCuponRequest true "Código y total"
// @Success 200 {object} dto.ValidarCuponResponse
// @Failure 400 {object} apierror.APIError
// @Failure 429 {object} apierror.APIError
// @Router /coupons/validate [post]
func (h *CouponsHandler) Validar(c *gin.Context) {
	var req dto.ValidarCuponRequest
	if !bindAndValidate(c, &req) {
		return
	}
	v, err := h.svc.Validar(c.Request.Context(), req.Code, req.CartTotal, optionalUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.ValidacionToResponse(v))
}

func (h *CouponsHandler) Crear(c *gin.Context) {
	var req dto.CrearCouponRequest
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

func (h *CouponsHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CouponsHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCouponRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CouponsHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// optionalUserID returns the caller's id when a valid bearer token was sent.
func optionalUserID(c *gin.Context) *uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &id
}

// requireUserID is for routes behind JWTAuth; the subject must be a UUID.
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id := optionalUserID(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token sin usuario válido"))
		return uuid.Nil, false
	}
	return *id, true
}
