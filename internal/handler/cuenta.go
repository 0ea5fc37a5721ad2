package handler

import (
	"net/http"

	"aceves/internal/service"

	"github.com/gin-gonic/gin"
)

type CuentaHandler struct{ svc service.CuentaService }

func NewCuentaHandler(svc service.CuentaService) *CuentaHandler {
	return &CuentaHandler{svc: svc}
}

func (h *CuentaHandler) Resumen(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
