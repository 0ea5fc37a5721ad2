package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRecovery_PanicResponde500Opaco(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("pq: connection reset by peer") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Error interno del servidor"}`, w.Body.String())
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/interno", func(c *gin.Context) { _ = c.Error(errors.New("redis: i/o timeout")) })
	r.GET("/bind", func(c *gin.Context) { _ = c.Error(errors.New("EOF")).SetType(gin.ErrorTypeBind) })
	r.GET("/ya-respondido", func(c *gin.Context) {
		_ = c.Error(errors.New("late failure"))
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/interno", http.StatusInternalServerError},
		{"/bind", http.StatusBadRequest},
		{"/ya-respondido", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "redis")
		})
	}
}
