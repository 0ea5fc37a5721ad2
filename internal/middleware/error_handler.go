package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"aceves/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const errInterno = "Error interno del servidor"

// ErrorHandler is the safety net for handlers that attach errors with c.Error
// instead of answering. Bind errors become 400, the rest an opaque 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		requestLog(c, log.Error()).Err(last.Err).Uint64("gin_error_type", uint64(last.Type)).Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		if last.IsType(gin.ErrorTypeBind) {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Solicitud inválida"))
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(errInterno))
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestLog(c, log.Error()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(errInterno))
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}

// Logger writes one access line per request. Health probes log at debug so
// they do not flood production logs.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		case c.Request.URL.Path == "/health":
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		ev = requestLog(c, ev).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start))
		if claims := GetClaims(c); claims != nil {
			ev = ev.Str("user", claims.Subject)
		}
		ev.Msg("request")
	}
}

func requestLog(c *gin.Context, ev *zerolog.Event) *zerolog.Event {
	return ev.
		Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
}
