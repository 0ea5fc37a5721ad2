package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"aceves/internal/apierror"
	"aceves/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report JSON / query names instead of Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails,
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parámetros inválidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make([]apierror.FieldError, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, apierror.FieldError{Field: fieldPath(fe), Rule: fe.Tag(), Param: fe.Param()})
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// fieldPath drops the root struct name: "CrearOrderRequest.items[0].price"
// becomes "items[0].price".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors onto the HTTP error taxonomy. Anything
// unrecognized is logged and answered with an opaque 500.
func respondError(c *gin.Context, err error) {
	var (
		stock    *service.StockInsuficienteError
		negocio  *service.NegocioError
		noExiste *service.NoEncontradoError
		parcial  *service.DescuentoParcialError
	)
	switch {
	case errors.As(err, &parcial):
		status, body := statusFor(parcial.Err)
		body.Details = gin.H{"aplicados": parcial.Aplicados, "fallido": parcial.ItemID}
		if status == http.StatusInternalServerError {
			logInternal(c, err)
			body.Error = "Error interno del servidor"
		}
		c.JSON(status, body)
	case errors.As(err, &stock):
		c.JSON(http.StatusBadRequest, apierror.WithDetails(stock.Error(), gin.H{
			"code":      "INSUFFICIENT_STOCK",
			"available": stock.Disponible,
			"requested": stock.Solicitado,
			"talla":     stock.Talla,
		}))
	case errors.As(err, &noExiste):
		c.JSON(http.StatusNotFound, apierror.New(noExiste.Error()))
	case errors.As(err, &negocio):
		c.JSON(http.StatusBadRequest, apierror.New(negocio.Mensaje))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Recurso no encontrado"))
	case errors.Is(err, service.ErrValidacion):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		logInternal(c, err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

func statusFor(err error) (int, *apierror.APIError) {
	var (
		negocio  *service.NegocioError
		noExiste *service.NoEncontradoError
	)
	switch {
	case errors.As(err, &noExiste):
		return http.StatusNotFound, apierror.New(noExiste.Error())
	case errors.As(err, &negocio):
		return http.StatusBadRequest, apierror.New(negocio.Mensaje)
	default:
		return http.StatusInternalServerError, apierror.New(err.Error())
	}
}

func logInternal(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")
}
