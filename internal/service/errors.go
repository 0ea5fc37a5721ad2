package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEncontrado maps to 404.
	ErrNoEncontrado = errors.New("recurso no encontrado")
	// ErrValidacion maps to 400 for inputs the DTO tags cannot express.
	ErrValidacion = errors.New("datos inválidos")
)

// NegocioError is a business-rule violation with a message safe to show the
// end user (400).
type NegocioError struct {
	Mensaje string
}

func (e *NegocioError) Error() string { return e.Mensaje }

func negocio(format string, args ...interface{}) error {
	return &NegocioError{Mensaje: fmt.Sprintf(format, args...)}
}

// StockInsuficienteError is returned by RegistrarVenta before any write.
type StockInsuficienteError struct {
	Talla      string
	Disponible int
	Solicitado int
}

func (e *StockInsuficienteError) Error() string {
	return fmt.Sprintf("Stock insuficiente para la talla %s: disponible %d, solicitado %d",
		e.Talla, e.Disponible, e.Solicitado)
}

// NoEncontradoError carries a resource-specific 404 message and matches
// ErrNoEncontrado with errors.Is.
type NoEncontradoError struct {
	Recurso string
}

func (e *NoEncontradoError) Error() string { return e.Recurso + " no encontrado" }

func (e *NoEncontradoError) Is(target error) bool { return target == ErrNoEncontrado }

func noEncontrado(recurso string) error { return &NoEncontradoError{Recurso: recurso} }
