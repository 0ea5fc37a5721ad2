package service

import (
	"context"
	"errors"
	"fmt"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"

	"github.com/rs/zerolog/log"
)

// StockService reads and decrements storefront catalog stock.
type StockService interface {
	// StockDisponible never fails: lookup errors are logged and reported as 0
	// so the storefront never oversells.
	StockDisponible(ctx context.Context, productID, talla string) int
	// DescontarStock applies items in order. The first failing item aborts
	// the rest; items already applied stay applied and are returned inside
	// *DescuentoParcialError.
	DescontarStock(ctx context.Context, items []dto.ItemCarrito) (*dto.DescontarStockResponse, error)
}

// DescuentoParcialError reports which items were decremented before Err.
type DescuentoParcialError struct {
	Aplicados []dto.ItemDescontado
	ItemID    string
	Err       error
}

func (e *DescuentoParcialError) Error() string {
	return fmt.Sprintf("descuento de stock interrumpido en %s: %v", e.ItemID, e.Err)
}

func (e *DescuentoParcialError) Unwrap() error { return e.Err }

type stockService struct {
	repo repository.ProductoRepository
}

func NewStockService(repo repository.ProductoRepository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) StockDisponible(ctx context.Context, productID, talla string) int {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if esNoEncontrado(err) {
			log.Warn().Str("product_id", productID).Msg("stock: producto inexistente")
		} else {
			log.Error().Err(err).Str("product_id", productID).Msg("stock: lectura fallida, se reporta 0")
		}
		return 0
	}
	return p.StockDisponible(talla)
}

func (s *stockService) DescontarStock(ctx context.Context, items []dto.ItemCarrito) (*dto.DescontarStockResponse, error) {
	resp := &dto.DescontarStockResponse{Items: make([]dto.ItemDescontado, 0, len(items))}
	for _, item := range items {
		aplicado, err := s.descontarItem(ctx, item)
		if err != nil {
			log.Error().Err(err).
				Str("product_id", item.ID).
				Int("aplicados", len(resp.Items)).
				Msg("stock: descuento interrumpido")
			return nil, &DescuentoParcialError{Aplicados: resp.Items, ItemID: item.ID, Err: err}
		}
		resp.Items = append(resp.Items, aplicado)
	}
	resp.Success = true
	return resp, nil
}

func (s *stockService) descontarItem(ctx context.Context, item dto.ItemCarrito) (dto.ItemDescontado, error) {
	out := dto.ItemDescontado{ID: item.ID, Size: item.SelectedSize, Quantity: item.Quantity, Gestionado: true}
	if item.Quantity <= 0 {
		return out, negocio("Cantidad inválida para %s", item.ID)
	}

	p, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		if esNoEncontrado(err) {
			return out, noEncontrado("Producto " + item.ID)
		}
		return out, err
	}

	switch {
	case p.TieneTallas():
		if item.SelectedSize == "" {
			return out, negocio("El producto %s requiere seleccionar una talla", p.Name)
		}
		nuevo, err := s.repo.DescontarStockTalla(ctx, p.ID, item.SelectedSize, item.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrTallaNoEncontrada) {
				return out, negocio("La talla %s no existe para %s", item.SelectedSize, p.Name)
			}
			return out, err
		}
		out.StockNuevo = nuevo
	case p.Stock != nil:
		nuevo, err := s.repo.DescontarStockPlano(ctx, p.ID, item.Quantity)
		if err != nil {
			return out, err
		}
		out.StockNuevo = nuevo
	default:
		out.Gestionado = false
		out.StockNuevo = model.StockNoGestionado
	}
	return out, nil
}
