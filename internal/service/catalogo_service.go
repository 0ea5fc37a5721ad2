package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"

	"gorm.io/datatypes"
)

// CatalogoService manages storefront products (table products).
type CatalogoService interface {
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	Obtener(ctx context.Context, id string) (*dto.ProductoResponse, error)
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id string, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id string) error
}

type catalogoService struct {
	repo repository.ProductoRepository
	now  func() time.Time
}

func NewCatalogoService(repo repository.ProductoRepository) CatalogoService {
	return &catalogoService{repo: repo, now: time.Now}
}

func (s *catalogoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *catalogoService) Obtener(ctx context.Context, id string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Producto")
		}
		return nil, err
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *catalogoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if len(req.Sizes) > 0 && req.Stock != nil {
		return nil, negocio("Un producto lleva stock por talla o stock general, no ambos")
	}
	ahora := s.now()
	p := &model.Producto{
		ID:            GenerarIDProducto(req.Name, ahora),
		Name:          strings.TrimSpace(req.Name),
		Category:      req.Category,
		Price:         req.Price,
		Description:   req.Description,
		Images:        datatypes.JSONSlice[string](req.Images),
		Stock:         req.Stock,
		OriginalPrice: req.OriginalPrice,
		EnvioCruzado:  req.EnvioCruzado,
		CreatedAt:     ahora,
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	if len(req.Sizes) > 0 {
		p.Sizes = tallasDesde(req.Sizes)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *catalogoService) Actualizar(ctx context.Context, id string, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Producto")
		}
		return nil, err
	}
	if len(req.Sizes) > 0 && req.Stock != nil {
		return nil, negocio("Un producto lleva stock por talla o stock general, no ambos")
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Images != nil {
		p.Images = datatypes.JSONSlice[string](req.Images)
	}
	if req.OriginalPrice != nil {
		p.OriginalPrice = req.OriginalPrice
	}
	if req.EnvioCruzado != nil {
		p.EnvioCruzado = *req.EnvioCruzado
	}
	// Switching representation clears the other one.
	if len(req.Sizes) > 0 {
		p.Sizes = tallasDesde(req.Sizes)
		p.Stock = nil
	}
	if req.Stock != nil {
		p.Stock = req.Stock
		p.Sizes = nil
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("actualizar producto: %w", err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *catalogoService) Eliminar(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if esNoEncontrado(err) {
			return noEncontrado("Producto")
		}
		return err
	}
	return nil
}

var noSlug = regexp.MustCompile(`[^a-z0-9]+`)

// GenerarIDProducto builds the stable catalog id: slug of the name plus the
// creation time in unix milliseconds.
func GenerarIDProducto(nombre string, t time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(nombre))
	slug = strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n").Replace(slug)
	slug = strings.Trim(noSlug.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		slug = "producto"
	}
	return fmt.Sprintf("%s-%d", slug, t.UnixMilli())
}

func tallasDesde(req []dto.TallaStockRequest) *datatypes.JSONSlice[model.TallaStock] {
	tallas := make(datatypes.JSONSlice[model.TallaStock], 0, len(req))
	for _, t := range req {
		tallas = append(tallas, model.TallaStock{Size: strings.TrimSpace(t.Size), Stock: t.Stock})
	}
	return &tallas
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		Description:   p.Description,
		Images:        []string(p.Images),
		Stock:         p.Stock,
		OriginalPrice: p.OriginalPrice,
		OnSale:        p.EnOferta(),
		EnvioCruzado:  p.EnvioCruzado,
		CreatedAt:     formatTime(p.CreatedAt),
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if p.Sizes != nil {
		resp.Sizes = []model.TallaStock(*p.Sizes)
	}
	return resp
}
