package repository

import (
	"context"
	"errors"

	"aceves/internal/dto"
	"aceves/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTallaNoEncontrada is returned when a size-managed product has no entry
// for the requested size.
var ErrTallaNoEncontrada = errors.New("talla no encontrada")

// ProductoRepository defines the data access contract for storefront catalog
// products (table products). Services depend on this interface, not on the
// concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id string) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id string) error

	// DescontarStockPlano decrements the flat stock column clamped at zero and
	// returns the new value.
	DescontarStockPlano(ctx context.Context, id string, cantidad int) (int, error)
	// DescontarStockTalla locks the row, decrements one size of the sizes JSON
	// array clamped at zero and returns the new value for that size.
	DescontarStockTalla(ctx context.Context, id, talla string, cantidad int) (int, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, error) {
	var productos []model.Producto
	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.OnSale {
		q = q.Where("original_price IS NOT NULL AND original_price > price")
	}
	err := q.Order("created_at DESC").Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Producto{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) DescontarStockPlano(ctx context.Context, id string, cantidad int) (int, error) {
	var nuevos []int
	err := r.db.WithContext(ctx).Raw(
		`UPDATE products SET stock = GREATEST(stock - ?, 0) WHERE id = ? AND stock IS NOT NULL RETURNING stock`,
		cantidad, id,
	).Scan(&nuevos).Error
	if err != nil {
		return 0, err
	}
	if len(nuevos) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return nuevos[0], nil
}

func (r *productoRepo) DescontarStockTalla(ctx context.Context, id, talla string, cantidad int) (int, error) {
	nuevo := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Producto
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if !p.TieneTallas() {
			return ErrTallaNoEncontrada
		}
		sizes := *p.Sizes
		encontrada := false
		for i := range sizes {
			if sizes[i].Size != talla {
				continue
			}
			sizes[i].Stock -= cantidad
			if sizes[i].Stock < 0 {
				sizes[i].Stock = 0
			}
			nuevo = sizes[i].Stock
			encontrada = true
			break
		}
		if !encontrada {
			return ErrTallaNoEncontrada
		}
		return tx.Model(&model.Producto{}).Where("id = ?", id).Update("sizes", sizes).Error
	})
	return nuevo, err
}
