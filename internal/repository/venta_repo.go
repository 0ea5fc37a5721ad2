package repository

import (
	"context"
	"time"

	"aceves/internal/model"

	"gorm.io/gorm"
)

// VentaFilter is the parsed form of dto.VentaFilter.
type VentaFilter struct {
	Desde  *time.Time // inclusive
	Hasta  *time.Time // exclusive
	Canal  string
	Limite int
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit("Producto").Create(v).Error
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Desde != nil {
		q = q.Where("created_at >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("created_at < ?", *filter.Hasta)
	}
	if filter.Canal != "" {
		q = q.Where("canal = ?", filter.Canal)
	}

	limit := filter.Limite
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var ventas []model.Venta
	err := q.Preload("Producto").Order("created_at DESC").Limit(limit).Find(&ventas).Error
	return ventas, err
}
