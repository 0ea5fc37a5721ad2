package repository

import (
	"context"

	"aceves/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoFilter defines filters for listing inventory movements.
type MovimientoFilter struct {
	ProductoID  *uuid.UUID
	VariacionID *uuid.UUID
	Limite      int
}

// MovimientoInventarioRepository is append-only: there is no Update or Delete.
type MovimientoInventarioRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error
	List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, error)
}

type movimientoInventarioRepo struct{ db *gorm.DB }

func NewMovimientoInventarioRepository(db *gorm.DB) MovimientoInventarioRepository {
	return &movimientoInventarioRepo{db: db}
}

func (r *movimientoInventarioRepo) CreateTx(tx *gorm.DB, m *model.MovimientoInventario) error {
	return tx.Create(m).Error
}

func (r *movimientoInventarioRepo) List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.VariacionID != nil {
		q = q.Where("variacion_id = ?", *filter.VariacionID)
	}

	limit := filter.Limite
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movimientos []model.MovimientoInventario
	err := q.Order("created_at DESC").Limit(limit).Find(&movimientos).Error
	return movimientos, err
}
