package repository

import (
	"context"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// UpdateEstado overwrites shipping_status and stamps the matching timestamp.
	UpdateEstado(ctx context.Context, id uuid.UUID, status string, tracking *string, at time.Time) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("shipping_status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 50
	}
	var orders []model.Order
	err := q.Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Order, error) {
	if limit < 1 {
		limit = 10
	}
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *orderRepo) UpdateEstado(ctx context.Context, id uuid.UUID, status string, tracking *string, at time.Time) error {
	campos := map[string]interface{}{"shipping_status": status}
	switch status {
	case model.EnvioEnviado:
		campos["shipped_at"] = at
	case model.EnvioEntregado:
		campos["delivered_at"] = at
	}
	if tracking != nil {
		campos["tracking_number"] = *tracking
	}
	res := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
