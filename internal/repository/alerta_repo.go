package repository

import (
	"context"
	"time"

	"aceves/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertaRepository interface {
	CreateTx(tx *gorm.DB, a *model.AlertaStock) error
	List(ctx context.Context, soloNoLeidas bool) ([]model.AlertaStock, error)
	// ExisteDesde reports whether an alert of the given type (read, unread or
	// deleted) was raised for the variation at or after desde.
	ExisteDesde(ctx context.Context, variacionID uuid.UUID, tipo string, desde time.Time) (bool, error)
	MarcarLeida(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type alertaRepo struct{ db *gorm.DB }

func NewAlertaRepository(db *gorm.DB) AlertaRepository { return &alertaRepo{db: db} }

func (r *alertaRepo) CreateTx(tx *gorm.DB, a *model.AlertaStock) error {
	return tx.Omit("Producto").Create(a).Error
}

func (r *alertaRepo) List(ctx context.Context, soloNoLeidas bool) ([]model.AlertaStock, error) {
	q := r.db.WithContext(ctx).Preload("Producto")
	if soloNoLeidas {
		q = q.Where("leida = false")
	}
	var alertas []model.AlertaStock
	err := q.Order("created_at DESC").Find(&alertas).Error
	return alertas, err
}

func (r *alertaRepo) ExisteDesde(ctx context.Context, variacionID uuid.UUID, tipo string, desde time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.AlertaStock{}).
		Where("variacion_id = ? AND tipo_alerta = ? AND created_at >= ?", variacionID, tipo, desde).
		Count(&n).Error
	return n > 0, err
}

func (r *alertaRepo) MarcarLeida(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.AlertaStock{}).Where("id = ?", id).Update("leida", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *alertaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.AlertaStock{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
