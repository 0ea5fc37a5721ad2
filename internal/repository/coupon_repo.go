package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"aceves/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCuponAgotado is returned by IncrementarUsosTx when max_uses was reached
// between validation and redemption.
var ErrCuponAgotado = errors.New("cupón sin usos disponibles")

type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	// FindByCode matches case-insensitively.
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Update(ctx context.Context, c *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Redemption writes run in one transaction so a failed user_coupons
	// insert never leaves current_uses bumped.
	IncrementarUsosTx(tx *gorm.DB, id uuid.UUID) error
	CreateUserCouponTx(tx *gorm.DB, uc *model.UserCoupon) error
	UsadoPorUsuario(ctx context.Context, userID, couponID uuid.UUID) (bool, error)
	ListUserCoupons(ctx context.Context, userID uuid.UUID) ([]model.UserCoupon, error)

	DB() *gorm.DB
}

type couponRepo struct{ db *gorm.DB }

func NewCouponRepository(db *gorm.DB) CouponRepository { return &couponRepo{db: db} }

func (r *couponRepo) DB() *gorm.DB { return r.db }

func (r *couponRepo) Create(ctx context.Context, c *model.Coupon) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *couponRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *couponRepo) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&c).Error
	return &c, err
}

func (r *couponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	var cupones []model.Coupon
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&cupones).Error
	return cupones, err
}

func (r *couponRepo) Update(ctx context.Context, c *model.Coupon) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *couponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *couponRepo) IncrementarUsosTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Model(&model.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", id).
		Update("current_uses", gorm.Expr("current_uses + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCuponAgotado
	}
	return nil
}

func (r *couponRepo) UsadoPorUsuario(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.UserCoupon{}).
		Where("user_id = ? AND coupon_id = ? AND used_at IS NOT NULL", userID, couponID).
		Count(&n).Error
	return n > 0, err
}

func (r *couponRepo) CreateUserCouponTx(tx *gorm.DB, uc *model.UserCoupon) error {
	if uc.UsedAt == nil {
		now := time.Now()
		uc.UsedAt = &now
	}
	return tx.Omit("Coupon").Create(uc).Error
}

func (r *couponRepo) ListUserCoupons(ctx context.Context, userID uuid.UUID) ([]model.UserCoupon, error) {
	var ucs []model.UserCoupon
	err := r.db.WithContext(ctx).Preload("Coupon").
		Where("user_id = ? AND used_at IS NOT NULL", userID).
		Order("used_at DESC").Find(&ucs).Error
	return ucs, err
}
