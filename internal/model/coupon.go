package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DescuentoPorcentaje = "percentage"
	DescuentoFijo       = "fixed"
)

// Coupon is a discount code. Code is stored upper-case so lookups are
// case-insensitive; CurrentUses only ever grows.
type Coupon struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code              string          `gorm:"uniqueIndex;not null"`
	Description       *string
	DiscountType      string          `gorm:"type:varchar(20);not null"` // percentage | fixed
	DiscountValue     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MinPurchaseAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	MaxUses           *int
	CurrentUses       int `gorm:"not null;default:0"`
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          bool `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Coupon) TableName() string { return "coupons" }

// UserCoupon marks a redemption; (user_id, coupon_id) is unique so a user can
// use each coupon once.
type UserCoupon struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon"`
	CouponID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupon"`
	UsedAt   *time.Time
	OrderID  *uuid.UUID `gorm:"type:uuid"`

	Coupon *Coupon `gorm:"foreignKey:CouponID"`
}

func (UserCoupon) TableName() string { return "user_coupons" }
