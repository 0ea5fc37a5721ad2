package dto

import "github.com/shopspring/decimal"

type ValidarCuponRequest struct {
	Code      string          `json:"code"      validate:"required,max=50"`
	CartTotal decimal.Decimal `json:"cartTotal" validate:"required,gt=0"`
}

// ValidarCuponResponse mirrors the storefront contract:
// {valid, discount, message?, coupon?}.
type ValidarCuponResponse struct {
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message,omitempty"`
	Coupon   *CouponResponse `json:"coupon,omitempty"`
}

type CrearCouponRequest struct {
	Code              string           `json:"code"                validate:"required,min=3,max=50,alphanum"`
	Description       *string          `json:"description"`
	DiscountType      string           `json:"discount_type"       validate:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal  `json:"discount_value"      validate:"required,gt=0"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount" validate:"omitempty,min=0"`
	MaxUses           *int             `json:"max_uses"            validate:"omitempty,min=1"`
	ValidFrom         *string          `json:"valid_from"          validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ValidUntil        *string          `json:"valid_until"         validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsActive          *bool            `json:"is_active"`
}

type ActualizarCouponRequest struct {
	Description       *string          `json:"description"`
	DiscountValue     *decimal.Decimal `json:"discount_value"      validate:"omitempty,gt=0"`
	MinPurchaseAmount *decimal.Decimal `json:"min_purchase_amount" validate:"omitempty,min=0"`
	MaxUses           *int             `json:"max_uses"            validate:"omitempty,min=1"`
	ValidFrom         *string          `json:"valid_from"          validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ValidUntil        *string          `json:"valid_until"         validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	IsActive          *bool            `json:"is_active"`
}

type CouponResponse struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	Description       *string         `json:"description,omitempty"`
	DiscountType      string          `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount"`
	MaxUses           *int            `json:"max_uses"`
	CurrentUses       int             `json:"current_uses"`
	ValidFrom         *string         `json:"valid_from"`
	ValidUntil        *string         `json:"valid_until"`
	IsActive          bool            `json:"is_active"`
}

type UserCouponResponse struct {
	CouponID string  `json:"coupon_id"`
	Code     string  `json:"code"`
	UsedAt   *string `json:"used_at"`
	OrderID  *string `json:"order_id"`
}
