package dto

import "github.com/shopspring/decimal"

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name"       validate:"required"`
	Price     decimal.Decimal `json:"price"      validate:"required,gt=0"`
	Quantity  int             `json:"quantity"   validate:"required,min=1"`
	Size      string          `json:"size"`
	Image     string          `json:"image"      validate:"omitempty,url"`
}

type ShippingAddressRequest struct {
	Street     string `json:"street"      validate:"required"`
	City       string `json:"city"        validate:"required"`
	State      string `json:"state"       validate:"required"`
	PostalCode string `json:"postal_code" validate:"required,numeric,len=5"`
	Country    string `json:"country"     validate:"required"`
	References string `json:"references"`
}

// CrearOrderRequest is posted by the checkout after PayPal captured the payment.
type CrearOrderRequest struct {
	UserID          *string                `json:"user_id"          validate:"omitempty,uuid"`
	IsGuest         bool                   `json:"is_guest"`
	CustomerEmail   string                 `json:"customer_email"   validate:"required,email"`
	CustomerName    string                 `json:"customer_name"    validate:"required,min=2"`
	CustomerPhone   *string                `json:"customer_phone"   validate:"omitempty,min=10,max=15"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	Items           []OrderItemRequest     `json:"items"            validate:"required,min=1,dive"`
	OriginalTotal   decimal.Decimal        `json:"original_total"   validate:"required,gt=0"`
	CouponDiscount  decimal.Decimal        `json:"coupon_discount"  validate:"min=0"`
	UserDiscount    decimal.Decimal        `json:"user_discount"    validate:"min=0"`
	TotalAmount     decimal.Decimal        `json:"total_amount"     validate:"required,gt=0"`
	CouponID        *string                `json:"coupon_id"        validate:"omitempty,uuid"`
	CouponCode      *string                `json:"coupon_code"`
	PaypalOrderID   string                 `json:"paypal_order_id"  validate:"required"`
}

type ActualizarEstadoRequest struct {
	Status         string  `json:"status"         validate:"required,oneof=paid shipped delivered"`
	TrackingNumber *string `json:"trackingNumber" validate:"omitempty,max=100"`
}

type OrderFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=paid shipped delivered"`
	Limit  int    `form:"limit"  validate:"omitempty,min=1,max=200"`
}

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Image     string          `json:"image,omitempty"`
}

type OrderResponse struct {
	ID              string                 `json:"id"`
	UserID          *string                `json:"user_id"`
	IsGuest         bool                   `json:"is_guest"`
	CustomerEmail   string                 `json:"customer_email"`
	CustomerName    string                 `json:"customer_name"`
	CustomerPhone   *string                `json:"customer_phone"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
	Items           []OrderItemResponse    `json:"items"`
	OriginalTotal   decimal.Decimal        `json:"original_total"`
	CouponDiscount  decimal.Decimal        `json:"coupon_discount"`
	UserDiscount    decimal.Decimal        `json:"user_discount"`
	TotalAmount     decimal.Decimal        `json:"total_amount"`
	CouponCode      *string                `json:"coupon_code"`
	PaypalOrderID   string                 `json:"paypal_order_id"`
	PaymentStatus   string                 `json:"payment_status"`
	ShippingStatus  string                 `json:"shipping_status"`
	TrackingNumber  *string                `json:"tracking_number"`
	ShippedAt       *string                `json:"shipped_at"`
	DeliveredAt     *string                `json:"delivered_at"`
	CreatedAt       string                 `json:"created_at"`
}
