package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Estados de envío.
const (
	EnvioPagado    = "paid"
	EnvioEnviado   = "shipped"
	EnvioEntregado = "delivered"
)

// OrderItem is a line snapshot taken at purchase time, not a live reference.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Image     string          `json:"image,omitempty"`
}

// ShippingAddress is stored as a JSON column on the order.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	References string `json:"references,omitempty"`
}

// Order is immutable after creation except for the shipping status
// progression and the tracking number.
type Order struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID          *uuid.UUID `gorm:"type:uuid;index"`
	IsGuest         bool       `gorm:"not null;default:false"`
	CustomerEmail   string     `gorm:"not null;index"`
	CustomerName    string     `gorm:"not null"`
	CustomerPhone   *string
	ShippingAddress datatypes.JSONType[ShippingAddress] `gorm:"type:jsonb"`
	Items           datatypes.JSONSlice[OrderItem]      `gorm:"type:jsonb;not null"`
	OriginalTotal   decimal.Decimal                     `gorm:"type:decimal(12,2);not null"`
	CouponDiscount  decimal.Decimal                     `gorm:"type:decimal(12,2);not null;default:0"`
	UserDiscount    decimal.Decimal                     `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount     decimal.Decimal                     `gorm:"type:decimal(12,2);not null"`
	CouponID        *uuid.UUID                          `gorm:"type:uuid"`
	CouponCode      *string
	PaypalOrderID   string `gorm:"index"`
	PaymentStatus   string `gorm:"type:varchar(20);not null;default:'completed'"`
	ShippingStatus  string `gorm:"type:varchar(20);not null;default:'paid';index"`
	TrackingNumber  *string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time `gorm:"index"`
}

func (Order) TableName() string { return "orders" }
