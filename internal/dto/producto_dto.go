package dto

import (
	"aceves/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TallaStockRequest struct {
	Size  string `json:"size"  validate:"required,max=20"`
	Stock int    `json:"stock" validate:"min=0"`
}

type CrearProductoRequest struct {
	Name          string              `json:"name"           validate:"required,min=2,max=120"`
	Category      string              `json:"category"       validate:"required"`
	Price         decimal.Decimal     `json:"price"          validate:"required,gt=0"`
	Description   string              `json:"description"`
	Images        []string            `json:"images"         validate:"omitempty,dive,url"`
	Sizes         []TallaStockRequest `json:"sizes"          validate:"omitempty,dive"`
	Stock         *int                `json:"stock"          validate:"omitempty,min=0"`
	OriginalPrice *decimal.Decimal    `json:"original_price" validate:"omitempty,gt=0"`
	EnvioCruzado  bool                `json:"envio_cruzado"`
}

type ActualizarProductoRequest struct {
	Name          *string             `json:"name"           validate:"omitempty,min=2,max=120"`
	Category      *string             `json:"category"`
	Price         *decimal.Decimal    `json:"price"          validate:"omitempty,gt=0"`
	Description   *string             `json:"description"`
	Images        []string            `json:"images"         validate:"omitempty,dive,url"`
	Sizes         []TallaStockRequest `json:"sizes"          validate:"omitempty,dive"`
	Stock         *int                `json:"stock"          validate:"omitempty,min=0"`
	OriginalPrice *decimal.Decimal    `json:"original_price" validate:"omitempty,gt=0"`
	EnvioCruzado  *bool               `json:"envio_cruzado"`
}

type ProductoFilter struct {
	Category string `form:"category"`
	OnSale   bool   `form:"on_sale"`
}

// ItemCarrito is one purchased line sent to /update-stock after payment.
type ItemCarrito struct {
	ID           string `json:"id"           validate:"required"`
	SelectedSize string `json:"selectedSize"`
	Quantity     int    `json:"quantity"     validate:"required,min=1"`
}

type DescontarStockRequest struct {
	CartItems []ItemCarrito `json:"cartItems" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Category      string             `json:"category"`
	Price         decimal.Decimal    `json:"price"`
	Description   string             `json:"description"`
	Images        []string           `json:"images"`
	Sizes         []model.TallaStock `json:"sizes,omitempty"`
	Stock         *int               `json:"stock,omitempty"`
	OriginalPrice *decimal.Decimal   `json:"original_price,omitempty"`
	OnSale        bool               `json:"on_sale"`
	EnvioCruzado  bool               `json:"envio_cruzado"`
	CreatedAt     string             `json:"created_at"`
}

type StockDisponibleResponse struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Stock     int    `json:"stock"`
}

type ItemDescontado struct {
	ID         string `json:"id"`
	Size       string `json:"size,omitempty"`
	Quantity   int    `json:"quantity"`
	StockNuevo int    `json:"stock_nuevo"`
	Gestionado bool   `json:"gestionado"`
}

type DescontarStockResponse struct {
	Success bool             `json:"success"`
	Items   []ItemDescontado `json:"items"`
}
