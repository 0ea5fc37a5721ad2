package dto

import "github.com/shopspring/decimal"

type VentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	Talla          string          `json:"talla"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Total          decimal.Decimal `json:"total"`
	Canal          string          `json:"canal"`
	Notas          *string         `json:"notas"`
	StockRestante  *int            `json:"stock_restante,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type VentaListResponse struct {
	Data        []VentaResponse `json:"data"`
	Total       int             `json:"total"`
	MontoTotal  decimal.Decimal `json:"monto_total"`
	PiezasTotal int             `json:"piezas_total"`
}
