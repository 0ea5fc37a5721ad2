package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// StockNoGestionado is returned for catalog products that track neither
// per-size nor flat stock: they are always available.
const StockNoGestionado = 999

// TallaStock is one entry of a product's `sizes` JSON array.
type TallaStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Producto is a storefront catalog product (table `products`).
// Stock lives either in Sizes (per size) or in Stock (flat); a product with
// neither is unmanaged.
type Producto struct {
	ID            string                           `gorm:"primaryKey"`
	Name          string                           `gorm:"not null"`
	Category      string                           `gorm:"index;not null"`
	Price         decimal.Decimal                  `gorm:"type:decimal(10,2);not null"`
	Description   string
	Images        datatypes.JSONSlice[string]      `gorm:"type:jsonb"`
	Sizes         *datatypes.JSONSlice[TallaStock] `gorm:"type:jsonb"`
	Stock         *int
	OriginalPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	EnvioCruzado  bool             `gorm:"not null;default:false"`
	CreatedAt     time.Time
}

func (Producto) TableName() string { return "products" }

// EnOferta reports whether the product is on sale (original_price > price).
func (p *Producto) EnOferta() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// TieneTallas reports whether stock is tracked per size.
func (p *Producto) TieneTallas() bool { return p.Sizes != nil }

// StockDisponible resolves available units for an optional size.
func (p *Producto) StockDisponible(talla string) int {
	switch {
	case p.TieneTallas():
		if talla == "" {
			return 0
		}
		for _, s := range *p.Sizes {
			if s.Size == talla {
				if s.Stock < 0 {
					return 0
				}
				return s.Stock
			}
		}
		return 0
	case p.Stock != nil:
		if *p.Stock < 0 {
			return 0
		}
		return *p.Stock
	default:
		return StockNoGestionado
	}
}
