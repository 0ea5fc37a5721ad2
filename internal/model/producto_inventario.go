package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de producto de inventario.
const (
	TipoAnillo = "anillo"
	TipoCollar = "collar"
	TipoOtro   = "otro"
)

// ProductoInventario is the admin-facing inventory product. Its stock lives
// in the variations; the total is always derived, never stored.
type ProductoInventario struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string          `gorm:"index;not null"`
	Tipo        string          `gorm:"type:varchar(20);not null"` // anillo | collar | otro
	Descripcion *string
	Precio      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockMinimo int             `gorm:"not null"` // default 2 applied by the service
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Variaciones []ProductoVariacion `gorm:"foreignKey:ProductoID"`
}

func (ProductoInventario) TableName() string { return "productos_inventario" }

// StockTotal is the sum of all variation stocks.
func (p *ProductoInventario) StockTotal() int {
	total := 0
	for _, v := range p.Variaciones {
		total += v.Stock
	}
	return total
}

// Variacion returns the variation for a size label, or nil.
func (p *ProductoInventario) Variacion(talla string) *ProductoVariacion {
	for i := range p.Variaciones {
		if p.Variaciones[i].Talla == talla {
			return &p.Variaciones[i]
		}
	}
	return nil
}

// ProductoVariacion is one stock-keeping unit of an inventory product.
type ProductoVariacion struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_producto_talla"`
	Talla               string           `gorm:"not null;uniqueIndex:idx_producto_talla"`
	Stock               int              `gorm:"not null;default:0"`
	PrecioPersonalizado *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (ProductoVariacion) TableName() string { return "producto_variaciones" }

// PrecioEfectivo returns the per-variation override or the product base price.
func (v *ProductoVariacion) PrecioEfectivo(base decimal.Decimal) decimal.Decimal {
	if v.PrecioPersonalizado != nil {
		return *v.PrecioPersonalizado
	}
	return base
}
