package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Canales de venta.
const (
	CanalAdmin     = "admin"
	CanalWeb       = "web"
	CanalInstagram = "instagram"
	CanalFisico    = "fisico"
)

// Venta records a sale against an inventory variation. PrecioUnitario is
// snapshotted at sale time and never re-read.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariacionID    uuid.UUID       `gorm:"type:uuid;not null"`
	Talla          string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Canal          string          `gorm:"type:varchar(20);not null;index"`
	Notas          *string
	CreatedAt      time.Time `gorm:"index"`

	Producto *ProductoInventario `gorm:"foreignKey:ProductoID"`
}

func (Venta) TableName() string { return "ventas_inventario" }
