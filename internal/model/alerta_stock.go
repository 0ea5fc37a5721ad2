package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AlertaStockBajo = "stock_bajo"
	AlertaAgotado   = "agotado"
)

// AlertaStock is raised when a variation crosses its product's stock_minimo
// (stock_bajo) or reaches zero (agotado). Only Leida is ever mutated.
// Deleting is soft: the row stays so the sweeper does not raise it again.
type AlertaStock struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VariacionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Talla       string    `gorm:"not null"`
	TipoAlerta  string    `gorm:"type:varchar(20);not null"`
	Mensaje     string    `gorm:"not null"`
	Leida       bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Producto *ProductoInventario `gorm:"foreignKey:ProductoID"`
}

func (AlertaStock) TableName() string { return "alertas_stock" }
