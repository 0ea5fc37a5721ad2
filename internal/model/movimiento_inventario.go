package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
)

// MovimientoInventario is an immutable ledger row: one per stock-affecting
// action (manual adjustment or sale). Cantidad is always unsigned; the sign
// comes from TipoMovimiento.
type MovimientoInventario struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	VariacionID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Talla           string     `gorm:"not null"`
	TipoMovimiento  string     `gorm:"type:varchar(10);not null"` // entrada | salida | ajuste
	Cantidad        int        `gorm:"not null"`
	StockAnterior   int        `gorm:"not null"`
	StockNuevo      int        `gorm:"not null"`
	Motivo          string
	ReferenciaVenta *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }

// Delta is the signed stock change this movement represents.
func (m MovimientoInventario) Delta() int {
	switch m.TipoMovimiento {
	case MovimientoEntrada:
		return m.Cantidad
	case MovimientoSalida:
		return -m.Cantidad
	default:
		return 0
	}
}

// TipoPorDiferencia derives tipo_movimiento from the sign of new-old.
func TipoPorDiferencia(anterior, nuevo int) (tipo string, cantidad int) {
	switch {
	case nuevo > anterior:
		return MovimientoEntrada, nuevo - anterior
	case nuevo < anterior:
		return MovimientoSalida, anterior - nuevo
	default:
		return MovimientoAjuste, 0
	}
}
