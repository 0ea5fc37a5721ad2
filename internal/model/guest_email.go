package model

import (
	"time"

	"github.com/google/uuid"
)

// GuestEmail keeps guest checkout addresses for marketing follow-up.
type GuestEmail struct {
	Email       string `gorm:"primaryKey"`
	Name        string
	LastOrderID *uuid.UUID `gorm:"type:uuid"`
	OrdersCount int        `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GuestEmail) TableName() string { return "guest_emails" }
