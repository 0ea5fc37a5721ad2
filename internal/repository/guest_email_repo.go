package repository

import (
	"context"

	"aceves/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GuestEmailRepository interface {
	// Upsert inserts the address or bumps its order counter.
	Upsert(ctx context.Context, g *model.GuestEmail) error
}

type guestEmailRepo struct{ db *gorm.DB }

func NewGuestEmailRepository(db *gorm.DB) GuestEmailRepository { return &guestEmailRepo{db: db} }

func (r *guestEmailRepo) Upsert(ctx context.Context, g *model.GuestEmail) error {
	if g.OrdersCount == 0 {
		g.OrdersCount = 1
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":          g.Name,
			"last_order_id": g.LastOrderID,
			"orders_count":  gorm.Expr("guest_emails.orders_count + 1"),
			"updated_at":    gorm.Expr("NOW()"),
		}),
	}).Create(g).Error
}
