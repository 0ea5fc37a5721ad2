package service

import (
	"context"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const pedidosRecientes = 5

// CuentaService builds the customer account dashboard.
type CuentaService interface {
	Resumen(ctx context.Context, userID uuid.UUID) (*dto.ResumenCuentaResponse, error)
}

type cuentaService struct {
	orders  repository.OrderRepository
	cupones repository.CouponRepository
}

func NewCuentaService(orders repository.OrderRepository, cupones repository.CouponRepository) CuentaService {
	return &cuentaService{orders: orders, cupones: cupones}
}

// Resumen runs its three reads concurrently; they are independent.
func (s *cuentaService) Resumen(ctx context.Context, userID uuid.UUID) (*dto.ResumenCuentaResponse, error) {
	var (
		orders []model.Order
		total  int64
		usados []model.UserCoupon
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListByUser(gctx, userID, pedidosRecientes)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.orders.CountByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		usados, err = s.cupones.ListUserCoupons(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.ResumenCuentaResponse{
		UserID:        userID.String(),
		PedidosTotal:  int(total),
		Pedidos:       ordersToResponse(orders),
		CuponesUsados: make([]dto.UserCouponResponse, 0, len(usados)),
	}
	for _, uc := range usados {
		r := dto.UserCouponResponse{CouponID: uc.CouponID.String(), UsedAt: formatTimePtr(uc.UsedAt)}
		if uc.Coupon != nil {
			r.Code = uc.Coupon.Code
		}
		if uc.OrderID != nil {
			oid := uc.OrderID.String()
			r.OrderID = &oid
		}
		resp.CuponesUsados = append(resp.CuponesUsados, r)
	}
	return resp, nil
}
