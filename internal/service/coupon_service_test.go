package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verano10() *model.Coupon {
	return &model.Coupon{
		ID:                uuid.New(),
		Code:              "VERANO10",
		DiscountType:      model.DescuentoPorcentaje,
		DiscountValue:     decimal.NewFromInt(10),
		MinPurchaseAmount: decimal.NewFromInt(500),
		IsActive:          true,
	}
}

func TestEvaluarCupon(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	ayer := now.Add(-24 * time.Hour)
	manana := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		cupon    func() *model.Coupon
		total    int64
		yaUsado  bool
		valid    bool
		discount string
		contains string
	}{
		{"porcentaje valido", verano10, 1000, false, true, "100", ""},
		{"bajo minimo", verano10, 400, false, false, "0", "mínima"},
		{"no existe", func() *model.Coupon { return nil }, 1000, false, false, "0", "no válido"},
		{"inactivo", func() *model.Coupon { c := verano10(); c.IsActive = false; return c }, 1000, false, false, "0", "no está activo"},
		{"expirado", func() *model.Coupon { c := verano10(); c.ValidUntil = &ayer; return c }, 1000, false, false, "0", "expirado"},
		{"aun no vigente", func() *model.Coupon { c := verano10(); c.ValidFrom = &manana; return c }, 1000, false, false, "0", "vigente"},
		{"limite de usos", func() *model.Coupon { c := verano10(); c.MaxUses = intPtr(5); c.CurrentUses = 5; return c }, 1000, false, false, "0", "límite"},
		{"ya utilizado", verano10, 1000, true, false, "0", "utilizado"},
		{"fijo se limita al total", func() *model.Coupon {
			return &model.Coupon{DiscountType: model.DescuentoFijo, DiscountValue: decimal.NewFromInt(2000), IsActive: true}
		}, 1000, false, true, "1000", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := service.EvaluarCupon(tt.cupon(), decimal.NewFromInt(tt.total), tt.yaUsado, now)
			assert.Equal(t, tt.valid, v.Valid)
			assert.True(t, v.Discount.Equal(decimal.RequireFromString(tt.discount)), "discount %s", v.Discount)
			if tt.contains != "" {
				assert.Contains(t, v.Message, tt.contains)
			}
		})
	}
}

func TestEvaluarCuponPrecedencia(t *testing.T) {
	// Expired and exhausted at once: the date rule is checked first.
	ayer := time.Now().Add(-24 * time.Hour)
	c := verano10()
	c.ValidUntil = &ayer
	c.MaxUses = intPtr(1)
	c.CurrentUses = 1

	v := service.EvaluarCupon(c, decimal.NewFromInt(100), true, time.Now())
	assert.Equal(t, service.MsgCuponExpirado, v.Message)
}

func TestMensajeCompraMinima(t *testing.T) {
	v := service.EvaluarCupon(verano10(), decimal.NewFromInt(400), false, time.Now())
	assert.Equal(t, "La compra mínima para este cupón es de $500.00 MXN", v.Message)
}

func TestCalcularDescuentoRedondeo(t *testing.T) {
	c := &model.Coupon{DiscountType: model.DescuentoPorcentaje, DiscountValue: decimal.RequireFromString("12.5")}
	d := service.CalcularDescuento(c, decimal.RequireFromString("99.90"))
	assert.Equal(t, "12.49", d.StringFixed(2)) // 12.4875 half away from zero
}

func TestValidarCuponCaseInsensitive(t *testing.T) {
	svc := service.NewCouponService(newStubCouponRepo(verano10()))
	v, err := svc.Validar(context.Background(), "verano10", decimal.NewFromInt(1000), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.True(t, v.Discount.Equal(decimal.NewFromInt(100)))

	resp := service.ValidacionToResponse(v)
	require.NotNil(t, resp.Coupon)
	assert.Equal(t, "VERANO10", resp.Coupon.Code)
}

func TestValidarCuponYaUsadoPorUsuario(t *testing.T) {
	c := verano10()
	repo := newStubCouponRepo(c)
	user := uuid.New()
	repo.userCoupons = append(repo.userCoupons, model.UserCoupon{UserID: user, CouponID: c.ID})
	svc := service.NewCouponService(repo)

	v, err := svc.Validar(context.Background(), "VERANO10", decimal.NewFromInt(1000), &user)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, service.MsgCuponYaUtilizado, v.Message)

	// An anonymous cart is not checked against anyone's history.
	v, err = svc.Validar(context.Background(), "VERANO10", decimal.NewFromInt(1000), nil)
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestRedimirCupon(t *testing.T) {
	c := verano10()
	repo := newStubCouponRepo(c)
	svc := service.NewCouponService(repo)
	user := uuid.New()
	order := uuid.New()

	require.NoError(t, svc.Redimir(context.Background(), c.ID, &user, order))
	assert.Equal(t, 1, repo.cupones[c.ID].CurrentUses)
	require.Len(t, repo.userCoupons, 1)
	assert.Equal(t, order, *repo.userCoupons[0].OrderID)
	assert.NotNil(t, repo.userCoupons[0].UsedAt)

	// Guest: counter only.
	require.NoError(t, svc.Redimir(context.Background(), c.ID, nil, uuid.New()))
	assert.Equal(t, 2, repo.cupones[c.ID].CurrentUses)
	assert.Len(t, repo.userCoupons, 1)
}

func TestRedimirCuponFalloRegistroNoConsumeUso(t *testing.T) {
	c := verano10()
	c.MaxUses = intPtr(1)
	repo := newStubCouponRepo(c)
	repo.userCouponErr = errors.New("insert user_coupons: connection reset")
	svc := service.NewCouponService(repo)
	user := uuid.New()

	err := svc.Redimir(context.Background(), c.ID, &user, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.userCouponErr)
	assert.Equal(t, 0, repo.cupones[c.ID].CurrentUses)
	assert.Empty(t, repo.userCoupons)

	// The single use is still available once the insert recovers.
	repo.userCouponErr = nil
	otro := uuid.New()
	require.NoError(t, svc.Redimir(context.Background(), c.ID, &otro, uuid.New()))
	assert.Equal(t, 1, repo.cupones[c.ID].CurrentUses)
	assert.Len(t, repo.userCoupons, 1)
}

func TestRedimirCuponConcurrenteNoExcedeMaximo(t *testing.T) {
	c := verano10()
	c.MaxUses = intPtr(3)
	repo := newStubCouponRepo(c)
	svc := service.NewCouponService(repo)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fallidos := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := uuid.New()
			if err := svc.Redimir(context.Background(), c.ID, &user, uuid.New()); err != nil {
				mu.Lock()
				fallidos++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, repo.cupones[c.ID].CurrentUses)
	assert.Equal(t, 7, fallidos)
	assert.Len(t, repo.userCoupons, 3)
}

func TestCrearCuponDuplicado(t *testing.T) {
	svc := service.NewCouponService(newStubCouponRepo(verano10()))
	_, err := svc.Crear(context.Background(), dto.CrearCouponRequest{
		Code: "verano10", DiscountType: model.DescuentoFijo, DiscountValue: decimal.NewFromInt(50),
	})
	var negocio *service.NegocioError
	assert.True(t, errors.As(err, &negocio))
}

func TestCrearCuponNormalizaYValidaVentana(t *testing.T) {
	repo := newStubCouponRepo()
	svc := service.NewCouponService(repo)

	resp, err := svc.Crear(context.Background(), dto.CrearCouponRequest{
		Code: "otono25", DiscountType: model.DescuentoPorcentaje, DiscountValue: decimal.NewFromInt(25),
		ValidFrom: strPtr("2026-09-01T00:00:00Z"), ValidUntil: strPtr("2026-11-30T23:59:59Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, "OTONO25", resp.Code)
	assert.True(t, resp.IsActive)

	_, err = svc.Crear(context.Background(), dto.CrearCouponRequest{
		Code: "MAL1", DiscountType: model.DescuentoFijo, DiscountValue: decimal.NewFromInt(1),
		ValidFrom: strPtr("2026-09-01T00:00:00Z"), ValidUntil: strPtr("2026-08-01T00:00:00Z"),
	})
	assert.Error(t, err)

	_, err = svc.Crear(context.Background(), dto.CrearCouponRequest{
		Code: "MAL2", DiscountType: model.DescuentoFijo, DiscountValue: decimal.NewFromInt(1),
		ValidFrom: strPtr("1 de septiembre"),
	})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = svc.Crear(context.Background(), dto.CrearCouponRequest{
		Code: "MAL3", DiscountType: model.DescuentoPorcentaje, DiscountValue: decimal.NewFromInt(150),
	})
	assert.Error(t, err)
}

func TestActualizarCuponMaxUsesMenorAUsos(t *testing.T) {
	c := verano10()
	c.CurrentUses = 4
	svc := service.NewCouponService(newStubCouponRepo(c))

	_, err := svc.Actualizar(context.Background(), c.ID, dto.ActualizarCouponRequest{MaxUses: intPtr(2)})
	var negocio *service.NegocioError
	assert.True(t, errors.As(err, &negocio))
}
