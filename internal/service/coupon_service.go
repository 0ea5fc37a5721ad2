package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Mensajes de validación de cupones (se muestran tal cual al cliente).
const (
	MsgCuponNoValido     = "Cupón no válido"
	MsgCuponInactivo     = "Este cupón no está activo"
	MsgCuponNoVigente    = "Este cupón aún no está vigente"
	MsgCuponExpirado     = "Este cupón ha expirado"
	MsgCuponLimiteUsos   = "Este cupón ha alcanzado su límite de usos"
	MsgCuponYaUtilizado  = "Ya has utilizado este cupón"
	msgCuponCompraMinima = "La compra mínima para este cupón es de $%s MXN"
)

var cien = decimal.NewFromInt(100)

// ValidacionCupon is the outcome of evaluating a coupon against a cart.
type ValidacionCupon struct {
	Valid    bool
	Discount decimal.Decimal
	Message  string
	Coupon   *model.Coupon
}

// EvaluarCupon applies the coupon rules in order; the first failing rule
// wins. yaUsado reports whether the current user already redeemed it.
// A nil coupon means the code did not match.
func EvaluarCupon(c *model.Coupon, cartTotal decimal.Decimal, yaUsado bool, now time.Time) ValidacionCupon {
	invalido := func(msg string) ValidacionCupon {
		return ValidacionCupon{Valid: false, Discount: decimal.Zero, Message: msg}
	}
	switch {
	case c == nil:
		return invalido(MsgCuponNoValido)
	case !c.IsActive:
		return invalido(MsgCuponInactivo)
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return invalido(MsgCuponNoVigente)
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return invalido(MsgCuponExpirado)
	case c.MaxUses != nil && c.CurrentUses >= *c.MaxUses:
		return invalido(MsgCuponLimiteUsos)
	case yaUsado:
		return invalido(MsgCuponYaUtilizado)
	case cartTotal.LessThan(c.MinPurchaseAmount):
		return invalido(fmt.Sprintf(msgCuponCompraMinima, c.MinPurchaseAmount.StringFixed(2)))
	}
	return ValidacionCupon{Valid: true, Discount: CalcularDescuento(c, cartTotal), Coupon: c}
}

// CalcularDescuento returns the discount for cartTotal, never above the total
// and rounded to cents half away from zero.
func CalcularDescuento(c *model.Coupon, cartTotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case model.DescuentoPorcentaje:
		d = cartTotal.Mul(c.DiscountValue).Div(cien)
	default:
		d = c.DiscountValue
	}
	d = decimal.Min(d, cartTotal)
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d.Round(2)
}

// CouponService validates, redeems and administers discount coupons.
type CouponService interface {
	Validar(ctx context.Context, code string, cartTotal decimal.Decimal, userID *uuid.UUID) (ValidacionCupon, error)
	// Redimir marks the coupon as used by userID for orderID. The usage
	// counter is incremented atomically and never past max_uses.
	Redimir(ctx context.Context, couponID uuid.UUID, userID *uuid.UUID, orderID uuid.UUID) error

	Crear(ctx context.Context, req dto.CrearCouponRequest) (*dto.CouponResponse, error)
	Listar(ctx context.Context) ([]dto.CouponResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCouponRequest) (*dto.CouponResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type couponService struct {
	repo repository.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repository.CouponRepository) CouponService {
	return &couponService{repo: repo, now: time.Now}
}

func (s *couponService) Validar(ctx context.Context, code string, cartTotal decimal.Decimal, userID *uuid.UUID) (ValidacionCupon, error) {
	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if esNoEncontrado(err) {
			return EvaluarCupon(nil, cartTotal, false, s.now()), nil
		}
		return ValidacionCupon{}, err
	}

	yaUsado := false
	if userID != nil {
		if yaUsado, err = s.repo.UsadoPorUsuario(ctx, *userID, c.ID); err != nil {
			return ValidacionCupon{}, err
		}
	}
	return EvaluarCupon(c, cartTotal, yaUsado, s.now()), nil
}

func (s *couponService) Redimir(ctx context.Context, couponID uuid.UUID, userID *uuid.UUID, orderID uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.IncrementarUsosTx(tx, couponID); err != nil {
			if errors.Is(err, repository.ErrCuponAgotado) {
				return negocio(MsgCuponLimiteUsos)
			}
			return fmt.Errorf("incrementar usos: %w", err)
		}
		// Guest checkouts only bump the counter.
		if userID == nil {
			return nil
		}
		now := s.now()
		uc := &model.UserCoupon{
			ID:       uuid.New(),
			UserID:   *userID,
			CouponID: couponID,
			UsedAt:   &now,
			OrderID:  &orderID,
		}
		if err := s.repo.CreateUserCouponTx(tx, uc); err != nil {
			return fmt.Errorf("registrar uso de cupón: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("coupon_id", couponID.String()).Str("order_id", orderID.String()).Msg("cupón redimido")
	return nil
}

// ── Admin ────────────────────────────────────────────────────────────────────

func (s *couponService) Crear(ctx context.Context, req dto.CrearCouponRequest) (*dto.CouponResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, negocio("Ya existe un cupón con el código %s", code)
	} else if !esNoEncontrado(err) {
		return nil, err
	}
	if req.DiscountType == model.DescuentoPorcentaje && req.DiscountValue.GreaterThan(cien) {
		return nil, negocio("El porcentaje de descuento no puede ser mayor a 100")
	}

	c := &model.Coupon{
		ID:            uuid.New(),
		Code:          code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		IsActive:      true,
	}
	if req.MinPurchaseAmount != nil {
		c.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	var err error
	if c.ValidFrom, err = parseFecha(req.ValidFrom); err != nil {
		return nil, err
	}
	if c.ValidUntil, err = parseFecha(req.ValidUntil); err != nil {
		return nil, err
	}
	if err := ventanaValida(c); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("crear cupón: %w", err)
	}
	resp := couponToResponse(c)
	return &resp, nil
}

func (s *couponService) Listar(ctx context.Context) ([]dto.CouponResponse, error) {
	cupones, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CouponResponse, 0, len(cupones))
	for i := range cupones {
		out = append(out, couponToResponse(&cupones[i]))
	}
	return out, nil
}

func (s *couponService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCouponRequest) (*dto.CouponResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Cupón")
		}
		return nil, err
	}

	if req.Description != nil {
		c.Description = req.Description
	}
	if req.DiscountValue != nil {
		if c.DiscountType == model.DescuentoPorcentaje && req.DiscountValue.GreaterThan(cien) {
			return nil, negocio("El porcentaje de descuento no puede ser mayor a 100")
		}
		c.DiscountValue = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		c.MinPurchaseAmount = *req.MinPurchaseAmount
	}
	if req.MaxUses != nil {
		if *req.MaxUses < c.CurrentUses {
			return nil, negocio("max_uses no puede ser menor a los usos actuales (%d)", c.CurrentUses)
		}
		c.MaxUses = req.MaxUses
	}
	if req.ValidFrom != nil {
		if c.ValidFrom, err = parseFecha(req.ValidFrom); err != nil {
			return nil, err
		}
	}
	if req.ValidUntil != nil {
		if c.ValidUntil, err = parseFecha(req.ValidUntil); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := ventanaValida(c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("actualizar cupón: %w", err)
	}
	resp := couponToResponse(c)
	return &resp, nil
}

func (s *couponService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if esNoEncontrado(err) {
			return noEncontrado("Cupón")
		}
		return err
	}
	return nil
}

func parseFecha(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, fmt.Errorf("fecha %q inválida: %w", *v, ErrValidacion)
	}
	return &t, nil
}

func ventanaValida(c *model.Coupon) error {
	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		return negocio("valid_until no puede ser anterior a valid_from")
	}
	return nil
}

func couponToResponse(c *model.Coupon) dto.CouponResponse {
	return dto.CouponResponse{
		ID:                c.ID.String(),
		Code:              c.Code,
		Description:       c.Description,
		DiscountType:      c.DiscountType,
		DiscountValue:     c.DiscountValue,
		MinPurchaseAmount: c.MinPurchaseAmount,
		MaxUses:           c.MaxUses,
		CurrentUses:       c.CurrentUses,
		ValidFrom:         formatTimePtr(c.ValidFrom),
		ValidUntil:        formatTimePtr(c.ValidUntil),
		IsActive:          c.IsActive,
	}
}

// ValidacionToResponse shapes a validation result for the storefront.
func ValidacionToResponse(v ValidacionCupon) dto.ValidarCuponResponse {
	resp := dto.ValidarCuponResponse{Valid: v.Valid, Discount: v.Discount, Message: v.Message}
	if v.Coupon != nil {
		c := couponToResponse(v.Coupon)
		resp.Coupon = &c
	}
	return resp
}
