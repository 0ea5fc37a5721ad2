package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"
	"aceves/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Dispatcher enqueues fire-and-forget jobs; *worker.Dispatcher implements it.
type Dispatcher interface {
	EnqueueEmail(ctx context.Context, p worker.EmailJobPayload) error
	EnqueuePixel(ctx context.Context, p worker.PixelJobPayload) error
	EnqueueMarketing(ctx context.Context, p worker.MarketingJobPayload) error
}

// OrderService persists captured orders and moves them through shipping.
type OrderService interface {
	// Crear inserts the order. Coupon redemption and the async side effects
	// run afterwards and never fail the call.
	Crear(ctx context.Context, req dto.CrearOrderRequest) (*dto.OrderResponse, error)
	ActualizarEstado(ctx context.Context, id uuid.UUID, req dto.ActualizarEstadoRequest) (*dto.OrderResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	Listar(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, error)
	ListarDeUsuario(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error)
}

type orderService struct {
	repo       repository.OrderRepository
	cupones    CouponService
	dispatcher Dispatcher
	now        func() time.Time
}

func NewOrderService(repo repository.OrderRepository, cupones CouponService, dispatcher Dispatcher) OrderService {
	return &orderService{repo: repo, cupones: cupones, dispatcher: dispatcher, now: time.Now}
}

func (s *orderService) Crear(ctx context.Context, req dto.CrearOrderRequest) (*dto.OrderResponse, error) {
	o, err := s.construirOrden(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}
	log.Info().
		Str("order_id", o.ID.String()).
		Str("paypal_order_id", o.PaypalOrderID).
		Str("total", o.TotalAmount.StringFixed(2)).
		Bool("guest", o.IsGuest).
		Msg("pedido creado")

	// From here on the order exists; nothing below may fail the request.
	if o.CouponID != nil {
		if err := s.cupones.Redimir(ctx, *o.CouponID, o.UserID, o.ID); err != nil {
			log.Error().Err(err).
				Str("order_id", o.ID.String()).
				Str("coupon_id", o.CouponID.String()).
				Msg("pedido: no se pudo redimir el cupón, requiere conciliación")
		}
	}
	s.encolar(ctx, o, "confirmation email", func() error {
		return s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{Tipo: worker.EmailConfirmacion, OrderID: o.ID.String()})
	})
	if o.IsGuest {
		s.encolar(ctx, o, "guest email", func() error {
			return s.dispatcher.EnqueueMarketing(ctx, worker.MarketingJobPayload{
				Email: o.CustomerEmail, Name: o.CustomerName, OrderID: o.ID.String(),
			})
		})
	}
	s.encolar(ctx, o, "purchase pixel", func() error {
		return s.dispatcher.EnqueuePixel(ctx, pixelCompra(o))
	})

	resp := orderToResponse(o)
	return &resp, nil
}

func (s *orderService) construirOrden(req dto.CrearOrderRequest) (*model.Order, error) {
	o := &model.Order{
		ID:             uuid.New(),
		IsGuest:        req.IsGuest,
		CustomerEmail:  strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerPhone:  req.CustomerPhone,
		OriginalTotal:  req.OriginalTotal,
		CouponDiscount: req.CouponDiscount,
		UserDiscount:   req.UserDiscount,
		TotalAmount:    req.TotalAmount,
		CouponCode:     req.CouponCode,
		PaypalOrderID:  req.PaypalOrderID,
		PaymentStatus:  "completed",
		ShippingStatus: model.EnvioPagado,
		CreatedAt:      s.now(),
	}
	if req.UserID != nil && !req.IsGuest {
		uid, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, fmt.Errorf("user_id: %w", ErrValidacion)
		}
		o.UserID = &uid
	}
	if req.CouponID != nil {
		cid, err := uuid.Parse(*req.CouponID)
		if err != nil {
			return nil, fmt.Errorf("coupon_id: %w", ErrValidacion)
		}
		o.CouponID = &cid
	}

	// Payment was already captured, so a mismatch is logged, never rejected.
	esperado := req.OriginalTotal.Sub(req.CouponDiscount).Sub(req.UserDiscount)
	if !esperado.Round(2).Equal(req.TotalAmount.Round(2)) {
		log.Warn().
			Str("paypal_order_id", req.PaypalOrderID).
			Str("esperado", esperado.StringFixed(2)).
			Str("recibido", req.TotalAmount.StringFixed(2)).
			Msg("pedido: total no coincide con los descuentos")
	}

	a := req.ShippingAddress
	o.ShippingAddress = datatypes.NewJSONType(model.ShippingAddress{
		Street: a.Street, City: a.City, State: a.State,
		PostalCode: a.PostalCode, Country: a.Country, References: a.References,
	})
	items := make(datatypes.JSONSlice[model.OrderItem], 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.OrderItem{
			ProductID: it.ProductID, Name: it.Name, Price: it.Price,
			Quantity: it.Quantity, Size: it.Size, Image: it.Image,
		})
	}
	o.Items = items
	return o, nil
}

func (s *orderService) encolar(ctx context.Context, o *model.Order, que string, fn func() error) {
	if s.dispatcher == nil {
		return
	}
	if err := fn(); err != nil {
		log.Error().Err(err).Str("order_id", o.ID.String()).Str("job", que).Msg("pedido: no se pudo encolar")
	}
}

func pixelCompra(o *model.Order) worker.PixelJobPayload {
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	p := worker.PixelJobPayload{
		EventName:  "Purchase",
		EventID:    o.ID.String(),
		EventTime:  o.CreatedAt.Unix(),
		Email:      o.CustomerEmail,
		Value:      o.TotalAmount.InexactFloat64(),
		Currency:   "MXN",
		ContentIDs: ids,
	}
	if o.CustomerPhone != nil {
		p.Phone = *o.CustomerPhone
	}
	return p
}

// ActualizarEstado overwrites the shipping status without checking the
// order of transitions. shipped_at is stamped only on shipped and
// delivered_at only on delivered.
func (s *orderService) ActualizarEstado(ctx context.Context, id uuid.UUID, req dto.ActualizarEstadoRequest) (*dto.OrderResponse, error) {
	switch req.Status {
	case model.EnvioPagado, model.EnvioEnviado, model.EnvioEntregado:
	default:
		return nil, fmt.Errorf("status %q: %w", req.Status, ErrValidacion)
	}

	var tracking *string
	if req.TrackingNumber != nil && strings.TrimSpace(*req.TrackingNumber) != "" {
		t := strings.TrimSpace(*req.TrackingNumber)
		tracking = &t
	}

	if err := s.repo.UpdateEstado(ctx, id, req.Status, tracking, s.now()); err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Pedido")
		}
		return nil, err
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status == model.EnvioEnviado {
		s.encolar(ctx, o, "shipping email", func() error {
			return s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{Tipo: worker.EmailEnvio, OrderID: o.ID.String()})
		})
	}
	log.Info().Str("order_id", id.String()).Str("status", req.Status).Msg("pedido: estado actualizado")

	resp := orderToResponse(o)
	return &resp, nil
}

func (s *orderService) Obtener(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Pedido")
		}
		return nil, err
	}
	resp := orderToResponse(o)
	return &resp, nil
}

func (s *orderService) Listar(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderResponse, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ordersToResponse(orders), nil
}

func (s *orderService) ListarDeUsuario(ctx context.Context, userID uuid.UUID) ([]dto.OrderResponse, error) {
	orders, err := s.repo.ListByUser(ctx, userID, 50)
	if err != nil {
		return nil, err
	}
	return ordersToResponse(orders), nil
}

func ordersToResponse(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orderToResponse(&orders[i]))
	}
	return out
}

func orderToResponse(o *model.Order) dto.OrderResponse {
	a := o.ShippingAddress.Data()
	resp := dto.OrderResponse{
		ID:            o.ID.String(),
		IsGuest:       o.IsGuest,
		CustomerEmail: o.CustomerEmail,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		ShippingAddress: dto.ShippingAddressRequest{
			Street: a.Street, City: a.City, State: a.State,
			PostalCode: a.PostalCode, Country: a.Country, References: a.References,
		},
		Items:          make([]dto.OrderItemResponse, 0, len(o.Items)),
		OriginalTotal:  o.OriginalTotal,
		CouponDiscount: o.CouponDiscount,
		UserDiscount:   o.UserDiscount,
		TotalAmount:    o.TotalAmount,
		CouponCode:     o.CouponCode,
		PaypalOrderID:  o.PaypalOrderID,
		PaymentStatus:  o.PaymentStatus,
		ShippingStatus: o.ShippingStatus,
		TrackingNumber: o.TrackingNumber,
		ShippedAt:      formatTimePtr(o.ShippedAt),
		DeliveredAt:    formatTimePtr(o.DeliveredAt),
		CreatedAt:      formatTime(o.CreatedAt),
	}
	if o.UserID != nil {
		uid := o.UserID.String()
		resp.UserID = &uid
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID: it.ProductID, Name: it.Name, Price: it.Price,
			Quantity: it.Quantity, Size: it.Size, Image: it.Image,
		})
	}
	return resp
}
