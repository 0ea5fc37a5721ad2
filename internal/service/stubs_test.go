package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/repository"
	"aceves/internal/service"
	"aceves/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── Catalog products ─────────────────────────────────────────────────────────

// stubProductoRepo is an in-memory ProductoRepository for testing.
type stubProductoRepo struct {
	productos map[string]*model.Producto
	findErr   error
	writes    int
}

func newStubProductoRepo(ps ...*model.Producto) *stubProductoRepo {
	r := &stubProductoRepo{productos: make(map[string]*model.Producto)}
	for _, p := range ps {
		r.productos[p.ID] = p
	}
	return r
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id string) (*model.Producto, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) List(_ context.Context, f dto.ProductoFilter) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.OnSale && !p.EnOferta() {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.productos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) DescontarStockPlano(_ context.Context, id string, cantidad int) (int, error) {
	p := r.productos[id]
	nuevo := *p.Stock - cantidad
	if nuevo < 0 {
		nuevo = 0
	}
	p.Stock = &nuevo
	r.writes++
	return nuevo, nil
}

func (r *stubProductoRepo) DescontarStockTalla(_ context.Context, id, talla string, cantidad int) (int, error) {
	p := r.productos[id]
	for i, s := range *p.Sizes {
		if s.Size != talla {
			continue
		}
		nuevo := s.Stock - cantidad
		if nuevo < 0 {
			nuevo = 0
		}
		(*p.Sizes)[i].Stock = nuevo
		r.writes++
		return nuevo, nil
	}
	return 0, repository.ErrTallaNoEncontrada
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func productoConTallas(id string, tallas ...model.TallaStock) *model.Producto {
	s := datatypes.JSONSlice[model.TallaStock](tallas)
	return &model.Producto{ID: id, Name: id, Category: "anillos", Sizes: &s}
}

func productoPlano(id string, stock int) *model.Producto {
	return &model.Producto{ID: id, Name: id, Category: "collares", Stock: &stock}
}

// ── Inventory ────────────────────────────────────────────────────────────────

type stubInventarioRepo struct {
	productos map[uuid.UUID]*model.ProductoInventario
	bajo      []repository.VariacionBajoMinimo
}

func newStubInventarioRepo() *stubInventarioRepo {
	return &stubInventarioRepo{productos: make(map[uuid.UUID]*model.ProductoInventario)}
}

// seed stores a product with the given size → stock map.
func (r *stubInventarioRepo) seed(nombre string, stockMinimo int, tallas map[string]int) *model.ProductoInventario {
	p := &model.ProductoInventario{ID: uuid.New(), Nombre: nombre, Tipo: model.TipoAnillo, StockMinimo: stockMinimo, Activo: true}
	for talla, stock := range tallas {
		p.Variaciones = append(p.Variaciones, model.ProductoVariacion{ID: uuid.New(), ProductoID: p.ID, Talla: talla, Stock: stock})
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubInventarioRepo) CreateTx(_ *gorm.DB, p *model.ProductoInventario) error {
	cp := *p
	cp.Variaciones = nil
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubInventarioRepo) CreateVariacionTx(_ *gorm.DB, v *model.ProductoVariacion) error {
	p := r.productos[v.ProductoID]
	p.Variaciones = append(p.Variaciones, *v)
	return nil
}

func (r *stubInventarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductoInventario, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Variaciones = append([]model.ProductoVariacion(nil), p.Variaciones...)
	return &cp, nil
}

func (r *stubInventarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.ProductoInventario, error) {
	var out []model.ProductoInventario
	for _, p := range r.productos {
		if p.Activo || incluirInactivos {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubInventarioRepo) UpdateTx(_ *gorm.DB, p *model.ProductoInventario) error {
	cur := r.productos[p.ID]
	vs := cur.Variaciones
	*cur = *p
	cur.Variaciones = vs
	return nil
}

func (r *stubInventarioRepo) UpdatePrecioVariacionTx(_ *gorm.DB, variacionID uuid.UUID, precio interface{}) error {
	v := r.variacion(variacionID)
	if v == nil {
		return gorm.ErrRecordNotFound
	}
	v.PrecioPersonalizado = nil
	if d, ok := precio.(decimal.Decimal); ok {
		v.PrecioPersonalizado = &d
	}
	return nil
}

func (r *stubInventarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubInventarioRepo) FindVariacionForUpdateTx(_ *gorm.DB, productoID uuid.UUID, talla string) (*model.ProductoVariacion, error) {
	p, ok := r.productos[productoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := p.Variacion(talla)
	if v == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubInventarioRepo) SetStockTx(_ *gorm.DB, variacionID uuid.UUID, stock int) error {
	v := r.variacion(variacionID)
	if v == nil {
		return gorm.ErrRecordNotFound
	}
	v.Stock = stock
	return nil
}

func (r *stubInventarioRepo) DescontarStockTx(_ *gorm.DB, variacionID uuid.UUID, cantidad int) (bool, error) {
	v := r.variacion(variacionID)
	if v == nil || v.Stock < cantidad {
		return false, nil
	}
	v.Stock -= cantidad
	return true, nil
}

func (r *stubInventarioRepo) VariacionesBajoMinimo(_ context.Context) ([]repository.VariacionBajoMinimo, error) {
	return r.bajo, nil
}

func (r *stubInventarioRepo) DB() *gorm.DB { return nil }

func (r *stubInventarioRepo) variacion(id uuid.UUID) *model.ProductoVariacion {
	for _, p := range r.productos {
		for i := range p.Variaciones {
			if p.Variaciones[i].ID == id {
				return &p.Variaciones[i]
			}
		}
	}
	return nil
}

func (r *stubInventarioRepo) stock(productoID uuid.UUID, talla string) int {
	return r.productos[productoID].Variacion(talla).Stock
}

var _ repository.InventarioRepository = (*stubInventarioRepo)(nil)

type stubMovimientoRepo struct {
	movimientos []model.MovimientoInventario
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoInventario) error {
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, f repository.MovimientoFilter) ([]model.MovimientoInventario, error) {
	var out []model.MovimientoInventario
	for _, m := range r.movimientos {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.VariacionID != nil && m.VariacionID != *f.VariacionID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

var _ repository.MovimientoInventarioRepository = (*stubMovimientoRepo)(nil)

type stubVentaRepo struct {
	ventas     []model.Venta
	lastFilter repository.VentaFilter
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.ventas = append(r.ventas, *v)
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, f repository.VentaFilter) ([]model.Venta, error) {
	r.lastFilter = f
	var out []model.Venta
	for _, v := range r.ventas {
		if f.Canal != "" && v.Canal != f.Canal {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

type stubAlertaRepo struct {
	alertas []model.AlertaStock
}

func (r *stubAlertaRepo) CreateTx(_ *gorm.DB, a *model.AlertaStock) error {
	r.alertas = append(r.alertas, *a)
	return nil
}

func (r *stubAlertaRepo) List(_ context.Context, soloNoLeidas bool) ([]model.AlertaStock, error) {
	var out []model.AlertaStock
	for _, a := range r.alertas {
		if a.DeletedAt.Valid || (soloNoLeidas && a.Leida) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAlertaRepo) ExisteDesde(_ context.Context, variacionID uuid.UUID, tipo string, desde time.Time) (bool, error) {
	for _, a := range r.alertas {
		if a.VariacionID == variacionID && a.TipoAlerta == tipo && !a.CreatedAt.Before(desde) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAlertaRepo) MarcarLeida(_ context.Context, id uuid.UUID) error {
	for i := range r.alertas {
		if r.alertas[i].ID == id && !r.alertas[i].DeletedAt.Valid {
			r.alertas[i].Leida = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubAlertaRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i := range r.alertas {
		if r.alertas[i].ID == id && !r.alertas[i].DeletedAt.Valid {
			r.alertas[i].DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.AlertaRepository = (*stubAlertaRepo)(nil)

type inventarioFixture struct {
	svc         service.InventarioService
	repo        *stubInventarioRepo
	movimientos *stubMovimientoRepo
	ventas      *stubVentaRepo
	alertas     *stubAlertaRepo
}

func newInventarioFixture() *inventarioFixture {
	f := &inventarioFixture{
		repo:        newStubInventarioRepo(),
		movimientos: &stubMovimientoRepo{},
		ventas:      &stubVentaRepo{},
		alertas:     &stubAlertaRepo{},
	}
	f.svc = service.NewInventarioService(f.repo, f.movimientos, f.ventas, f.alertas)
	return f
}

// ── Coupons ──────────────────────────────────────────────────────────────────

type stubCouponRepo struct {
	mu          sync.Mutex
	cupones     map[uuid.UUID]*model.Coupon
	userCoupons []model.UserCoupon
	incrErr     error
	// userCouponErr fails CreateUserCouponTx and undoes the increment made
	// earlier in the same redemption, as the real transaction would.
	userCouponErr error
}

func newStubCouponRepo(cs ...*model.Coupon) *stubCouponRepo {
	r := &stubCouponRepo{cupones: make(map[uuid.UUID]*model.Coupon)}
	for _, c := range cs {
		r.cupones[c.ID] = c
	}
	return r
}

func (r *stubCouponRepo) Create(_ context.Context, c *model.Coupon) error {
	r.cupones[c.ID] = c
	return nil
}

func (r *stubCouponRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Coupon, error) {
	c, ok := r.cupones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCouponRepo) FindByCode(_ context.Context, code string) (*model.Coupon, error) {
	for _, c := range r.cupones {
		if strings.EqualFold(c.Code, code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCouponRepo) List(_ context.Context) ([]model.Coupon, error) {
	var out []model.Coupon
	for _, c := range r.cupones {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCouponRepo) Update(_ context.Context, c *model.Coupon) error {
	r.cupones[c.ID] = c
	return nil
}

func (r *stubCouponRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.cupones[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.cupones, id)
	return nil
}

func (r *stubCouponRepo) DB() *gorm.DB { return nil }

func (r *stubCouponRepo) IncrementarUsosTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrErr != nil {
		return r.incrErr
	}
	c, ok := r.cupones[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.MaxUses != nil && c.CurrentUses >= *c.MaxUses {
		return repository.ErrCuponAgotado
	}
	c.CurrentUses++
	return nil
}

func (r *stubCouponRepo) UsadoPorUsuario(_ context.Context, userID, couponID uuid.UUID) (bool, error) {
	for _, uc := range r.userCoupons {
		if uc.UserID == userID && uc.CouponID == couponID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCouponRepo) CreateUserCouponTx(_ *gorm.DB, uc *model.UserCoupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userCouponErr != nil {
		if c, ok := r.cupones[uc.CouponID]; ok {
			c.CurrentUses--
		}
		return r.userCouponErr
	}
	r.userCoupons = append(r.userCoupons, *uc)
	return nil
}

func (r *stubCouponRepo) ListUserCoupons(_ context.Context, userID uuid.UUID) ([]model.UserCoupon, error) {
	var out []model.UserCoupon
	for _, uc := range r.userCoupons {
		if uc.UserID == userID {
			out = append(out, uc)
		}
	}
	return out, nil
}

var _ repository.CouponRepository = (*stubCouponRepo)(nil)

// ── Orders ───────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
	err    error
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	if r.err != nil {
		return r.err
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) List(_ context.Context, f dto.OrderFilter) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if f.Status != "" && o.ShippingStatus != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID && len(out) < limit {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.UserID != nil && *o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) UpdateEstado(_ context.Context, id uuid.UUID, status string, tracking *string, at time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.ShippingStatus = status
	if tracking != nil {
		o.TrackingNumber = tracking
	}
	switch status {
	case model.EnvioEnviado:
		o.ShippedAt = &at
	case model.EnvioEntregado:
		o.DeliveredAt = &at
	}
	return nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// stubDispatcher records enqueued jobs; err makes every enqueue fail.
type stubDispatcher struct {
	emails    []worker.EmailJobPayload
	pixels    []worker.PixelJobPayload
	marketing []worker.MarketingJobPayload
	err       error
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	if d.err != nil {
		return d.err
	}
	d.emails = append(d.emails, p)
	return nil
}

func (d *stubDispatcher) EnqueuePixel(_ context.Context, p worker.PixelJobPayload) error {
	if d.err != nil {
		return d.err
	}
	d.pixels = append(d.pixels, p)
	return nil
}

func (d *stubDispatcher) EnqueueMarketing(_ context.Context, p worker.MarketingJobPayload) error {
	if d.err != nil {
		return d.err
	}
	d.marketing = append(d.marketing, p)
	return nil
}

var _ service.Dispatcher = (*stubDispatcher)(nil)

var errDB = errors.New("connection refused")
