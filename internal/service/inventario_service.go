package service

import (
	"context"
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

const stockMinimoDefault = 2

// InventarioService is the admin inventory ledger: products with per-size
// variations, manual stock adjustments, sales, movements and stock alerts.
type InventarioService interface {
	CrearProducto(ctx context.Context, req dto.CrearProductoInventarioRequest) (*dto.ProductoInventarioResponse, error)
	ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoInventarioResponse, error)
	ListarProductos(ctx context.Context, incluirInactivos bool) ([]dto.ProductoInventarioResponse, error)
	ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoInventarioRequest) (*dto.ProductoInventarioResponse, error)
	EliminarProducto(ctx context.Context, id uuid.UUID) error

	ActualizarStock(ctx context.Context, req dto.ActualizarStockRequest) (*dto.ActualizarStockResponse, error)
	RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoResponse, error)

	ListarAlertas(ctx context.Context, soloNoLeidas bool) ([]dto.AlertaStockResponse, error)
	MarcarAlertaLeida(ctx context.Context, id uuid.UUID) error
	EliminarAlerta(ctx context.Context, id uuid.UUID) error
	// BarrerAlertas raises alerts missing for variations at or below
	// stock_minimo. Returns how many were created.
	BarrerAlertas(ctx context.Context) (int, error)
}

type inventarioService struct {
	repo        repository.InventarioRepository
	movimientos repository.MovimientoInventarioRepository
	ventas      repository.VentaRepository
	alertas     repository.AlertaRepository
	now         func() time.Time
}

func NewInventarioService(
	repo repository.InventarioRepository,
	movimientos repository.MovimientoInventarioRepository,
	ventas repository.VentaRepository,
	alertas repository.AlertaRepository,
) InventarioService {
	return &inventarioService{
		repo:        repo,
		movimientos: movimientos,
		ventas:      ventas,
		alertas:     alertas,
		now:         time.Now,
	}
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *inventarioService) CrearProducto(ctx context.Context, req dto.CrearProductoInventarioRequest) (*dto.ProductoInventarioResponse, error) {
	if err := tallasUnicas(req.Variaciones); err != nil {
		return nil, err
	}

	p := &model.ProductoInventario{
		ID:          uuid.New(),
		Nombre:      strings.TrimSpace(req.Nombre),
		Tipo:        req.Tipo,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		StockMinimo: stockMinimoDefault,
		Activo:      true,
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}

	// Product and variations commit together: a product never exists without
	// its sizes.
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return fmt.Errorf("crear producto: %w", err)
		}
		for _, vr := range req.Variaciones {
			v := model.ProductoVariacion{
				ID:                  uuid.New(),
				ProductoID:          p.ID,
				Talla:               strings.TrimSpace(vr.Talla),
				Stock:               vr.Stock,
				PrecioPersonalizado: vr.PrecioPersonalizado,
			}
			if err := s.repo.CreateVariacionTx(tx, &v); err != nil {
				return fmt.Errorf("crear variación %s: %w", v.Talla, err)
			}
			p.Variaciones = append(p.Variaciones, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("producto_id", p.ID.String()).Int("variaciones", len(p.Variaciones)).Msg("inventario: producto creado")
	resp := productoInventarioToResponse(p)
	return &resp, nil
}

func (s *inventarioService) ObtenerProducto(ctx context.Context, id uuid.UUID) (*dto.ProductoInventarioResponse, error) {
	p, err := s.buscarProducto(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := productoInventarioToResponse(p)
	return &resp, nil
}

func (s *inventarioService) ListarProductos(ctx context.Context, incluirInactivos bool) ([]dto.ProductoInventarioResponse, error) {
	productos, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductoInventarioResponse, 0, len(productos))
	for i := range productos {
		out = append(out, productoInventarioToResponse(&productos[i]))
	}
	return out, nil
}

func (s *inventarioService) ActualizarProducto(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoInventarioRequest) (*dto.ProductoInventarioResponse, error) {
	p, err := s.buscarProducto(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tallasUnicas(req.Variaciones); err != nil {
		return nil, err
	}

	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Tipo != nil {
		p.Tipo = *req.Tipo
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return fmt.Errorf("actualizar producto: %w", err)
		}
		for _, vr := range req.Variaciones {
			talla := strings.TrimSpace(vr.Talla)
			if existente := p.Variacion(talla); existente != nil {
				// Existing sizes only get their price override; stock changes
				// must go through ActualizarStock so they are logged.
				var precio interface{}
				if vr.PrecioPersonalizado != nil {
					precio = *vr.PrecioPersonalizado
				}
				if err := s.repo.UpdatePrecioVariacionTx(tx, existente.ID, precio); err != nil {
					return fmt.Errorf("actualizar variación %s: %w", talla, err)
				}
				existente.PrecioPersonalizado = vr.PrecioPersonalizado
				continue
			}
			v := model.ProductoVariacion{
				ID:                  uuid.New(),
				ProductoID:          p.ID,
				Talla:               talla,
				Stock:               vr.Stock,
				PrecioPersonalizado: vr.PrecioPersonalizado,
			}
			if err := s.repo.CreateVariacionTx(tx, &v); err != nil {
				return fmt.Errorf("crear variación %s: %w", talla, err)
			}
			p.Variaciones = append(p.Variaciones, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := productoInventarioToResponse(p)
	return &resp, nil
}

func (s *inventarioService) EliminarProducto(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if esNoEncontrado(err) {
			return noEncontrado("Producto")
		}
		return err
	}
	return nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (s *inventarioService) ActualizarStock(ctx context.Context, req dto.ActualizarStockRequest) (*dto.ActualizarStockResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id: %w", ErrValidacion)
	}
	if req.NuevoStock == nil || *req.NuevoStock < 0 {
		return nil, negocio("El stock no puede ser negativo")
	}
	nuevo := *req.NuevoStock

	p, err := s.buscarProducto(ctx, productoID)
	if err != nil {
		return nil, err
	}

	motivo := "Ajuste manual"
	if req.Motivo != nil && strings.TrimSpace(*req.Motivo) != "" {
		motivo = strings.TrimSpace(*req.Motivo)
	}

	talla := strings.TrimSpace(req.Talla)

	var resp dto.ActualizarStockResponse
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindVariacionForUpdateTx(tx, productoID, talla)
		if err != nil {
			if esNoEncontrado(err) {
				return noEncontrado("Talla " + talla)
			}
			return err
		}
		anterior := v.Stock
		tipo, cantidad := model.TipoPorDiferencia(anterior, nuevo)

		if err := s.repo.SetStockTx(tx, v.ID, nuevo); err != nil {
			return fmt.Errorf("actualizar stock: %w", err)
		}
		mov := &model.MovimientoInventario{
			ID:             uuid.New(),
			ProductoID:     productoID,
			VariacionID:    v.ID,
			Talla:          v.Talla,
			TipoMovimiento: tipo,
			Cantidad:       cantidad,
			StockAnterior:  anterior,
			StockNuevo:     nuevo,
			Motivo:         motivo,
		}
		if err := s.movimientos.CreateTx(tx, mov); err != nil {
			return fmt.Errorf("registrar movimiento: %w", err)
		}
		if err := s.evaluarAlerta(tx, p, v, anterior, nuevo); err != nil {
			return err
		}

		resp = dto.ActualizarStockResponse{
			ProductoID:     productoID.String(),
			Talla:          v.Talla,
			StockAnterior:  anterior,
			StockNuevo:     nuevo,
			Diferencia:     nuevo - anterior,
			TipoMovimiento: tipo,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegistrarVenta checks stock, snapshots the unit price, inserts the sale,
// decrements the variation conditionally and appends a salida movement
// referencing the sale. Everything commits in one transaction.
func (s *inventarioService) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id: %w", ErrValidacion)
	}
	if req.Cantidad <= 0 {
		return nil, negocio("La cantidad debe ser mayor a 0")
	}

	p, err := s.buscarProducto(ctx, productoID)
	if err != nil {
		return nil, err
	}
	if !p.Activo {
		return nil, negocio("El producto %s está inactivo y no puede venderse", p.Nombre)
	}

	talla := strings.TrimSpace(req.Talla)

	var venta *model.Venta
	var restante int
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.repo.FindVariacionForUpdateTx(tx, productoID, talla)
		if err != nil {
			if esNoEncontrado(err) {
				return noEncontrado("Talla " + talla)
			}
			return err
		}
		if req.Cantidad > v.Stock {
			return &StockInsuficienteError{Talla: v.Talla, Disponible: v.Stock, Solicitado: req.Cantidad}
		}

		precio := v.PrecioEfectivo(p.Precio)
		venta = &model.Venta{
			ID:             uuid.New(),
			ProductoID:     productoID,
			VariacionID:    v.ID,
			Talla:          v.Talla,
			Cantidad:       req.Cantidad,
			PrecioUnitario: precio,
			Total:          precio.Mul(decimal.NewFromInt(int64(req.Cantidad))),
			Canal:          req.Canal,
			Notas:          req.Notas,
			CreatedAt:      s.now(),
		}
		if err := s.ventas.CreateTx(tx, venta); err != nil {
			return fmt.Errorf("registrar venta: %w", err)
		}

		ok, err := s.repo.DescontarStockTx(tx, v.ID, req.Cantidad)
		if err != nil {
			return fmt.Errorf("descontar stock: %w", err)
		}
		if !ok {
			// Lost a race with another writer despite the row lock (e.g. a
			// direct database edit): report the stock we saw.
			return &StockInsuficienteError{Talla: v.Talla, Disponible: v.Stock, Solicitado: req.Cantidad}
		}

		anterior := v.Stock
		restante = anterior - req.Cantidad
		ref := venta.ID
		mov := &model.MovimientoInventario{
			ID:              uuid.New(),
			ProductoID:      productoID,
			VariacionID:     v.ID,
			Talla:           v.Talla,
			TipoMovimiento:  model.MovimientoSalida,
			Cantidad:        req.Cantidad,
			StockAnterior:   anterior,
			StockNuevo:      restante,
			Motivo:          fmt.Sprintf("Venta (%s)", req.Canal),
			ReferenciaVenta: &ref,
		}
		if err := s.movimientos.CreateTx(tx, mov); err != nil {
			return fmt.Errorf("registrar movimiento: %w", err)
		}
		return s.evaluarAlerta(tx, p, v, anterior, restante)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("producto_id", productoID.String()).
		Str("talla", venta.Talla).
		Int("cantidad", venta.Cantidad).
		Str("canal", venta.Canal).
		Msg("inventario: venta registrada")

	venta.Producto = p
	resp := ventaToResponse(venta)
	resp.StockRestante = &restante
	return &resp, nil
}

func (s *inventarioService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	f := repository.VentaFilter{Canal: filter.Canal, Limite: filter.Limite}
	if filter.Desde != "" {
		d, err := time.ParseInLocation("2006-01-02", filter.Desde, time.Local)
		if err != nil {
			return nil, fmt.Errorf("desde debe tener formato AAAA-MM-DD: %w", ErrValidacion)
		}
		f.Desde = &d
	}
	if filter.Hasta != "" {
		h, err := time.ParseInLocation("2006-01-02", filter.Hasta, time.Local)
		if err != nil {
			return nil, fmt.Errorf("hasta debe tener formato AAAA-MM-DD: %w", ErrValidacion)
		}
		h = h.AddDate(0, 0, 1)
		f.Hasta = &h
	}
	if f.Desde != nil && f.Hasta != nil && !f.Desde.Before(*f.Hasta) {
		return nil, fmt.Errorf("desde no puede ser posterior a hasta: %w", ErrValidacion)
	}

	ventas, err := s.ventas.List(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := &dto.VentaListResponse{Data: make([]dto.VentaResponse, 0, len(ventas)), MontoTotal: decimal.Zero}
	for i := range ventas {
		resp.Data = append(resp.Data, ventaToResponse(&ventas[i]))
		resp.MontoTotal = resp.MontoTotal.Add(ventas[i].Total)
		resp.PiezasTotal += ventas[i].Cantidad
	}
	resp.Total = len(resp.Data)
	return resp, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoResponse, error) {
	f := repository.MovimientoFilter{Limite: filter.Limite}
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id: %w", ErrValidacion)
		}
		f.ProductoID = &id
	}
	if filter.VariacionID != "" {
		id, err := uuid.Parse(filter.VariacionID)
		if err != nil {
			return nil, fmt.Errorf("variacion_id: %w", ErrValidacion)
		}
		f.VariacionID = &id
	}
	movs, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, movimientoToResponse(m))
	}
	return out, nil
}

// ── Alerts ───────────────────────────────────────────────────────────────────

func (s *inventarioService) ListarAlertas(ctx context.Context, soloNoLeidas bool) ([]dto.AlertaStockResponse, error) {
	alertas, err := s.alertas.List(ctx, soloNoLeidas)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertaStockResponse, 0, len(alertas))
	for i := range alertas {
		out = append(out, alertaToResponse(&alertas[i]))
	}
	return out, nil
}

func (s *inventarioService) MarcarAlertaLeida(ctx context.Context, id uuid.UUID) error {
	if err := s.alertas.MarcarLeida(ctx, id); err != nil {
		if esNoEncontrado(err) {
			return noEncontrado("Alerta")
		}
		return err
	}
	return nil
}

func (s *inventarioService) EliminarAlerta(ctx context.Context, id uuid.UUID) error {
	if err := s.alertas.Delete(ctx, id); err != nil {
		if esNoEncontrado(err) {
			return noEncontrado("Alerta")
		}
		return err
	}
	return nil
}

// evaluarAlerta raises an alert when a stock write crosses a threshold:
// agotado when it reaches zero, stock_bajo when it drops to stock_minimo or
// below. Staying under the threshold raises nothing new.
func (s *inventarioService) evaluarAlerta(tx *gorm.DB, p *model.ProductoInventario, v *model.ProductoVariacion, anterior, nuevo int) error {
	tipo, mensaje := tipoAlerta(p, v.Talla, anterior, nuevo)
	if tipo == "" {
		return nil
	}
	a := &model.AlertaStock{
		ID:          uuid.New(),
		ProductoID:  p.ID,
		VariacionID: v.ID,
		Talla:       v.Talla,
		TipoAlerta:  tipo,
		Mensaje:     mensaje,
		CreatedAt:   s.now(),
	}
	if err := s.alertas.CreateTx(tx, a); err != nil {
		return fmt.Errorf("crear alerta: %w", err)
	}
	return nil
}

func tipoAlerta(p *model.ProductoInventario, talla string, anterior, nuevo int) (string, string) {
	switch {
	case nuevo == 0 && anterior > 0:
		return model.AlertaAgotado, mensajeAlerta(model.AlertaAgotado, p.Nombre, talla, 0)
	case nuevo <= p.StockMinimo && anterior > p.StockMinimo:
		return model.AlertaStockBajo, mensajeAlerta(model.AlertaStockBajo, p.Nombre, talla, nuevo)
	default:
		return "", ""
	}
}

func mensajeAlerta(tipo, nombre, talla string, stock int) string {
	if tipo == model.AlertaAgotado {
		return fmt.Sprintf("%s talla %s se agotó", nombre, talla)
	}
	return fmt.Sprintf("%s talla %s tiene stock bajo (%d)", nombre, talla, stock)
}

func (s *inventarioService) BarrerAlertas(ctx context.Context) (int, error) {
	filas, err := s.repo.VariacionesBajoMinimo(ctx)
	if err != nil {
		return 0, err
	}
	creadas := 0
	for _, f := range filas {
		tipo := model.AlertaStockBajo
		if f.Stock <= 0 {
			tipo = model.AlertaAgotado
		}
		existe, err := s.alertas.ExisteDesde(ctx, f.VariacionID, tipo, f.UpdatedAt)
		if err != nil {
			return creadas, err
		}
		if existe {
			continue
		}
		a := &model.AlertaStock{
			ID:          uuid.New(),
			ProductoID:  f.ProductoID,
			VariacionID: f.VariacionID,
			Talla:       f.Talla,
			TipoAlerta:  tipo,
			Mensaje:     mensajeAlerta(tipo, f.ProductoNombre, f.Talla, f.Stock),
			CreatedAt:   s.now(),
		}
		if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error { return s.alertas.CreateTx(tx, a) }); err != nil {
			return creadas, err
		}
		creadas++
	}
	return creadas, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *inventarioService) buscarProducto(ctx context.Context, id uuid.UUID) (*model.ProductoInventario, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if esNoEncontrado(err) {
			return nil, noEncontrado("Producto")
		}
		return nil, err
	}
	return p, nil
}

func tallasUnicas(vs []dto.VariacionRequest) error {
	vistas := make(map[string]bool, len(vs))
	for _, v := range vs {
		t := strings.TrimSpace(v.Talla)
		if vistas[t] {
			return negocio("La talla %s está repetida", t)
		}
		vistas[t] = true
	}
	return nil
}

func productoInventarioToResponse(p *model.ProductoInventario) dto.ProductoInventarioResponse {
	resp := dto.ProductoInventarioResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Tipo:        p.Tipo,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		StockMinimo: p.StockMinimo,
		StockTotal:  p.StockTotal(),
		Activo:      p.Activo,
		Variaciones: make([]dto.VariacionResponse, 0, len(p.Variaciones)),
		CreatedAt:   formatTime(p.CreatedAt),
	}
	for _, v := range p.Variaciones {
		resp.Variaciones = append(resp.Variaciones, dto.VariacionResponse{
			ID:                  v.ID.String(),
			Talla:               v.Talla,
			Stock:               v.Stock,
			PrecioPersonalizado: v.PrecioPersonalizado,
		})
	}
	return resp
}

func ventaToResponse(v *model.Venta) dto.VentaResponse {
	resp := dto.VentaResponse{
		ID:             v.ID.String(),
		ProductoID:     v.ProductoID.String(),
		Talla:          v.Talla,
		Cantidad:       v.Cantidad,
		PrecioUnitario: v.PrecioUnitario,
		Total:          v.Total,
		Canal:          v.Canal,
		Notas:          v.Notas,
		CreatedAt:      formatTime(v.CreatedAt),
	}
	if v.Producto != nil {
		resp.ProductoNombre = v.Producto.Nombre
	}
	return resp
}

func movimientoToResponse(m model.MovimientoInventario) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:             m.ID.String(),
		ProductoID:     m.ProductoID.String(),
		Talla:          m.Talla,
		TipoMovimiento: m.TipoMovimiento,
		Cantidad:       m.Cantidad,
		StockAnterior:  m.StockAnterior,
		StockNuevo:     m.StockNuevo,
		Motivo:         m.Motivo,
		CreatedAt:      formatTime(m.CreatedAt),
	}
	if m.ReferenciaVenta != nil {
		ref := m.ReferenciaVenta.String()
		resp.ReferenciaVenta = &ref
	}
	return resp
}

func alertaToResponse(a *model.AlertaStock) dto.AlertaStockResponse {
	resp := dto.AlertaStockResponse{
		ID:         a.ID.String(),
		ProductoID: a.ProductoID.String(),
		Talla:      a.Talla,
		TipoAlerta: a.TipoAlerta,
		Mensaje:    a.Mensaje,
		Leida:      a.Leida,
		CreatedAt:  formatTime(a.CreatedAt),
	}
	if a.Producto != nil {
		resp.ProductoNombre = a.Producto.Nombre
	}
	return resp
}

