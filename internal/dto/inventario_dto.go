package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VariacionRequest struct {
	Talla               string           `json:"talla"                validate:"required,max=20"`
	Stock               int              `json:"stock"                validate:"min=0"`
	PrecioPersonalizado *decimal.Decimal `json:"precio_personalizado" validate:"omitempty,gt=0"`
}

type CrearProductoInventarioRequest struct {
	Nombre      string             `json:"nombre"       validate:"required,min=2,max=120"`
	Tipo        string             `json:"tipo"         validate:"required,oneof=anillo collar otro"`
	Descripcion *string            `json:"descripcion"`
	Precio      decimal.Decimal    `json:"precio"       validate:"required,gt=0"`
	StockMinimo *int               `json:"stock_minimo" validate:"omitempty,min=0"`
	Variaciones []VariacionRequest `json:"variaciones"  validate:"required,min=1,dive"`
}

type ActualizarProductoInventarioRequest struct {
	Nombre      *string            `json:"nombre"       validate:"omitempty,min=2,max=120"`
	Tipo        *string            `json:"tipo"         validate:"omitempty,oneof=anillo collar otro"`
	Descripcion *string            `json:"descripcion"`
	Precio      *decimal.Decimal   `json:"precio"       validate:"omitempty,gt=0"`
	StockMinimo *int               `json:"stock_minimo" validate:"omitempty,min=0"`
	Activo      *bool              `json:"activo"`
	// Variaciones adds new sizes or updates precio_personalizado of existing ones.
	// Stock of existing sizes is never changed here: use PUT /inventario/stock.
	Variaciones []VariacionRequest `json:"variaciones" validate:"omitempty,dive"`
}

type ActualizarStockRequest struct {
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	Talla      string  `json:"talla"       validate:"required"`
	NuevoStock *int    `json:"nuevo_stock" validate:"required,min=0"`
	Motivo     *string `json:"motivo"      validate:"omitempty,max=255"`
}

type RegistrarVentaRequest struct {
	ProductoID string  `json:"producto_id" validate:"required,uuid"`
	Talla      string  `json:"talla"       validate:"required"`
	Cantidad   int     `json:"cantidad"    validate:"required,min=1"`
	Canal      string  `json:"canal"       validate:"required,oneof=admin web instagram fisico"`
	Notas      *string `json:"notas"       validate:"omitempty,max=500"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /inventario/ventas.
type VentaFilter struct {
	Desde  string `form:"desde"`  // YYYY-MM-DD inclusive
	Hasta  string `form:"hasta"`  // YYYY-MM-DD inclusive
	Canal  string `form:"canal"   validate:"omitempty,oneof=admin web instagram fisico"`
	Limite int    `form:"limite"  validate:"omitempty,min=1,max=500"`
}

type MovimientoFilter struct {
	ProductoID  string `form:"producto_id"  validate:"omitempty,uuid"`
	VariacionID string `form:"variacion_id" validate:"omitempty,uuid"`
	Limite      int    `form:"limite"       validate:"omitempty,min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VariacionResponse struct {
	ID                  string           `json:"id"`
	Talla               string           `json:"talla"`
	Stock               int              `json:"stock"`
	PrecioPersonalizado *decimal.Decimal `json:"precio_personalizado"`
}

type ProductoInventarioResponse struct {
	ID          string              `json:"id"`
	Nombre      string              `json:"nombre"`
	Tipo        string              `json:"tipo"`
	Descripcion *string             `json:"descripcion"`
	Precio      decimal.Decimal     `json:"precio"`
	StockMinimo int                 `json:"stock_minimo"`
	StockTotal  int                 `json:"stock_total"`
	Activo      bool                `json:"activo"`
	Variaciones []VariacionResponse `json:"variaciones"`
	CreatedAt   string              `json:"created_at"`
}

type ActualizarStockResponse struct {
	ProductoID     string `json:"producto_id"`
	Talla          string `json:"talla"`
	StockAnterior  int    `json:"stock_anterior"`
	StockNuevo     int    `json:"stock_nuevo"`
	Diferencia     int    `json:"diferencia"`
	TipoMovimiento string `json:"tipo_movimiento"`
}

type MovimientoResponse struct {
	ID              string  `json:"id"`
	ProductoID      string  `json:"producto_id"`
	Talla           string  `json:"talla"`
	TipoMovimiento  string  `json:"tipo_movimiento"`
	Cantidad        int     `json:"cantidad"`
	StockAnterior   int     `json:"stock_anterior"`
	StockNuevo      int     `json:"stock_nuevo"`
	Motivo          string  `json:"motivo"`
	ReferenciaVenta *string `json:"referencia_venta"`
	CreatedAt       string  `json:"created_at"`
}

type AlertaStockResponse struct {
	ID             string `json:"id"`
	ProductoID     string `json:"producto_id"`
	ProductoNombre string `json:"producto_nombre"`
	Talla          string `json:"talla"`
	TipoAlerta     string `json:"tipo_alerta"`
	Mensaje        string `json:"mensaje"`
	Leida          bool   `json:"leida"`
	CreatedAt      string `json:"created_at"`
}
