package router

import (
	"context"
	"time"

	"aceves/internal/config"
	"aceves/internal/handler"
	"aceves/internal/middleware"
	"aceves/internal/repository"
	"aceves/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler mounted by Engine.
type Handlers struct {
	Inventario *handler.InventarioHandler
	Ventas     *handler.VentasHandler
	Productos  *handler.ProductosHandler
	Coupons    *handler.CouponsHandler
	Orders     *handler.OrdersHandler
	Cuenta     *handler.CuentaHandler
	Health     gin.HandlerFunc
}

// New wires all dependencies and returns a configured Gin engine. ctx bounds
// the in-memory rate limit fallback.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher service.Dispatcher) *gin.Engine {
	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	inventarioRepo := repository.NewInventarioRepository(db)
	movimientoRepo := repository.NewMovimientoInventarioRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	alertaRepo := repository.NewAlertaRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	inventarioSvc := service.NewInventarioService(inventarioRepo, movimientoRepo, ventaRepo, alertaRepo)
	stockSvc := service.NewStockService(productoRepo)
	catalogoSvc := service.NewCatalogoService(productoRepo)
	couponSvc := service.NewCouponService(couponRepo)
	orderSvc := service.NewOrderService(orderRepo, couponSvc, dispatcher)
	cuentaSvc := service.NewCuentaService(orderRepo, couponRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	h := Handlers{
		Inventario: handler.NewInventarioHandler(inventarioSvc),
		Ventas:     handler.NewVentasHandler(inventarioSvc),
		Productos:  handler.NewProductosHandler(catalogoSvc, stockSvc),
		Coupons:    handler.NewCouponsHandler(couponSvc),
		Orders:     handler.NewOrdersHandler(orderSvc),
		Cuenta:     handler.NewCuentaHandler(cuentaSvc),
		Health:     handler.Health(db, rdb),
	}
	rates := middleware.NewFallbackRateStore(middleware.NewRedisRateStore(rdb), middleware.NewMemoryRateStore(ctx))
	return Engine(cfg, h, rates)
}

// Engine mounts the middleware chain and routes.
func Engine(cfg *config.Config, h Handlers, rates middleware.RateStore) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rates, "global", 1000, time.Minute)) // 1000 req/min per IP

	auth := middleware.NewAuthenticator(cfg.SupabaseJWTSecret, cfg.AdminEmails())
	admin := []gin.HandlerFunc{auth.JWTAuth(), auth.RequireAdmin()}
	internal := middleware.InternalKey(cfg.InternalAPIKey)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Storefront catalog (public)
	api.GET("/products", h.Productos.Listar)
	api.GET("/products/:id", h.Productos.Obtener)
	api.GET("/products/:id/stock", h.Productos.StockDisponible)

	// Coupon check: anonymous or signed-in, brute-force guarded
	api.POST("/coupons/validate",
		middleware.RateLimiter(rates, "coupons", cfg.CouponRateLimit, time.Minute),
		auth.OptionalAuth(),
		h.Coupons.Validar,
	)

	// Called by the checkout backend after payment capture
	api.POST("/update-stock", internal, h.Productos.DescontarStock)
	api.POST("/orders/create", internal, h.Orders.Crear)

	// Signed-in customer
	user := api.Group("", auth.JWTAuth())
	{
		user.GET("/orders/mine", h.Orders.Mine)
		user.GET("/account/summary", h.Cuenta.Resumen)
	}

	inv := api.Group("/inventario", admin...)
	{
		inv.GET("/productos", h.Inventario.ListarProductos)
		inv.POST("/productos", h.Inventario.CrearProducto)
		inv.GET("/productos/:id", h.Inventario.ObtenerProducto)
		inv.PUT("/productos/:id", h.Inventario.ActualizarProducto)
		inv.DELETE("/productos/:id", h.Inventario.EliminarProducto)

		inv.PUT("/stock", h.Inventario.ActualizarStock)
		inv.GET("/stock", h.Inventario.ListarAlertas)

		inv.POST("/ventas", h.Ventas.RegistrarVenta)
		inv.GET("/ventas", h.Ventas.ListarVentas)

		inv.GET("/movimientos", h.Inventario.ListarMovimientos)

		inv.PUT("/alertas/:id", h.Inventario.MarcarAlertaLeida)
		inv.DELETE("/alertas/:id", h.Inventario.EliminarAlerta)
	}

	adm := api.Group("/admin", admin...)
	{
		adm.POST("/coupons", h.Coupons.Crear)
		adm.GET("/coupons", h.Coupons.Listar)
		adm.PUT("/coupons/:id", h.Coupons.Actualizar)
		adm.DELETE("/coupons/:id", h.Coupons.Eliminar)

		adm.GET("/orders", h.Orders.Listar)
		adm.GET("/orders/:id", h.Orders.Obtener)
		adm.PUT("/orders/:id/status", h.Orders.ActualizarEstado)

		adm.POST("/products", h.Productos.Crear)
		adm.PUT("/products/:id", h.Productos.Actualizar)
		adm.DELETE("/products/:id", h.Productos.Eliminar)
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
