//go:build integration

package e2e

// End-to-end tests against real Postgres and Redis started with testcontainers.
// Run with: go test -tags integration ./internal/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"aceves/internal/config"
	"aceves/internal/dto"
	"aceves/internal/infra"
	"aceves/internal/middleware"
	"aceves/internal/router"
	"aceves/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const (
	jwtSecret   = "e2e-jwt-secret-with-at-least-32-characters"
	internalKey = "e2e-internal-key"
	adminEmail  = "admin@acevesjoyeria.com"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
	admin  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("aceves_test"),
		tcPostgres.WithUsername("aceves"),
		tcPostgres.WithPassword("aceves"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:               "test",
		DatabaseURL:       pgURL,
		RedisURL:          rdURL,
		SupabaseJWTSecret: jwtSecret,
		AdminEmailsRaw:    adminEmail,
		InternalAPIKey:    internalKey,
		CouponRateLimit:   100,
		CORSOriginsRaw:    "http://localhost:5173",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	srv := httptest.NewServer(router.New(ctx, cfg, db, rdb, worker.NewDispatcher(rdb)))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb, admin: token(t, adminEmail)}
}

func token(t *testing.T, email string) string {
	t.Helper()
	claims := &middleware.SupabaseClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) asAdmin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + e.admin}
}

func internal() map[string]string { return map[string]string{"X-Internal-Key": internalKey} }

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Inventory ────────────────────────────────────────────────────────────────

func TestE2E_VentaDescuentaStockYAlerta(t *testing.T) {
	env := setupTestEnv(t)
	minimo := 2

	resp := env.do(t, http.MethodPost, "/api/inventario/productos", dto.CrearProductoInventarioRequest{
		Nombre:      "Anillo Luna Plata .925",
		Tipo:        "anillo",
		Precio:      decimal.NewFromInt(750),
		StockMinimo: &minimo,
		Variaciones: []dto.VariacionRequest{{Talla: "6", Stock: 5}, {Talla: "7", Stock: 3}},
	}, env.asAdmin())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod dto.ProductoInventarioResponse
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 8, prod.StockTotal)

	// Oversell is rejected and leaves stock untouched
	resp = env.do(t, http.MethodPost, "/api/inventario/ventas", dto.RegistrarVentaRequest{
		ProductoID: prod.ID, Talla: "7", Cantidad: 5, Canal: "fisico",
	}, env.asAdmin())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/inventario/ventas", dto.RegistrarVentaRequest{
		ProductoID: prod.ID, Talla: "7", Cantidad: 1, Canal: "instagram",
	}, env.asAdmin())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta dto.VentaResponse
	decodeJSON(t, resp, &venta)
	assert.True(t, venta.Total.Equal(decimal.NewFromInt(750)))
	require.NotNil(t, venta.StockRestante)
	assert.Equal(t, 2, *venta.StockRestante)

	// 3 → 2 crosses stock_minimo
	resp = env.do(t, http.MethodGet, "/api/inventario/stock?no_leidas=true", nil, env.asAdmin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var alertas []dto.AlertaStockResponse
	decodeJSON(t, resp, &alertas)
	require.Len(t, alertas, 1)
	assert.Equal(t, "stock_bajo", alertas[0].TipoAlerta)
	assert.Equal(t, "7", alertas[0].Talla)

	resp = env.do(t, http.MethodGet, "/api/inventario/movimientos?producto_id="+prod.ID, nil, env.asAdmin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs []dto.MovimientoResponse
	decodeJSON(t, resp, &movs)
	require.NotEmpty(t, movs)
	assert.Equal(t, "salida", movs[0].TipoMovimiento)
}

func TestE2E_InventarioRequiereAdmin(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/inventario/productos", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/inventario/productos", nil,
		map[string]string{"Authorization": "Bearer " + token(t, "cliente@correo.mx")})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

// ── Catalog stock ────────────────────────────────────────────────────────────

func TestE2E_UpdateStockConcurrenteNoQuedaNegativo(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/admin/products", dto.CrearProductoRequest{
		Name:     "Anillo Sol",
		Category: "anillos",
		Price:    decimal.NewFromInt(900),
		Sizes:    []dto.TallaStockRequest{{Size: "7", Stock: 3}},
	}, env.asAdmin())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod dto.ProductoResponse
	decodeJSON(t, resp, &prod)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := env.do(t, http.MethodPost, "/api/update-stock", dto.DescontarStockRequest{
				CartItems: []dto.ItemCarrito{{ID: prod.ID, SelectedSize: "7", Quantity: 1}},
			}, internal())
			r.Body.Close()
		}()
	}
	wg.Wait()

	resp = env.do(t, http.MethodGet, "/api/products/"+prod.ID+"/stock?size=7", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stock dto.StockDisponibleResponse
	decodeJSON(t, resp, &stock)
	assert.Equal(t, 0, stock.Stock)

	resp = env.do(t, http.MethodPost, "/api/update-stock", dto.DescontarStockRequest{
		CartItems: []dto.ItemCarrito{{ID: prod.ID, SelectedSize: "7", Quantity: 1}},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// ── Coupons and orders ───────────────────────────────────────────────────────

func TestE2E_PedidoConCuponRedimeYEncola(t *testing.T) {
	env := setupTestEnv(t)
	maxUses := 1

	resp := env.do(t, http.MethodPost, "/api/admin/coupons", dto.CrearCouponRequest{
		Code:          "verano10",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(10),
		MaxUses:       &maxUses,
	}, env.asAdmin())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cupon dto.CouponResponse
	decodeJSON(t, resp, &cupon)
	assert.Equal(t, "VERANO10", cupon.Code)

	resp = env.do(t, http.MethodPost, "/api/coupons/validate", dto.ValidarCuponRequest{
		Code: "Verano10", CartTotal: decimal.NewFromInt(1500),
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v dto.ValidarCuponResponse
	decodeJSON(t, resp, &v)
	require.True(t, v.Valid)
	assert.True(t, v.Discount.Equal(decimal.NewFromInt(150)))

	code := cupon.Code
	resp = env.do(t, http.MethodPost, "/api/orders/create", dto.CrearOrderRequest{
		IsGuest:       true,
		CustomerEmail: "invitada@correo.mx",
		CustomerName:  "Ana López",
		ShippingAddress: dto.ShippingAddressRequest{
			Street: "Av. Juárez 100", City: "Guadalajara", State: "Jalisco", PostalCode: "44100", Country: "MX",
		},
		Items:          []dto.OrderItemRequest{{ProductID: "anillo-sol", Name: "Anillo Sol", Price: decimal.NewFromInt(1500), Quantity: 1, Size: "7"}},
		OriginalTotal:  decimal.NewFromInt(1500),
		CouponDiscount: decimal.NewFromInt(150),
		TotalAmount:    decimal.NewFromInt(1350),
		CouponID:       &cupon.ID,
		CouponCode:     &code,
		PaypalOrderID:  "5O190127TN364715T",
	}, internal())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var order dto.OrderResponse
	decodeJSON(t, resp, &order)
	assert.Equal(t, "paid", order.ShippingStatus)

	// The single allowed use is spent.
	resp = env.do(t, http.MethodPost, "/api/coupons/validate", dto.ValidarCuponRequest{
		Code: "VERANO10", CartTotal: decimal.NewFromInt(1500),
	}, nil)
	decodeJSON(t, resp, &v)
	assert.False(t, v.Valid)

	ctx := context.Background()
	n, err := env.rdb.LLen(ctx, worker.QueueEmail).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = env.rdb.LLen(ctx, worker.QueueMarketing).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = env.rdb.LLen(ctx, worker.QueuePixel).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	tracking := "MX123456789"
	resp = env.do(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status", dto.ActualizarEstadoRequest{
		Status: "shipped", TrackingNumber: &tracking,
	}, env.asAdmin())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &order)
	assert.NotNil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
}

// ── Infrastructure ───────────────────────────────────────────────────────────

func TestE2E_RedisRateStoreVentanaCompartida(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	store := middleware.NewRedisRateStore(env.rdb)

	for i := int64(1); i <= 3; i++ {
		n, end, err := store.Incr(ctx, "ratelimit:test:10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.WithinDuration(t, time.Now().Add(time.Minute), end, 2*time.Second)
	}
	ttl, err := env.rdb.PTTL(ctx, "ratelimit:test:10.0.0.1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		OK  bool             `json:"ok"`
		DLQ map[string]int64 `json:"dlq"`
	}
	decodeJSON(t, resp, &body)
	assert.True(t, body.OK)
	assert.Contains(t, body.DLQ, worker.QueueEmail)
}
