package service_test

import (
	"context"
	"errors"
	"testing"

	"aceves/internal/dto"
	"aceves/internal/model"
	"aceves/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockDisponible(t *testing.T) {
	repo := newStubProductoRepo(
		productoConTallas("anillo-sol", model.TallaStock{Size: "6", Stock: 2}, model.TallaStock{Size: "7", Stock: 0}),
		productoPlano("collar-luna", 4),
		productoPlano("collar-roto", -3),
		&model.Producto{ID: "pulsera-libre", Name: "Pulsera"},
	)
	svc := service.NewStockService(repo)

	tests := []struct {
		name  string
		id    string
		talla string
		want  int
	}{
		{"talla con stock", "anillo-sol", "6", 2},
		{"talla agotada", "anillo-sol", "7", 0},
		{"talla inexistente", "anillo-sol", "9", 0},
		{"producto con tallas sin talla", "anillo-sol", "", 0},
		{"stock general", "collar-luna", "", 4},
		{"stock general ignora talla", "collar-luna", "7", 4},
		{"stock negativo se reporta 0", "collar-roto", "", 0},
		{"sin control de stock", "pulsera-libre", "", model.StockNoGestionado},
		{"producto inexistente", "no-existe", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.StockDisponible(context.Background(), tt.id, tt.talla))
		})
	}
}

func TestStockDisponibleLecturaIdempotente(t *testing.T) {
	repo := newStubProductoRepo(productoConTallas("anillo-sol", model.TallaStock{Size: "7", Stock: 5}))
	svc := service.NewStockService(repo)

	a := svc.StockDisponible(context.Background(), "anillo-sol", "7")
	b := svc.StockDisponible(context.Background(), "anillo-sol", "7")
	assert.Equal(t, a, b)
	assert.Zero(t, repo.writes)
}

func TestStockDisponibleFallaCerrado(t *testing.T) {
	repo := newStubProductoRepo(productoPlano("collar-luna", 4))
	repo.findErr = errDB
	svc := service.NewStockService(repo)

	assert.Equal(t, 0, svc.StockDisponible(context.Background(), "collar-luna", ""))
}

func TestDescontarStock(t *testing.T) {
	repo := newStubProductoRepo(
		productoConTallas("anillo-sol", model.TallaStock{Size: "7", Stock: 3}),
		productoPlano("collar-luna", 1),
		&model.Producto{ID: "pulsera-libre", Name: "Pulsera"},
	)
	svc := service.NewStockService(repo)

	resp, err := svc.DescontarStock(context.Background(), []dto.ItemCarrito{
		{ID: "anillo-sol", SelectedSize: "7", Quantity: 2},
		{ID: "collar-luna", Quantity: 5}, // clamps at zero
		{ID: "pulsera-libre", Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Items, 3)

	assert.Equal(t, 1, resp.Items[0].StockNuevo)
	assert.Equal(t, 0, resp.Items[1].StockNuevo)
	assert.False(t, resp.Items[2].Gestionado)
	assert.Equal(t, model.StockNoGestionado, resp.Items[2].StockNuevo)

	assert.Equal(t, 1, svc.StockDisponible(context.Background(), "anillo-sol", "7"))
	assert.Equal(t, 0, svc.StockDisponible(context.Background(), "collar-luna", ""))
	assert.Equal(t, 2, repo.writes, "unmanaged products are not written")
}

func TestDescontarStockParcial(t *testing.T) {
	repo := newStubProductoRepo(
		productoPlano("collar-luna", 4),
		productoConTallas("anillo-sol", model.TallaStock{Size: "7", Stock: 3}),
		productoPlano("arete-estrella", 2),
	)
	svc := service.NewStockService(repo)

	_, err := svc.DescontarStock(context.Background(), []dto.ItemCarrito{
		{ID: "collar-luna", Quantity: 1},
		{ID: "anillo-sol", SelectedSize: "8", Quantity: 1}, // unknown size aborts
		{ID: "arete-estrella", Quantity: 1},
	})
	var parcial *service.DescuentoParcialError
	require.True(t, errors.As(err, &parcial))
	assert.Equal(t, "anillo-sol", parcial.ItemID)
	require.Len(t, parcial.Aplicados, 1)
	assert.Equal(t, "collar-luna", parcial.Aplicados[0].ID)

	var negocio *service.NegocioError
	assert.True(t, errors.As(err, &negocio))

	// First item stays applied, the one after the failure is untouched.
	assert.Equal(t, 3, svc.StockDisponible(context.Background(), "collar-luna", ""))
	assert.Equal(t, 2, svc.StockDisponible(context.Background(), "arete-estrella", ""))
}

func TestDescontarStockTallaRequerida(t *testing.T) {
	repo := newStubProductoRepo(productoConTallas("anillo-sol", model.TallaStock{Size: "7", Stock: 3}))
	svc := service.NewStockService(repo)

	_, err := svc.DescontarStock(context.Background(), []dto.ItemCarrito{{ID: "anillo-sol", Quantity: 1}})
	var negocio *service.NegocioError
	assert.True(t, errors.As(err, &negocio))
	assert.Zero(t, repo.writes)
}

func TestDescontarStockProductoInexistente(t *testing.T) {
	svc := service.NewStockService(newStubProductoRepo())
	_, err := svc.DescontarStock(context.Background(), []dto.ItemCarrito{{ID: "fantasma", Quantity: 1}})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}
