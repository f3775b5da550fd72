package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/cache"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
)

var scope = tenant.New("ferreteria-este", "gerente")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, withCache bool) *bootstrap.Services {
	t.Helper()
	var c *cache.Cache
	if withCache {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		c = cache.New(client, time.Minute)
	}
	return bootstrap.NewServices(bootstrap.MemoryStores(memory.New()), c, sales.DefaultConfig())
}

func sell(t *testing.T, svc *bootstrap.Services, productID, qty string) string {
	t.Helper()
	s, err := svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{
		Lines: []sales.LineInput{{ProductID: productID, Quantity: dec(qty)}},
	})
	require.NoError(t, err)
	return s.ID
}

func product(t *testing.T, svc *bootstrap.Services, code, price, cost, stock, minimo string) string {
	t.Helper()
	p, err := svc.Catalog.CreateProduct(context.Background(), scope, catalog.CreateProductInput{
		Code: code, Name: code, PrecioBaseVenta: dec(price), PrecioBaseCompra: dec(cost),
		InitialStock: dec(stock), StockMinimo: dec(minimo),
	})
	require.NoError(t, err)
	return p.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Tablero
// ──────────────────────────────────────────────────────────────────────────────

func TestGetDashboard_ExcluyeAnuladas(t *testing.T) {
	svc := setup(t, false)
	ctx := context.Background()
	a := product(t, svc, "A", "100", "60", "50", "0")
	b := product(t, svc, "B", "10", "4", "50", "45")

	sell(t, svc, a, "2")
	sell(t, svc, b, "5")
	voided := sell(t, svc, a, "10")
	_, err := svc.Sales.VoidSale(ctx, scope, voided, "prueba")
	require.NoError(t, err)

	d, err := svc.Reports.GetDashboard(ctx, scope)
	require.NoError(t, err)
	assert.True(t, d.SalesToday.Equal(dec("250")), "2x100 + 5x10, sin la anulada")
	assert.Equal(t, 2, d.SalesTodayCount)
	assert.True(t, d.MonthProfit.Equal(dec("110")), "2x(100-60) + 5x(10-4)")
	assert.Equal(t, 1, d.LowStockCount, "B queda en 45 con mínimo 45")

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "B", d.TopProducts[0].Code, "ordenado por cantidad vendida")
	require.Len(t, d.Last7Days, 1)
	assert.Equal(t, 2, d.Last7Days[0].Count)
}

func TestGetDashboard_CacheSeInvalidaConCadaVenta(t *testing.T) {
	svc := setup(t, true)
	ctx := context.Background()
	a := product(t, svc, "A", "100", "60", "50", "0")

	sell(t, svc, a, "1")
	first, err := svc.Reports.GetDashboard(ctx, scope)
	require.NoError(t, err)
	assert.True(t, first.SalesToday.Equal(dec("100")))

	cached, err := svc.Reports.GetDashboard(ctx, scope)
	require.NoError(t, err)
	assert.True(t, first.GeneratedAt.Equal(cached.GeneratedAt), "la segunda lectura sale de caché")

	sell(t, svc, a, "1")
	fresh, err := svc.Reports.GetDashboard(ctx, scope)
	require.NoError(t, err)
	assert.True(t, fresh.SalesToday.Equal(dec("200")), "la venta invalida el tablero del tenant")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reporte por rango
// ──────────────────────────────────────────────────────────────────────────────

func TestGetSalesReport(t *testing.T) {
	svc := setup(t, false)
	ctx := context.Background()
	a := product(t, svc, "A", "100", "60", "50", "0")
	sell(t, svc, a, "3")

	now := time.Now()
	r, err := svc.Reports.GetSalesReport(ctx, scope, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, r.Total.Equal(dec("300")))
	assert.Equal(t, 1, r.Count)

	empty, err := svc.Reports.GetSalesReport(ctx, tenant.New("otra", "gerente"), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.Count, "los reportes no cruzan tenants")

	_, err = svc.Reports.GetSalesReport(ctx, scope, now, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
