package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(stock string) *entity.Product {
	return &entity.Product{ID: "p1", Name: "Tornillo 1/4", StockBase: d(stock)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_Entrada(t *testing.T) {
	eff, err := inventory.Apply(product("10"), entity.MovementEntrada, d("5"))
	require.NoError(t, err)
	assert.True(t, eff.Delta.Equal(d("5")))
	assert.True(t, eff.Before.Equal(d("10")))
	assert.True(t, eff.After.Equal(d("15")))
}

func TestApply_SalidaHastaCero(t *testing.T) {
	eff, err := inventory.Apply(product("10"), entity.MovementSalida, d("10"))
	require.NoError(t, err, "salida igual al stock debe permitirse")
	assert.True(t, eff.After.IsZero())
	assert.True(t, eff.Delta.Equal(d("-10")))
}

func TestApply_SalidaInsuficiente(t *testing.T) {
	_, err := inventory.Apply(product("10"), entity.MovementSalida, d("10.01"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(d("10")), "debe informar el disponible")
	assert.Equal(t, "p1", stockErr.ProductID)
}

func TestApply_MermaComoSalida(t *testing.T) {
	_, err := inventory.Apply(product("1"), entity.MovementMerma, d("2"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	eff, err := inventory.Apply(product("3"), entity.MovementMerma, d("2"))
	require.NoError(t, err)
	assert.True(t, eff.After.Equal(d("1")))
}

func TestApply_CantidadNoPositiva(t *testing.T) {
	for _, kind := range []entity.MovementKind{entity.MovementEntrada, entity.MovementSalida, entity.MovementMerma} {
		_, err := inventory.Apply(product("10"), kind, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero debe rechazarse en %s", kind)
		_, err = inventory.Apply(product("10"), kind, d("-1"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa debe rechazarse en %s", kind)
	}
}

func TestApply_AjusteGuardaDiferencia(t *testing.T) {
	eff, err := inventory.Apply(product("10"), entity.MovementAjuste, d("7"))
	require.NoError(t, err)
	assert.True(t, eff.Delta.Equal(d("-3")), "el kardex guarda la diferencia con signo")
	assert.True(t, eff.After.Equal(d("7")), "el saldo queda en el valor absoluto")

	eff, err = inventory.Apply(product("10"), entity.MovementAjuste, decimal.Zero)
	require.NoError(t, err, "ajustar a cero es válido")
	assert.True(t, eff.After.IsZero())

	_, err = inventory.Apply(product("10"), entity.MovementAjuste, d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_TipoDesconocido(t *testing.T) {
	_, err := inventory.Apply(product("10"), entity.MovementKind("Traslado"), d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reconcile / AverageCost
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile(t *testing.T) {
	out := inventory.Reconcile([]entity.StockBalance{
		{ProductID: "a", StockBase: d("5"), LedgerTotal: d("5")},
		{ProductID: "b", Code: "B-1", StockBase: d("4"), LedgerTotal: d("3")},
		{ProductID: "c", StockBase: decimal.Zero, LedgerTotal: decimal.Zero},
	})
	require.Len(t, out, 1, "solo el producto descuadrado debe reportarse")
	assert.Equal(t, "b", out[0].ProductID)
	assert.Equal(t, "B-1", out[0].Code)
	assert.True(t, out[0].Difference.Equal(d("1")))
}

func TestAverageCost(t *testing.T) {
	got := inventory.AverageCost(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")), "promedio ponderado esperado 150, obtuvo %s", got)

	got = inventory.AverageCost(decimal.Zero, d("100"), d("5"), d("80"))
	assert.True(t, got.Equal(d("80")), "sin stock previo se toma el costo de la entrada")

	got = inventory.AverageCost(d("3"), d("100"), decimal.Zero, d("500"))
	assert.True(t, got.Equal(d("100")), "una entrada sin cantidad no mueve el costo")

	got = inventory.AverageCost(d("3"), d("10"), d("1"), d("11"))
	assert.Equal(t, "10.25", got.String())
}

func TestSuggestedOrder(t *testing.T) {
	p := &entity.Product{StockBase: d("2"), StockMinimo: d("5")}
	assert.True(t, inventory.SuggestedOrder(p).Equal(d("8")))
	p.StockBase = d("12")
	assert.True(t, inventory.SuggestedOrder(p).IsZero())
}
