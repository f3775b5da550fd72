package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
)

var scope = tenant.New("ferreteria-oeste", "admin")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*memory.Store, *catalog.UseCase) {
	t.Helper()
	store := memory.New()
	svc := bootstrap.NewServices(bootstrap.MemoryStores(store), nil, sales.DefaultConfig())
	return store, svc.Catalog
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "TOR-14", catalog.NormalizeCode("  tor-14 "))
	assert.Equal(t, "CAÑ-1", catalog.NormalizeCode("cañ-1"))
}

func TestCreateProduct_StockInicialComoEntrada(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "tor-14", Name: " Tornillo ", InitialStock: dec("25")})
	require.NoError(t, err)
	assert.Equal(t, "TOR-14", p.Code)
	assert.Equal(t, "Tornillo", p.Name)
	assert.Equal(t, scope.TenantID, p.TenantID)
	assert.True(t, p.StockBase.Equal(dec("25")))

	movs, err := store.Repos().Movements.ListByReference(ctx, scope.TenantID, entity.RefStockInicial, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1, "el stock inicial queda en el kardex")
	assert.Equal(t, entity.MovementEntrada, movs[0].Kind)
	assert.True(t, movs[0].StockBefore.IsZero())
}

func TestCreateProduct_Validaciones(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: " ", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "NEG", Name: "X", PrecioBaseVenta: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "CAT", Name: "X", CategoryID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.CreateProduct(ctx, tenant.Scope{UserID: "admin"}, catalog.CreateProductInput{Code: "T", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)
}

func TestCreateProduct_CodigoUnicoPorTenant(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "DUP-1", Name: "Uno"})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "dup-1", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateProduct(ctx, tenant.New("otra-ferreteria", "admin"), catalog.CreateProductInput{Code: "DUP-1", Name: "Tres"})
	assert.NoError(t, err, "el mismo código puede existir en otro tenant")
}

func TestDeleteProduct_OcultaDelListado(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	keep, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "K-1", Name: "Queda"})
	require.NoError(t, err)
	gone, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "G-1", Name: "Se va"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteProduct(ctx, scope, gone.ID))
	assert.ErrorIs(t, uc.DeleteProduct(ctx, scope, gone.ID), domain.ErrNotFound)

	list, err := uc.ListProducts(ctx, scope, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestAddPresentation(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "CAB-12", Name: "Cable"})
	require.NoError(t, err)

	_, err = uc.AddPresentation(ctx, scope, p.ID, catalog.AddPresentationInput{Name: "Rollo", FactorConversion: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el factor debe ser positivo")

	rollo, err := uc.AddPresentation(ctx, scope, p.ID, catalog.AddPresentationInput{Name: "Rollo x100m", FactorConversion: dec("100"), PrecioVenta: dec("290000")})
	require.NoError(t, err)
	assert.True(t, rollo.ToBase(dec("1.5")).Equal(dec("150")))

	list, err := uc.ListPresentations(ctx, scope, p.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = uc.ListPresentations(ctx, tenant.New("otra", "admin"), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Edición
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateProduct_EditaDatosSinTocarStock(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{
		Code: "MAR-1", Name: "Martillo", PrecioBaseVenta: dec("18000"), InitialStock: dec("12"),
	})
	require.NoError(t, err)

	upd, err := uc.UpdateProduct(ctx, scope, p.ID, catalog.UpdateProductInput{
		Code:            ptr(" mar-16oz "),
		Name:            ptr(" Martillo 16 oz "),
		StockMinimo:     ptr(dec("3")),
		PrecioBaseVenta: ptr(dec("21500")),
		Active:          ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "MAR-16OZ", upd.Code, "el código se normaliza")
	assert.Equal(t, "Martillo 16 oz", upd.Name)
	assert.True(t, upd.PrecioBaseVenta.Equal(dec("21500")))
	assert.True(t, upd.StockMinimo.Equal(dec("3")))
	assert.False(t, upd.Active)

	got, err := uc.GetProduct(ctx, scope, p.ID)
	require.NoError(t, err)
	assert.True(t, got.StockBase.Equal(dec("12")), "el stock no cambia al editar")
	assert.Equal(t, "MAR-16OZ", got.Code)

	movs, err := store.Repos().Movements.ListByProduct(ctx, scope.TenantID, p.ID, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, movs, 1, "editar no genera movimientos de kardex")
}

func TestUpdateProduct_Validaciones(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	a, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "A-1", Name: "Uno"})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "B-1", Name: "Dos"})
	require.NoError(t, err)

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{Code: ptr("b-1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "no puede tomar el código de otro producto")

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{Code: ptr("a-1"), Name: ptr("Uno bis")})
	assert.NoError(t, err, "conservar su propio código no es duplicado")

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{Code: ptr("  ")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{Name: ptr("")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{PrecioBaseCompra: ptr(dec("-1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{CategoryID: ptr("no-existe")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.UpdateProduct(ctx, tenant.New("otra", "admin"), a.ID, catalog.UpdateProductInput{Name: ptr("Ajeno")})
	assert.ErrorIs(t, err, domain.ErrNotFound, "no se edita un producto de otro tenant")

	require.NoError(t, uc.DeleteProduct(ctx, scope, a.ID))
	_, err = uc.UpdateProduct(ctx, scope, a.ID, catalog.UpdateProductInput{Name: ptr("Revive")})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un producto eliminado no se edita")
}

func TestUpdatePresentation_FactorPositivo(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "CAB-12", Name: "Cable"})
	require.NoError(t, err)
	other, err := uc.CreateProduct(ctx, scope, catalog.CreateProductInput{Code: "CAB-14", Name: "Cable delgado"})
	require.NoError(t, err)
	rollo, err := uc.AddPresentation(ctx, scope, p.ID, catalog.AddPresentationInput{Name: "Rollo", FactorConversion: dec("100")})
	require.NoError(t, err)

	_, err = uc.UpdatePresentation(ctx, scope, p.ID, rollo.ID, catalog.UpdatePresentationInput{FactorConversion: ptr(decimal.Zero)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el factor debe seguir siendo positivo")

	_, err = uc.UpdatePresentation(ctx, scope, other.ID, rollo.ID, catalog.UpdatePresentationInput{Name: ptr("Rollo")})
	assert.ErrorIs(t, err, domain.ErrNotFound, "la presentación debe pertenecer al producto")

	upd, err := uc.UpdatePresentation(ctx, scope, p.ID, rollo.ID, catalog.UpdatePresentationInput{
		Name: ptr("Rollo x50m"), FactorConversion: ptr(dec("50")), PrecioVenta: ptr(dec("150000")),
	})
	require.NoError(t, err)
	assert.True(t, upd.ToBase(dec("2")).Equal(dec("100")))

	list, err := uc.ListPresentations(ctx, scope, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rollo x50m", list[0].Name)
	assert.True(t, list[0].PrecioVenta.Equal(dec("150000")))
}

func TestListProducts_OrdenadoPorCodigo(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()
	for _, in := range []catalog.CreateProductInput{
		{Code: "C-3", Name: "Alicate"},
		{Code: "A-1", Name: "Tornillo"},
		{Code: "B-2", Name: "Martillo"},
	} {
		_, err := uc.CreateProduct(ctx, scope, in)
		require.NoError(t, err)
	}

	list, err := uc.ListProducts(ctx, scope, repository.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"A-1", "B-2", "C-3"}, []string{list[0].Code, list[1].Code, list[2].Code},
		"el orden es por código en memoria igual que en PostgreSQL")
}
