package bootstrap_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/purchases"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Registro de bloqueos
// ──────────────────────────────────────────────────────────────────────────────

type lockLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *lockLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *lockLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// firstLocks orden del primer bloqueo de cada fila; volver a bloquear una fila propia no espera.
func (l *lockLog) firstLocks() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

type recordingProducts struct {
	repository.ProductRepository
	log *lockLog
}

func (r recordingProducts) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	r.log.add("producto:" + id)
	return r.ProductRepository.GetForUpdate(ctx, tenantID, id)
}

type recordingCustomers struct {
	repository.CustomerRepository
	log *lockLog
}

func (r recordingCustomers) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	r.log.add("cliente:" + id)
	return r.CustomerRepository.GetForUpdate(ctx, tenantID, id)
}

type recordingRunner struct {
	inner inventory.TxRunner
	log   *lockLog
}

func (rr recordingRunner) Run(ctx context.Context, fn func(ctx context.Context, r inventory.TxRepos) error) error {
	return rr.inner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		r.Products = recordingProducts{ProductRepository: r.Products, log: rr.log}
		r.Customers = recordingCustomers{CustomerRepository: r.Customers, log: rr.log}
		return fn(ctx, r)
	})
}

var scope = tenant.New("ferreteria-sur", "cajero-2")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type lockFixture struct {
	stores bootstrap.Stores
	svc    *bootstrap.Services
	log    *lockLog
}

func newLockFixture(t *testing.T) *lockFixture {
	t.Helper()
	log := &lockLog{}
	st := bootstrap.MemoryStores(memory.New())
	st.Tx = recordingRunner{inner: st.Tx, log: log}
	return &lockFixture{stores: st, svc: bootstrap.NewServices(st, nil, sales.DefaultConfig()), log: log}
}

// productsDesc crea dos productos y los devuelve con el ID mayor primero.
func (f *lockFixture) productsDesc(t *testing.T) (hi, lo *entity.Product) {
	t.Helper()
	var ps []*entity.Product
	for _, code := range []string{"ORD-A", "ORD-B"} {
		p, err := f.svc.Catalog.CreateProduct(context.Background(), scope, catalog.CreateProductInput{
			Code: code, Name: "Producto " + code, PrecioBaseVenta: dec("10"), InitialStock: dec("50"),
		})
		require.NoError(t, err)
		ps = append(ps, p)
	}
	if ps[0].ID < ps[1].ID {
		return ps[1], ps[0]
	}
	return ps[0], ps[1]
}

func (f *lockFixture) customer(t *testing.T) *entity.Customer {
	t.Helper()
	c := &entity.Customer{
		ID: uuid.New().String(), TenantID: scope.TenantID, DocumentType: "CC",
		DocumentNumber: "1020304050", Name: "Cliente crédito", Active: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, f.stores.Repos.Customers.Create(context.Background(), c))
	return c
}

func productLocks(entries []string) []string {
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e, "producto:") {
			out = append(out, e)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Orden de bloqueo: documento, productos por ID ascendente, cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestReceivePurchase_BloqueaProductosEnOrdenAscendente(t *testing.T) {
	f := newLockFixture(t)
	hi, lo := f.productsDesc(t)
	supplier := &entity.Supplier{
		ID: uuid.New().String(), TenantID: scope.TenantID, DocumentType: "NIT",
		DocumentNumber: "900555111", BusinessName: "Ferretería Mayorista", Active: true,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, f.stores.Repos.Suppliers.Create(context.Background(), supplier))

	p, err := f.svc.Purchases.CreatePurchase(context.Background(), scope, purchases.CreatePurchaseInput{
		SupplierID: supplier.ID,
		Lines: []purchases.LineInput{
			{ProductID: hi.ID, Quantity: dec("1"), UnitCost: dec("5")},
			{ProductID: lo.ID, Quantity: dec("1"), UnitCost: dec("5")},
		},
	})
	require.NoError(t, err)

	f.log.reset()
	_, err = f.svc.Purchases.ReceivePurchase(context.Background(), scope, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"producto:" + lo.ID, "producto:" + hi.ID}, productLocks(f.log.firstLocks()),
		"las líneas vienen en orden descendente pero se bloquean por ID ascendente")
}

func TestCreateSale_BloqueaProductosAntesQueCliente(t *testing.T) {
	f := newLockFixture(t)
	hi, lo := f.productsDesc(t)
	c := f.customer(t)

	f.log.reset()
	_, err := f.svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{
		CustomerID:  c.ID,
		PaymentType: entity.PaymentCredito,
		Lines: []sales.LineInput{
			{ProductID: hi.ID, Quantity: dec("1")},
			{ProductID: lo.ID, Quantity: dec("1")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"producto:" + lo.ID, "producto:" + hi.ID, "cliente:" + c.ID}, f.log.firstLocks())
}

func TestVoidSale_BloqueaProductosAntesQueCliente(t *testing.T) {
	f := newLockFixture(t)
	hi, lo := f.productsDesc(t)
	c := f.customer(t)

	sale, err := f.svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{
		CustomerID:  c.ID,
		PaymentType: entity.PaymentCredito,
		Lines: []sales.LineInput{
			{ProductID: hi.ID, Quantity: dec("1")},
			{ProductID: lo.ID, Quantity: dec("1")},
		},
	})
	require.NoError(t, err)

	f.log.reset()
	_, err = f.svc.Sales.VoidSale(context.Background(), scope, sale.ID, "cliente desistió")
	require.NoError(t, err)

	assert.Equal(t, []string{"producto:" + lo.ID, "producto:" + hi.ID, "cliente:" + c.ID}, f.log.firstLocks(),
		"la anulación bloquea en el mismo orden que la venta")
}
