package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var scope = tenant.New("ferreteria-centro", "cajero-1")

type fixture struct {
	store *memory.Store
	svc   *bootstrap.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	return &fixture{store: store, svc: bootstrap.NewServices(bootstrap.MemoryStores(store), nil, sales.DefaultConfig())}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) product(t *testing.T, code, price, stock string) *entity.Product {
	t.Helper()
	p, err := f.svc.Catalog.CreateProduct(context.Background(), scope, catalog.CreateProductInput{
		Code:            code,
		Name:            "Producto " + code,
		PrecioBaseVenta: dec(price),
		InitialStock:    dec(stock),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) customer(t *testing.T, limit, balance string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{
		ID:             uuid.New().String(),
		TenantID:       scope.TenantID,
		DocumentType:   "CC",
		DocumentNumber: uuid.New().String()[:10],
		Name:           "Cliente crédito",
		LimiteCredito:  dec(limit),
		SaldoActual:    dec(balance),
		Active:         true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	require.NoError(t, f.store.Repos().Customers.Create(context.Background(), c))
	return c
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), scope.TenantID, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockBase
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	c, err := f.store.Repos().Customers.GetByID(context.Background(), scope.TenantID, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.SaldoActual
}

func (f *fixture) movements(t *testing.T, productID string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.store.Repos().Movements.ListByProduct(context.Background(), scope.TenantID, productID, repository.MovementFilter{})
	require.NoError(t, err)
	return movs
}

func line(productID, qty string) sales.LineInput {
	return sales.LineInput{ProductID: productID, Quantity: dec(qty)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_DescuentaStockYNumeraFactura(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "TOR-001", "150", "100")
	ctx := context.Background()

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "12")}})
	require.NoError(t, err)

	assert.Equal(t, "FAC-000001", sale.InvoiceNumber)
	assert.Equal(t, entity.SaleCompletada, sale.Status, "una venta de contado queda completada")
	assert.True(t, sale.Total.Equal(dec("1800")), "12 x 150")
	assert.True(t, f.stock(t, p.ID).Equal(dec("88")))

	movs := f.movements(t, p.ID)
	require.Len(t, movs, 2, "stock inicial + salida de la venta")
	assert.Equal(t, entity.MovementSalida, movs[0].Kind)
	assert.True(t, movs[0].Quantity.Equal(dec("-12")), "las salidas se guardan con signo negativo")
	assert.Equal(t, sale.ID, movs[0].ReferenceID)

	second, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "1")}})
	require.NoError(t, err)
	assert.Equal(t, "FAC-000002", second.InvoiceNumber)
}

func TestCreateSale_VendeExactamenteElStockDisponible(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "MAR-001", "28000", "5")

	_, err := f.svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "5")}})
	require.NoError(t, err, "vender todo el stock es válido")
	assert.True(t, f.stock(t, p.ID).IsZero())
}

func TestCreateSale_FalloEnTerceraLineaNoDejaEfectos(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", "10", "10")
	b := f.product(t, "B-1", "10", "10")
	c := f.product(t, "C-1", "10", "1")

	_, err := f.svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{Lines: []sales.LineInput{
		line(a.ID, "2"), line(b.ID, "2"), line(c.ID, "5"),
	}})
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr), "debe ser un InsufficientStockError")
	assert.Equal(t, c.ID, stockErr.ProductID)
	assert.True(t, stockErr.Available.Equal(dec("1")))
	assert.True(t, stockErr.Requested.Equal(dec("5")))

	assert.True(t, f.stock(t, a.ID).Equal(dec("10")), "la línea 1 se revierte")
	assert.True(t, f.stock(t, b.ID).Equal(dec("10")), "la línea 2 se revierte")
	assert.Len(t, f.movements(t, a.ID), 1, "solo queda el movimiento de stock inicial")

	sale, err := f.svc.Sales.CreateSale(context.Background(), scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(a.ID, "1")}})
	require.NoError(t, err)
	assert.Equal(t, "FAC-000001", sale.InvoiceNumber, "la venta fallida no consume consecutivo")
}

func TestCreateSale_Validaciones(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "VAL-1", "10", "10")
	ctx := context.Background()

	_, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "0")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{Lines: []sales.LineInput{line("no-existe", "1")}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Sales.CreateSale(ctx, tenant.New("", "cajero-1"), sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "1")}})
	assert.ErrorIs(t, err, domain.ErrTenantRequired, "sin tenant no hay venta")

	_, err = f.svc.Sales.CreateSale(ctx, tenant.New("otra-ferreteria", "cajero-1"), sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "1")}})
	assert.ErrorIs(t, err, domain.ErrNotFound, "un producto de otro tenant no existe")
}

// ──────────────────────────────────────────────────────────────────────────────
// Crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_LimiteDeCredito(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "CRE-1", "1", "100")
	c := f.customer(t, "100", "90")
	ctx := context.Background()

	_, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		CustomerID: c.ID, PaymentType: entity.PaymentCredito, Lines: []sales.LineInput{line(p.ID, "11")},
	})
	var creditErr *domain.CreditLimitError
	require.True(t, errors.As(err, &creditErr), "90 + 11 supera el límite de 100")
	assert.True(t, creditErr.Attempted.Equal(dec("101")))
	assert.True(t, f.balance(t, c.ID).Equal(dec("90")), "el saldo no cambia")
	assert.True(t, f.stock(t, p.ID).Equal(dec("100")), "el stock no cambia")

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		CustomerID: c.ID, PaymentType: entity.PaymentCredito, Lines: []sales.LineInput{line(p.ID, "10")},
	})
	require.NoError(t, err, "90 + 10 alcanza exactamente el límite")
	assert.Equal(t, entity.SalePendiente, sale.Status)
	require.NotNil(t, sale.DueDate)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 15), *sale.DueDate, time.Minute)
	assert.True(t, f.balance(t, c.ID).Equal(dec("100")))
}

func TestRegisterPayment_CompletaLaVenta(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "ABO-1", "10", "10")
	c := f.customer(t, "0", "0")
	ctx := context.Background()

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		CustomerID: c.ID, PaymentType: entity.PaymentCredito, Lines: []sales.LineInput{line(p.ID, "10")},
	})
	require.NoError(t, err)
	assert.True(t, f.balance(t, c.ID).Equal(dec("100")), "límite cero es sin límite")

	sale, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("40")})
	require.NoError(t, err)
	assert.Equal(t, entity.SalePendiente, sale.Status)
	assert.True(t, f.balance(t, c.ID).Equal(dec("60")))

	_, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("61")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se puede pagar más que el saldo")

	sale, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("60"), Method: entity.MethodTransferencia})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompletada, sale.Status)
	assert.True(t, f.balance(t, c.ID).IsZero())

	stored, err := f.svc.Sales.GetSale(ctx, scope, sale.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 2)
	assert.True(t, stored.Outstanding().IsZero())
}

func TestCreateSale_CantidadFraccionariaRedondeaACentavos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "CAB-12", "1.11", "50")
	c := f.customer(t, "0", "0")
	ctx := context.Background()

	// 1.2345 m x 1.11 = 1.370295
	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		CustomerID:     c.ID,
		PaymentType:    entity.PaymentCredito,
		Lines:          []sales.LineInput{line(p.ID, "1.2345")},
		InitialPayment: &payments.Input{Amount: dec("1.37")},
	})
	require.NoError(t, err)

	assert.Equal(t, "1.37", sale.Total.String(), "el total queda en centavos")
	assert.Equal(t, "1.37", sale.Lines[0].Subtotal.String())
	assert.Equal(t, entity.SaleCompletada, sale.Status, "pagar el total impreso completa la venta")
	assert.True(t, sale.Outstanding().IsZero())
	assert.True(t, f.balance(t, c.ID).IsZero(), "el saldo del cliente no arrastra residuos")
	assert.True(t, f.stock(t, p.ID).Equal(dec("48.7655")), "el stock conserva los decimales de la cantidad")
}

func TestRegisterPayment_MontoSeRedondeaACentavos(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "RED-1", "10", "10")
	ctx := context.Background()

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		PaymentType: entity.PaymentCredito, Lines: []sales.LineInput{line(p.ID, "1")},
	})
	require.NoError(t, err)

	_, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("0.004")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un monto que redondea a cero se rechaza")

	sale, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("9.999")})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleCompletada, sale.Status, "9.999 se registra como 10.00")
	assert.Equal(t, "10", sale.Paid.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestVoidSale_DevuelveStockYSaldo(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "ANU-1", "10", "20")
	c := f.customer(t, "0", "0")
	ctx := context.Background()

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{
		CustomerID: c.ID, PaymentType: entity.PaymentCredito, Lines: []sales.LineInput{line(p.ID, "5")},
	})
	require.NoError(t, err)
	_, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("20")})
	require.NoError(t, err)
	require.True(t, f.balance(t, c.ID).Equal(dec("30")))

	voided, err := f.svc.Sales.VoidSale(ctx, scope, sale.ID, "error de digitación")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleAnulada, voided.Status)
	assert.Equal(t, scope.UserID, voided.VoidedBy)
	require.NotNil(t, voided.VoidedAt)

	assert.True(t, f.stock(t, p.ID).Equal(dec("20")), "la anulación devuelve las unidades")
	assert.True(t, f.balance(t, c.ID).IsZero(), "se descuenta el saldo pendiente")

	movs := f.movements(t, p.ID)
	require.Len(t, movs, 3, "inicial, salida y entrada de anulación")
	assert.Equal(t, entity.MovementEntrada, movs[0].Kind)
	assert.Equal(t, entity.RefAnulacionVenta, movs[0].ReferenceType)
	assert.Equal(t, entity.MovementSalida, movs[1].Kind, "la salida original se conserva")
}

func TestVoidSale_DobleAnulacion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "DOB-1", "10", "5")
	ctx := context.Background()

	sale, err := f.svc.Sales.CreateSale(ctx, scope, sales.CreateSaleInput{Lines: []sales.LineInput{line(p.ID, "2")}})
	require.NoError(t, err)
	_, err = f.svc.Sales.VoidSale(ctx, scope, sale.ID, "devolución")
	require.NoError(t, err)

	_, err = f.svc.Sales.VoidSale(ctx, scope, sale.ID, "devolución")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.True(t, f.stock(t, p.ID).Equal(dec("5")), "la segunda anulación no devuelve stock otra vez")

	_, err = f.svc.Sales.RegisterPayment(ctx, scope, sale.ID, payments.Input{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "no se abona a una venta anulada")
}

func TestVoidSale_MotivoObligatorio(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sales.VoidSale(context.Background(), scope, "cualquiera", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
