// Package sales implementa el motor transaccional de ventas: creación con descuento de
// stock y control de crédito, abonos y anulación con reverso de stock y saldo.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// Config parámetros de negocio de ventas.
type Config struct {
	CreditDays    int    // plazo de vencimiento de ventas a crédito
	InvoiceFormat string // formato del número de factura, recibe el consecutivo
}

// DefaultConfig 15 días de crédito y facturas FAC-000001.
func DefaultConfig() Config {
	return Config{CreditDays: 15, InvoiceFormat: "FAC-%06d"}
}

// UseCase motor de ventas.
type UseCase struct {
	txRunner inventory.TxRunner
	ledger   *inventory.StockLedger
	payments *payments.SubLedger
	sales    repository.SaleRepository
	notifier inventory.ChangeNotifier
	cfg      Config
	now      func() time.Time
}

// NewUseCase construye el motor de ventas. notifier puede ser nil.
func NewUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.StockLedger,
	subLedger *payments.SubLedger,
	sales repository.SaleRepository,
	notifier inventory.ChangeNotifier,
	cfg Config,
) *UseCase {
	def := DefaultConfig()
	if cfg.CreditDays <= 0 {
		cfg.CreditDays = def.CreditDays
	}
	if cfg.InvoiceFormat == "" {
		cfg.InvoiceFormat = def.InvoiceFormat
	}
	return &UseCase{
		txRunner: txRunner,
		ledger:   ledger,
		payments: subLedger,
		sales:    sales,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// LineInput línea de venta. PresentationID vacío vende en unidad base.
// UnitPrice cero toma el precio de la presentación o el precio base del producto.
type LineInput struct {
	ProductID      string
	PresentationID string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
}

// CreateSaleInput datos de una venta nueva.
type CreateSaleInput struct {
	CustomerID     string
	PaymentType    entity.PaymentType
	Lines          []LineInput
	InitialPayment *payments.Input
	Notes          string
}

func (in *CreateSaleInput) validate() error {
	if len(in.Lines) == 0 {
		return domain.Invalid("lineas", "la venta debe tener al menos un producto")
	}
	if in.PaymentType == "" {
		in.PaymentType = entity.PaymentContado
	}
	if in.PaymentType != entity.PaymentContado && in.PaymentType != entity.PaymentCredito {
		return domain.Invalid("tipo_pago", "tipo de pago desconocido: %q", in.PaymentType)
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lineas[%d]", i)
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Invalid(field, "producto requerido")
		}
		if !l.Quantity.IsPositive() {
			return domain.Invalid(field, "la cantidad debe ser mayor a cero")
		}
		if l.UnitPrice.IsNegative() || l.Discount.IsNegative() {
			return domain.Invalid(field, "precio y descuento no pueden ser negativos")
		}
	}
	return nil
}

// CreateSale valida la venta, controla el crédito del cliente, asigna el número de factura,
// descuenta el stock de cada línea y registra el pago inicial, todo en una transacción.
func (uc *UseCase) CreateSale(ctx context.Context, scope tenant.Scope, in CreateSaleInput) (*entity.Sale, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		products, err := lockProducts(ctx, r, scope.TenantID, in.Lines)
		if err != nil {
			return err
		}

		now := uc.now()
		sale = &entity.Sale{
			ID:          uuid.New().String(),
			TenantID:    scope.TenantID,
			CustomerID:  in.CustomerID,
			PaymentType: in.PaymentType,
			Status:      entity.SaleCompletada,
			Date:        now,
			UserID:      scope.UserID,
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if in.PaymentType == entity.PaymentCredito {
			sale.Status = entity.SalePendiente
			due := now.AddDate(0, 0, uc.cfg.CreditDays)
			sale.DueDate = &due
		}

		for i, l := range in.Lines {
			line, err := buildLine(ctx, r, scope.TenantID, products[l.ProductID], l)
			if err != nil {
				return fmt.Errorf("lineas[%d]: %w", i, err)
			}
			line.SaleID = sale.ID
			sale.Lines = append(sale.Lines, line)
			sale.DiscountTotal = sale.DiscountTotal.Add(line.Discount)
			sale.Total = sale.Total.Add(line.Subtotal)
		}

		if err := uc.chargeCustomer(ctx, r, scope, sale); err != nil {
			return err
		}

		seq, err := r.Sequences.Next(ctx, scope.TenantID, repository.SequenceSaleInvoice)
		if err != nil {
			return err
		}
		sale.InvoiceNumber = fmt.Sprintf(uc.cfg.InvoiceFormat, seq)

		if err := r.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for i := range sale.Lines {
			line := &sale.Lines[i]
			if err := r.Sales.AddLine(ctx, scope.TenantID, line); err != nil {
				return err
			}
			if _, err := uc.ledger.ApplyMovement(ctx, r, scope, inventory.MovementInput{
				ProductID:     line.ProductID,
				Kind:          entity.MovementSalida,
				Quantity:      line.QuantityBase,
				Note:          "Venta " + sale.InvoiceNumber,
				ReferenceType: entity.RefVenta,
				ReferenceID:   sale.ID,
			}); err != nil {
				return err
			}
		}

		if in.InitialPayment != nil && in.InitialPayment.Amount.IsPositive() {
			if _, err := uc.payments.RecordSalePayment(ctx, r, scope, sale, *in.InitialPayment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return sale, nil
}

// chargeCustomer verifica que el cliente exista y, en ventas a crédito, que el nuevo saldo
// no supere su límite; luego carga el total a su cuenta.
func (uc *UseCase) chargeCustomer(ctx context.Context, r inventory.TxRepos, scope tenant.Scope, sale *entity.Sale) error {
	if sale.CustomerID == "" {
		return nil
	}
	customer, err := r.Customers.GetForUpdate(ctx, scope.TenantID, sale.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil || customer.Deleted {
		return domain.NotFound("cliente")
	}
	if sale.PaymentType != entity.PaymentCredito {
		return nil
	}
	attempted := customer.SaldoActual.Add(sale.Total)
	if customer.LimiteCredito.IsPositive() && attempted.GreaterThan(customer.LimiteCredito) {
		return &domain.CreditLimitError{
			CustomerID: customer.ID,
			Limit:      customer.LimiteCredito,
			Attempted:  attempted,
		}
	}
	return r.Customers.UpdateBalance(ctx, scope.TenantID, customer.ID, attempted)
}

// lockProducts bloquea los productos de la venta en orden de ID y rechaza los eliminados.
func lockProducts(ctx context.Context, r inventory.TxRepos, tenantID string, lines []LineInput) (map[string]*entity.Product, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := inventory.LockProducts(ctx, r, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if products[id].Deleted {
			return nil, domain.NotFound("producto " + id)
		}
	}
	return products, nil
}

// buildLine resuelve la presentación, el precio y la cantidad en unidad base de una línea.
func buildLine(ctx context.Context, r inventory.TxRepos, tenantID string, p *entity.Product, in LineInput) (entity.SaleLine, error) {
	price := in.UnitPrice
	qtyBase := in.Quantity
	if in.PresentationID != "" {
		pres, err := r.Presentations.GetByID(ctx, tenantID, in.PresentationID)
		if err != nil {
			return entity.SaleLine{}, err
		}
		if pres == nil || pres.ProductID != p.ID {
			return entity.SaleLine{}, domain.NotFound("presentación")
		}
		qtyBase = pres.ToBase(in.Quantity)
		if price.IsZero() {
			price = pres.PrecioVenta
		}
	} else if price.IsZero() {
		price = p.PrecioBaseVenta
	}

	gross := entity.RoundMoney(in.Quantity.Mul(price))
	discount := entity.RoundMoney(in.Discount)
	if discount.GreaterThan(gross) {
		return entity.SaleLine{}, domain.Invalid("descuento", "el descuento no puede superar el valor de la línea")
	}
	return entity.SaleLine{
		ID:             uuid.New().String(),
		ProductID:      p.ID,
		PresentationID: in.PresentationID,
		Quantity:       in.Quantity,
		QuantityBase:   qtyBase,
		UnitPrice:      price,
		Discount:       discount,
		Subtotal:       gross.Sub(discount),
	}, nil
}

// RegisterPayment agrega un abono a la venta. Una venta a crédito queda Completada
// cuando la suma de abonos alcanza el total.
func (uc *UseCase) RegisterPayment(ctx context.Context, scope tenant.Scope, saleID string, in payments.Input) (*entity.Sale, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(ctx, scope.TenantID, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NotFound("venta")
		}
		_, err = uc.payments.RecordSalePayment(ctx, r, scope, sale, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return sale, nil
}

// VoidSale anula la venta: devuelve el stock de cada línea con una Entrada nueva (las
// salidas originales no se tocan) y, en ventas a crédito, descuenta el saldo pendiente
// de la cuenta del cliente.
func (uc *UseCase) VoidSale(ctx context.Context, scope tenant.Scope, saleID, reason string) (*entity.Sale, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("motivo", "el motivo de anulación es obligatorio")
	}

	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(ctx, scope.TenantID, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NotFound("venta")
		}
		if sale.Status == entity.SaleAnulada {
			return domain.InvalidState("la venta %s ya está anulada", sale.InvoiceNumber)
		}

		ids := make([]string, 0, len(sale.Lines))
		for _, line := range sale.Lines {
			ids = append(ids, line.ProductID)
		}
		if _, err := inventory.LockProducts(ctx, r, scope.TenantID, ids); err != nil {
			return err
		}

		outstanding := sale.Outstanding()
		now := uc.now()
		sale.Status = entity.SaleAnulada
		sale.VoidedBy = scope.UserID
		sale.VoidedAt = &now
		sale.VoidReason = reason
		sale.UpdatedAt = now
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}

		if sale.PaymentType == entity.PaymentCredito && sale.CustomerID != "" {
			customer, err := r.Customers.GetForUpdate(ctx, scope.TenantID, sale.CustomerID)
			if err != nil {
				return err
			}
			if customer == nil {
				return domain.NotFound("cliente")
			}
			if err := r.Customers.UpdateBalance(ctx, scope.TenantID, customer.ID, customer.SaldoActual.Sub(outstanding)); err != nil {
				return err
			}
		}

		for _, line := range sale.Lines {
			if _, err := uc.ledger.ApplyMovement(ctx, r, scope, inventory.MovementInput{
				ProductID:     line.ProductID,
				Kind:          entity.MovementEntrada,
				Quantity:      line.QuantityBase,
				Note:          "Anulación venta " + sale.InvoiceNumber + ": " + reason,
				ReferenceType: entity.RefAnulacionVenta,
				ReferenceID:   sale.ID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return sale, nil
}

// GetSale devuelve la venta con líneas y pagos.
func (uc *UseCase) GetSale(ctx context.Context, scope tenant.Scope, saleID string) (*entity.Sale, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	sale, err := uc.sales.GetByID(ctx, scope.TenantID, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NotFound("venta")
	}
	return sale, nil
}

// ListSales historial de ventas, más recientes primero.
func (uc *UseCase) ListSales(ctx context.Context, scope tenant.Scope, f repository.DocumentFilter) ([]*entity.Sale, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return uc.sales.List(ctx, scope.TenantID, f)
}
