// Package payments registra abonos contra ventas y compras dentro de la
// transacción del documento.
package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// Input datos de un abono. Method vacío equivale a Efectivo.
type Input struct {
	Amount    decimal.Decimal
	Method    entity.PaymentMethod
	Reference string
}

// Normalize redondea el monto a centavos, lo valida y aplica el medio de pago por defecto.
func (in Input) Normalize() (Input, error) {
	in.Amount = entity.RoundMoney(in.Amount)
	if !in.Amount.IsPositive() {
		return in, domain.Invalid("monto", "el monto del pago debe ser mayor a cero")
	}
	if in.Method == "" {
		in.Method = entity.MethodEfectivo
	}
	if !in.Method.Valid() {
		return in, domain.Invalid("metodo_pago", "medio de pago desconocido: %q", in.Method)
	}
	return in, nil
}

// SubLedger cuenta corriente de documentos.
type SubLedger struct {
	now func() time.Time
}

// NewSubLedger construye el sub-ledger de pagos.
func NewSubLedger() *SubLedger {
	return &SubLedger{now: time.Now}
}

// RecordSalePayment agrega un pago a la venta (ya bloqueada por el llamador), descuenta el
// saldo del cliente en ventas a crédito y completa la venta cuando queda saldada.
func (l *SubLedger) RecordSalePayment(ctx context.Context, r inventory.TxRepos, scope tenant.Scope, sale *entity.Sale, in Input) (*entity.Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if sale.Status == entity.SaleAnulada {
		return nil, domain.InvalidState("la venta %s está anulada", sale.InvoiceNumber)
	}
	if in.Amount.GreaterThan(sale.Outstanding()) {
		return nil, domain.Invalid("monto", "el pago (%s) excede el saldo pendiente (%s)",
			in.Amount.StringFixed(2), sale.Outstanding().StringFixed(2))
	}

	payment := &entity.Payment{
		ID:         uuid.New().String(),
		TenantID:   scope.TenantID,
		DocumentID: sale.ID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		Date:       l.now(),
		UserID:     scope.UserID,
	}
	if err := r.Sales.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	if sale.PaymentType == entity.PaymentCredito && sale.CustomerID != "" {
		customer, err := r.Customers.GetForUpdate(ctx, scope.TenantID, sale.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.NotFound("cliente")
		}
		if err := r.Customers.UpdateBalance(ctx, scope.TenantID, customer.ID, customer.SaldoActual.Sub(in.Amount)); err != nil {
			return nil, err
		}
	}

	sale.Paid = sale.Paid.Add(in.Amount)
	sale.Payments = append(sale.Payments, *payment)
	if sale.Paid.GreaterThanOrEqual(sale.Total) {
		sale.Status = entity.SaleCompletada
	}
	sale.UpdatedAt = payment.Date
	if err := r.Sales.Update(ctx, sale); err != nil {
		return nil, err
	}
	return payment, nil
}

// RecordPurchasePayment agrega un pago a la compra (ya bloqueada por el llamador).
// Es independiente de la recepción de mercancía.
func (l *SubLedger) RecordPurchasePayment(ctx context.Context, r inventory.TxRepos, scope tenant.Scope, purchase *entity.Purchase, in Input) (*entity.Payment, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if purchase.Deleted {
		return nil, domain.InvalidState("la compra fue eliminada")
	}
	if in.Amount.GreaterThan(purchase.Outstanding()) {
		return nil, domain.Invalid("monto", "el pago (%s) excede el saldo pendiente (%s)",
			in.Amount.StringFixed(2), purchase.Outstanding().StringFixed(2))
	}

	payment := &entity.Payment{
		ID:         uuid.New().String(),
		TenantID:   scope.TenantID,
		DocumentID: purchase.ID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		Date:       l.now(),
		UserID:     scope.UserID,
	}
	if err := r.Purchases.AddPayment(ctx, payment); err != nil {
		return nil, err
	}
	purchase.Paid = purchase.Paid.Add(in.Amount)
	purchase.Payments = append(purchase.Payments, *payment)
	purchase.UpdatedAt = payment.Date
	if err := r.Purchases.Update(ctx, purchase); err != nil {
		return nil, err
	}
	return payment, nil
}
