package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago.
type PaymentMethod string

const (
	MethodEfectivo      PaymentMethod = "Efectivo"
	MethodTransferencia PaymentMethod = "Transferencia"
	MethodTarjeta       PaymentMethod = "Tarjeta"
	MethodCheque        PaymentMethod = "Cheque"
	MethodOtro          PaymentMethod = "Otro"
)

// Valid indica si el medio de pago es conocido.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodEfectivo, MethodTransferencia, MethodTarjeta, MethodCheque, MethodOtro:
		return true
	}
	return false
}

// Payment abono contra una venta o una compra (DocumentID).
type Payment struct {
	ID         string
	TenantID   string
	DocumentID string
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	Date       time.Time
	UserID     string
}
