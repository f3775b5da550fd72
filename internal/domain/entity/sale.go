package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType forma de pago de una venta.
type PaymentType string

const (
	PaymentContado PaymentType = "Contado"
	PaymentCredito PaymentType = "Credito"
)

// SaleStatus estados de una venta. Anulada es terminal.
type SaleStatus string

const (
	SalePendiente  SaleStatus = "Pendiente"
	SaleCompletada SaleStatus = "Completada"
	SaleAnulada    SaleStatus = "Anulada"
)

// Sale cabecera de venta con sus líneas y pagos.
type Sale struct {
	ID            string
	TenantID      string
	InvoiceNumber string
	CustomerID    string // vacío = consumidor final
	PaymentType   PaymentType
	Status        SaleStatus
	Date          time.Time
	DueDate       *time.Time
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	UserID        string
	Notes         string
	VoidedBy      string
	VoidedAt      *time.Time
	VoidReason    string
	Lines         []SaleLine
	Payments      []Payment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Outstanding saldo pendiente de la venta.
func (s *Sale) Outstanding() decimal.Decimal {
	out := s.Total.Sub(s.Paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// SaleLine detalle de venta.
type SaleLine struct {
	ID             string
	SaleID         string
	ProductID      string
	PresentationID string
	Quantity       decimal.Decimal
	QuantityBase   decimal.Decimal
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
	Subtotal       decimal.Decimal
}
