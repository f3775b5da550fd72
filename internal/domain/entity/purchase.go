package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus estados de una compra.
type PurchaseStatus string

const (
	PurchasePendiente PurchaseStatus = "Pendiente"
	PurchaseRecibida  PurchaseStatus = "Recibida"
)

// Purchase cabecera de compra a proveedor.
type Purchase struct {
	ID                    string
	TenantID              string
	SupplierID            string
	SupplierInvoiceNumber string
	Status                PurchaseStatus
	Date                  time.Time
	DueDate               *time.Time
	DiscountTotal         decimal.Decimal
	Total                 decimal.Decimal
	Paid                  decimal.Decimal
	UserID                string
	Notes                 string
	ReceivedBy            string
	ReceivedAt            *time.Time
	Deleted               bool
	Lines                 []PurchaseLine
	Payments              []Payment
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Outstanding saldo pendiente con el proveedor.
func (p *Purchase) Outstanding() decimal.Decimal {
	out := p.Total.Sub(p.Paid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// PurchaseLine detalle de compra.
type PurchaseLine struct {
	ID             string
	PurchaseID     string
	ProductID      string
	PresentationID string
	Quantity       decimal.Decimal
	QuantityBase   decimal.Decimal
	UnitCost       decimal.Decimal
	Discount       decimal.Decimal
	Subtotal       decimal.Decimal
}
