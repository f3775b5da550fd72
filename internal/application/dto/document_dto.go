package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// PaymentRequest abono a una venta o compra. method vacío = Efectivo.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"omitempty,oneof=Efectivo Transferencia Tarjeta Cheque Otro"`
	Reference string          `json:"reference" validate:"max=100"`
}

// SaleLineRequest línea de venta. unit_price cero usa el precio de la presentación o del producto.
type SaleLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	PresentationID string          `json:"presentation_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Discount       decimal.Decimal `json:"discount"`
}

// CreateSaleRequest venta nueva.
type CreateSaleRequest struct {
	CustomerID     string            `json:"customer_id"`
	PaymentType    string            `json:"payment_type" validate:"omitempty,oneof=Contado Credito"`
	Lines          []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	InitialPayment *PaymentRequest   `json:"initial_payment" validate:"omitempty"`
	Notes          string            `json:"notes" validate:"max=500"`
}

// VoidSaleRequest anulación.
type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// PurchaseLineRequest línea de compra.
type PurchaseLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	PresentationID string          `json:"presentation_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Discount       decimal.Decimal `json:"discount"`
}

// CreatePurchaseRequest compra nueva. Fechas en RFC3339.
type CreatePurchaseRequest struct {
	SupplierID            string                `json:"supplier_id" validate:"required"`
	SupplierInvoiceNumber string                `json:"supplier_invoice_number" validate:"max=50"`
	Date                  *time.Time            `json:"date"`
	DueDate               *time.Time            `json:"due_date"`
	Total                 decimal.Decimal       `json:"total"`
	Lines                 []PurchaseLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes                 string                `json:"notes" validate:"max=500"`
}

// LineResponse línea de venta o compra; unit_price es el costo unitario en compras.
type LineResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	PresentationID string          `json:"presentation_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityBase   decimal.Decimal `json:"quantity_base"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Discount       decimal.Decimal `json:"discount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Date      time.Time       `json:"date"`
	UserID    string          `json:"user_id"`
}

// SaleResponse venta con líneas y pagos.
type SaleResponse struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	CustomerID    string            `json:"customer_id,omitempty"`
	PaymentType   string            `json:"payment_type"`
	Status        string            `json:"status"`
	Date          time.Time         `json:"date"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	DiscountTotal decimal.Decimal   `json:"discount_total"`
	Total         decimal.Decimal   `json:"total"`
	Paid          decimal.Decimal   `json:"paid"`
	Outstanding   decimal.Decimal   `json:"outstanding"`
	UserID        string            `json:"user_id"`
	Notes         string            `json:"notes,omitempty"`
	VoidedBy      string            `json:"voided_by,omitempty"`
	VoidedAt      *time.Time        `json:"voided_at,omitempty"`
	VoidReason    string            `json:"void_reason,omitempty"`
	Lines         []LineResponse    `json:"lines,omitempty"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

// PurchaseResponse compra con líneas y pagos.
type PurchaseResponse struct {
	ID                    string            `json:"id"`
	SupplierID            string            `json:"supplier_id"`
	SupplierInvoiceNumber string            `json:"supplier_invoice_number,omitempty"`
	Status                string            `json:"status"`
	Date                  time.Time         `json:"date"`
	DueDate               *time.Time        `json:"due_date,omitempty"`
	DiscountTotal         decimal.Decimal   `json:"discount_total"`
	Total                 decimal.Decimal   `json:"total"`
	Paid                  decimal.Decimal   `json:"paid"`
	Outstanding           decimal.Decimal   `json:"outstanding"`
	UserID                string            `json:"user_id"`
	Notes                 string            `json:"notes,omitempty"`
	ReceivedBy            string            `json:"received_by,omitempty"`
	ReceivedAt            *time.Time        `json:"received_at,omitempty"`
	Lines                 []LineResponse    `json:"lines,omitempty"`
	Payments              []PaymentResponse `json:"payments,omitempty"`
}

func fromPayments(ps []entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, PaymentResponse{
			ID: p.ID, Amount: p.Amount, Method: string(p.Method), Reference: p.Reference, Date: p.Date, UserID: p.UserID,
		})
	}
	return out
}

// FromSale mapea la venta a la respuesta.
func FromSale(s *entity.Sale) SaleResponse {
	lines := make([]LineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, LineResponse{
			ID: l.ID, ProductID: l.ProductID, PresentationID: l.PresentationID, Quantity: l.Quantity,
			QuantityBase: l.QuantityBase, UnitPrice: l.UnitPrice, Discount: l.Discount, Subtotal: l.Subtotal,
		})
	}
	return SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		PaymentType:   string(s.PaymentType),
		Status:        string(s.Status),
		Date:          s.Date,
		DueDate:       s.DueDate,
		DiscountTotal: s.DiscountTotal,
		Total:         s.Total,
		Paid:          s.Paid,
		Outstanding:   s.Outstanding(),
		UserID:        s.UserID,
		Notes:         s.Notes,
		VoidedBy:      s.VoidedBy,
		VoidedAt:      s.VoidedAt,
		VoidReason:    s.VoidReason,
		Lines:         lines,
		Payments:      fromPayments(s.Payments),
	}
}

// FromPurchase mapea la compra a la respuesta.
func FromPurchase(p *entity.Purchase) PurchaseResponse {
	lines := make([]LineResponse, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, LineResponse{
			ID: l.ID, ProductID: l.ProductID, PresentationID: l.PresentationID, Quantity: l.Quantity,
			QuantityBase: l.QuantityBase, UnitPrice: l.UnitCost, Discount: l.Discount, Subtotal: l.Subtotal,
		})
	}
	return PurchaseResponse{
		ID:                    p.ID,
		SupplierID:            p.SupplierID,
		SupplierInvoiceNumber: p.SupplierInvoiceNumber,
		Status:                string(p.Status),
		Date:                  p.Date,
		DueDate:               p.DueDate,
		DiscountTotal:         p.DiscountTotal,
		Total:                 p.Total,
		Paid:                  p.Paid,
		Outstanding:           p.Outstanding(),
		UserID:                p.UserID,
		Notes:                 p.Notes,
		ReceivedBy:            p.ReceivedBy,
		ReceivedAt:            p.ReceivedAt,
		Lines:                 lines,
		Payments:              fromPayments(p.Payments),
	}
}
