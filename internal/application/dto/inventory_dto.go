package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// AdjustStockRequest ajuste manual. Para kind=Ajuste, quantity es el stock final deseado.
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Kind      string          `json:"kind" validate:"required,oneof=Entrada Salida Ajuste Merma"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note" validate:"max=500"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Kind          string          `json:"kind"`
	Quantity      decimal.Decimal `json:"quantity"`
	StockBefore   decimal.Decimal `json:"stock_before"`
	StockAfter    decimal.Decimal `json:"stock_after"`
	Date          time.Time       `json:"date"`
	UserID        string          `json:"user_id"`
	Note          string          `json:"note,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
}

func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Kind:          string(m.Kind),
		Quantity:      m.Quantity,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		Date:          m.Date,
		UserID:        m.UserID,
		Note:          m.Note,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
	}
}
