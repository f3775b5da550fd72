package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailySales total vendido en un día.
type DailySales struct {
	Day   time.Time       `json:"day"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// TopProduct producto más vendido en unidad base.
type TopProduct struct {
	ProductID    string          `json:"product_id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	QuantityBase decimal.Decimal `json:"quantity_base"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// ReportRepository consultas de solo lectura. Excluyen ventas anuladas.
type ReportRepository interface {
	SalesTotals(ctx context.Context, tenantID string, from, to time.Time) (total decimal.Decimal, count int, err error)
	SalesByDay(ctx context.Context, tenantID string, from, to time.Time) ([]DailySales, error)
	TopProducts(ctx context.Context, tenantID string, from, to time.Time, limit int) ([]TopProduct, error)
	// EstimatedProfit suma (precio neto por unidad base - PrecioBaseCompra) * cantidad base.
	EstimatedProfit(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error)
	CountLowStock(ctx context.Context, tenantID string) (int, error)
}
