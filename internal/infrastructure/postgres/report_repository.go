package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas; las ventas anuladas no cuentan.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) SalesTotals(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, int, error) {
	var total decimal.Decimal
	var count int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales
		WHERE tenant_id = $1 AND status <> 'Anulada' AND date >= $2 AND date < $3`, tenantID, from, to).
		Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, translate(err, "sales totals")
	}
	return total, count, nil
}

func (r *ReportRepo) SalesByDay(ctx context.Context, tenantID string, from, to time.Time) ([]repository.DailySales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT date_trunc('day', date) AS day, SUM(total), COUNT(*) FROM sales
		WHERE tenant_id = $1 AND status <> 'Anulada' AND date >= $2 AND date < $3
		GROUP BY day ORDER BY day`, tenantID, from, to)
	if err != nil {
		return nil, translate(err, "sales by day")
	}
	defer rows.Close()
	var out []repository.DailySales
	for rows.Next() {
		var d repository.DailySales
		if err := rows.Scan(&d.Day, &d.Total, &d.Count); err != nil {
			return nil, translate(err, "sales by day")
		}
		out = append(out, d)
	}
	return out, translate(rows.Err(), "sales by day")
}

func (r *ReportRepo) TopProducts(ctx context.Context, tenantID string, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.code, p.name, SUM(l.quantity_base) AS qty, SUM(l.subtotal)
		FROM sale_lines l
		JOIN sales s ON s.tenant_id = l.tenant_id AND s.id = l.sale_id
		JOIN products p ON p.tenant_id = l.tenant_id AND p.id = l.product_id
		WHERE l.tenant_id = $1 AND s.status <> 'Anulada' AND s.date >= $2 AND s.date < $3
		GROUP BY p.id, p.code, p.name
		ORDER BY qty DESC, p.code
		LIMIT $4`, tenantID, from, to, limit)
	if err != nil {
		return nil, translate(err, "top products")
	}
	defer rows.Close()
	var out []repository.TopProduct
	for rows.Next() {
		var t repository.TopProduct
		if err := rows.Scan(&t.ProductID, &t.Code, &t.Name, &t.QuantityBase, &t.Revenue); err != nil {
			return nil, translate(err, "top products")
		}
		out = append(out, t)
	}
	return out, translate(rows.Err(), "top products")
}

// EstimatedProfit usa el costo promedio actual del producto, no el histórico de la fecha de venta.
func (r *ReportRepo) EstimatedProfit(ctx context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	var profit decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(l.subtotal - l.quantity_base * p.precio_base_compra), 0)
		FROM sale_lines l
		JOIN sales s ON s.tenant_id = l.tenant_id AND s.id = l.sale_id
		JOIN products p ON p.tenant_id = l.tenant_id AND p.id = l.product_id
		WHERE l.tenant_id = $1 AND s.status <> 'Anulada' AND s.date >= $2 AND s.date < $3`, tenantID, from, to).
		Scan(&profit)
	if err != nil {
		return decimal.Zero, translate(err, "estimated profit")
	}
	return profit, nil
}

func (r *ReportRepo) CountLowStock(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE tenant_id = $1 AND deleted = FALSE AND active = TRUE AND stock_base <= stock_minimo`, tenantID).Scan(&n)
	if err != nil {
		return 0, translate(err, "count low stock")
	}
	return n, nil
}
