package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo reportes calculados sobre el estado en memoria.
type ReportRepo struct{ base }

func inRange(t time.Time, f repository.DocumentFilter) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.Before(*f.To) {
		return false
	}
	return true
}

// validSales ventas no anuladas del tenant en [from, to).
func (st *state) validSales(tenantID string, from, to time.Time) map[string]entity.Sale {
	out := map[string]entity.Sale{}
	for id, s := range st.sales {
		if s.TenantID == tenantID && s.Status != entity.SaleAnulada && !s.Date.Before(from) && s.Date.Before(to) {
			out[id] = s
		}
	}
	return out
}

// SalesTotals total y cantidad de ventas.
func (r *ReportRepo) SalesTotals(_ context.Context, tenantID string, from, to time.Time) (decimal.Decimal, int, error) {
	var total decimal.Decimal
	var count int
	err := r.read(func(st *state) error {
		for _, s := range st.validSales(tenantID, from, to) {
			total = total.Add(s.Total)
			count++
		}
		return nil
	})
	return total, count, err
}

// SalesByDay totales por día calendario.
func (r *ReportRepo) SalesByDay(_ context.Context, tenantID string, from, to time.Time) ([]repository.DailySales, error) {
	byDay := map[time.Time]*repository.DailySales{}
	err := r.read(func(st *state) error {
		for _, s := range st.validSales(tenantID, from, to) {
			d := s.Date.In(from.Location())
			day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, from.Location())
			row, ok := byDay[day]
			if !ok {
				row = &repository.DailySales{Day: day}
				byDay[day] = row
			}
			row.Total = row.Total.Add(s.Total)
			row.Count++
		}
		return nil
	})
	out := make([]repository.DailySales, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, err
}

// TopProducts productos con mayor cantidad base vendida.
func (r *ReportRepo) TopProducts(_ context.Context, tenantID string, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	agg := map[string]*repository.TopProduct{}
	err := r.read(func(st *state) error {
		sales := st.validSales(tenantID, from, to)
		for _, l := range st.saleLines {
			if _, ok := sales[l.SaleID]; !ok {
				continue
			}
			row, ok := agg[l.ProductID]
			if !ok {
				p := st.products[l.ProductID]
				row = &repository.TopProduct{ProductID: l.ProductID, Code: p.Code, Name: p.Name}
				agg[l.ProductID] = row
			}
			row.QuantityBase = row.QuantityBase.Add(l.QuantityBase)
			row.Revenue = row.Revenue.Add(l.Subtotal)
		}
		return nil
	})
	out := make([]repository.TopProduct, 0, len(agg))
	for _, row := range agg {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantityBase.Equal(out[j].QuantityBase) {
			return out[i].Code < out[j].Code
		}
		return out[i].QuantityBase.GreaterThan(out[j].QuantityBase)
	})
	return page(out, 0, limit), err
}

// EstimatedProfit suma (subtotal - cantidad base * costo base) por línea.
func (r *ReportRepo) EstimatedProfit(_ context.Context, tenantID string, from, to time.Time) (decimal.Decimal, error) {
	var profit decimal.Decimal
	err := r.read(func(st *state) error {
		sales := st.validSales(tenantID, from, to)
		for _, l := range st.saleLines {
			if _, ok := sales[l.SaleID]; !ok {
				continue
			}
			cost := l.QuantityBase.Mul(st.products[l.ProductID].PrecioBaseCompra)
			profit = profit.Add(l.Subtotal.Sub(cost))
		}
		return nil
	})
	return profit, err
}

// CountLowStock productos activos en o bajo su mínimo.
func (r *ReportRepo) CountLowStock(_ context.Context, tenantID string) (int, error) {
	var n int
	err := r.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID && !p.Deleted && p.Active && p.IsLowStock() {
				n++
			}
		}
		return nil
	})
	return n, err
}
