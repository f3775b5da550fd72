package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex en memoria (append-only).
type MovementRepo struct{ base }

// Create agrega el movimiento; el producto debe existir en el tenant.
func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.read(func(st *state) error {
		p, ok := st.products[m.ProductID]
		if !ok || p.TenantID != m.TenantID {
			return &domain.PersistenceError{Message: "el producto del movimiento no existe"}
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

// ListByProduct kardex del producto, más recientes primero.
func (r *MovementRepo) ListByProduct(_ context.Context, tenantID, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.TenantID != tenantID || m.ProductID != productID {
				continue
			}
			if f.From != nil && m.Date.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.Date.Before(*f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, f.Offset, f.Limit), err
}

// ListByReference movimientos originados por un documento, en orden de registro.
func (r *MovementRepo) ListByReference(_ context.Context, tenantID, refType, refID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.read(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID == tenantID && m.ReferenceType == refType && m.ReferenceID == refID {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

// Balances saldo y suma del kardex por producto, leídos bajo el mismo lock.
func (r *MovementRepo) Balances(_ context.Context, tenantID string) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	err := r.read(func(st *state) error {
		sums := map[string]decimal.Decimal{}
		for _, m := range st.movements {
			if m.TenantID == tenantID {
				sums[m.ProductID] = sums[m.ProductID].Add(m.Quantity)
			}
		}
		for _, p := range st.products {
			if p.TenantID != tenantID {
				continue
			}
			out = append(out, entity.StockBalance{
				ProductID:   p.ID,
				Code:        p.Code,
				Name:        p.Name,
				StockBase:   p.StockBase,
				LedgerTotal: sums[p.ID],
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}
