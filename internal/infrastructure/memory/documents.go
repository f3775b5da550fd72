package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// SaleRepo ventas en memoria.
type SaleRepo struct{ base }

// Create guarda la cabecera; el número de factura es único por tenant.
func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	if s.TenantID == "" {
		return domain.ErrTenantRequired
	}
	return r.read(func(st *state) error {
		for _, existing := range st.sales {
			if existing.TenantID == s.TenantID && existing.InvoiceNumber == s.InvoiceNumber {
				return domain.ErrDuplicate
			}
		}
		if s.CustomerID != "" {
			c, ok := st.customers[s.CustomerID]
			if !ok || c.TenantID != s.TenantID {
				return &domain.PersistenceError{Message: "el cliente seleccionado no es válido o ha sido eliminado"}
			}
		}
		h := *s
		h.Lines, h.Payments = nil, nil
		st.sales[s.ID] = h
		return nil
	})
}

// AddLine guarda una línea de la venta.
func (r *SaleRepo) AddLine(_ context.Context, tenantID string, l *entity.SaleLine) error {
	return r.read(func(st *state) error {
		s, ok := st.sales[l.SaleID]
		if !ok || s.TenantID != tenantID {
			return &domain.PersistenceError{Message: "la venta de la línea no existe"}
		}
		if p, ok := st.products[l.ProductID]; !ok || p.TenantID != tenantID {
			return &domain.PersistenceError{Message: "el producto seleccionado no es válido o ha sido eliminado"}
		}
		st.saleLines = append(st.saleLines, *l)
		return nil
	})
}

// AddPayment guarda un pago de la venta.
func (r *SaleRepo) AddPayment(_ context.Context, p *entity.Payment) error {
	return r.read(func(st *state) error {
		s, ok := st.sales[p.DocumentID]
		if !ok || s.TenantID != p.TenantID {
			return &domain.PersistenceError{Message: "la venta del pago no existe"}
		}
		st.salePayments = append(st.salePayments, *p)
		return nil
	})
}

func (st *state) loadSale(tenantID, id string) *entity.Sale {
	s, ok := st.sales[id]
	if !ok || s.TenantID != tenantID {
		return nil
	}
	for _, l := range st.saleLines {
		if l.SaleID == id {
			s.Lines = append(s.Lines, l)
		}
	}
	for _, p := range st.salePayments {
		if p.DocumentID == id {
			s.Payments = append(s.Payments, p)
		}
	}
	return &s
}

// GetByID venta con líneas y pagos, o nil.
func (r *SaleRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.read(func(st *state) error {
		out = st.loadSale(tenantID, id)
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID dentro de la transacción serializada.
func (r *SaleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, tenantID, id)
}

// Update persiste los campos mutables de la cabecera.
func (r *SaleRepo) Update(_ context.Context, s *entity.Sale) error {
	return r.read(func(st *state) error {
		h, ok := st.sales[s.ID]
		if !ok || h.TenantID != s.TenantID {
			return domain.NotFound("venta")
		}
		h.Status = s.Status
		h.Paid = s.Paid
		h.VoidedBy = s.VoidedBy
		h.VoidedAt = s.VoidedAt
		h.VoidReason = s.VoidReason
		h.UpdatedAt = s.UpdatedAt
		st.sales[s.ID] = h
		return nil
	})
}

// List ventas del tenant, más recientes primero.
func (r *SaleRepo) List(_ context.Context, tenantID string, f repository.DocumentFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.read(func(st *state) error {
		for id, s := range st.sales {
			if s.TenantID != tenantID || !inRange(s.Date, f) {
				continue
			}
			if f.Status != "" && string(s.Status) != f.Status {
				continue
			}
			out = append(out, st.loadSale(tenantID, id))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, f.Offset, f.Limit), err
}

// PurchaseRepo compras en memoria.
type PurchaseRepo struct{ base }

// Create guarda la cabecera; el proveedor debe existir en el tenant.
func (r *PurchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if p.TenantID == "" {
		return domain.ErrTenantRequired
	}
	return r.read(func(st *state) error {
		s, ok := st.suppliers[p.SupplierID]
		if !ok || s.TenantID != p.TenantID {
			return &domain.PersistenceError{Message: "el proveedor seleccionado no es válido o ha sido eliminado"}
		}
		h := *p
		h.Lines, h.Payments = nil, nil
		st.purchases[p.ID] = h
		return nil
	})
}

// AddLine guarda una línea de la compra.
func (r *PurchaseRepo) AddLine(_ context.Context, tenantID string, l *entity.PurchaseLine) error {
	return r.read(func(st *state) error {
		p, ok := st.purchases[l.PurchaseID]
		if !ok || p.TenantID != tenantID {
			return &domain.PersistenceError{Message: "la compra de la línea no existe"}
		}
		if prod, ok := st.products[l.ProductID]; !ok || prod.TenantID != tenantID {
			return &domain.PersistenceError{Message: "el producto seleccionado no es válido o ha sido eliminado"}
		}
		st.purchaseLines = append(st.purchaseLines, *l)
		return nil
	})
}

// AddPayment guarda un pago de la compra.
func (r *PurchaseRepo) AddPayment(_ context.Context, p *entity.Payment) error {
	return r.read(func(st *state) error {
		h, ok := st.purchases[p.DocumentID]
		if !ok || h.TenantID != p.TenantID {
			return &domain.PersistenceError{Message: "la compra del pago no existe"}
		}
		st.purchasePayments = append(st.purchasePayments, *p)
		return nil
	})
}

func (st *state) loadPurchase(tenantID, id string) *entity.Purchase {
	p, ok := st.purchases[id]
	if !ok || p.TenantID != tenantID {
		return nil
	}
	for _, l := range st.purchaseLines {
		if l.PurchaseID == id {
			p.Lines = append(p.Lines, l)
		}
	}
	for _, pay := range st.purchasePayments {
		if pay.DocumentID == id {
			p.Payments = append(p.Payments, pay)
		}
	}
	return &p
}

// GetByID compra con líneas y pagos, o nil. Incluye compras eliminadas.
func (r *PurchaseRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.read(func(st *state) error {
		out = st.loadPurchase(tenantID, id)
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID dentro de la transacción serializada.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, tenantID, id)
}

// Update persiste los campos mutables de la cabecera.
func (r *PurchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	return r.read(func(st *state) error {
		h, ok := st.purchases[p.ID]
		if !ok || h.TenantID != p.TenantID {
			return domain.NotFound("compra")
		}
		h.Status = p.Status
		h.Paid = p.Paid
		h.ReceivedBy = p.ReceivedBy
		h.ReceivedAt = p.ReceivedAt
		h.Deleted = p.Deleted
		h.UpdatedAt = p.UpdatedAt
		st.purchases[p.ID] = h
		return nil
	})
}

// List compras no eliminadas, más recientes primero.
func (r *PurchaseRepo) List(_ context.Context, tenantID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	err := r.read(func(st *state) error {
		for id, p := range st.purchases {
			if p.TenantID != tenantID || p.Deleted || !inRange(p.Date, f) {
				continue
			}
			if f.Status != "" && string(p.Status) != f.Status {
				continue
			}
			out = append(out, st.loadPurchase(tenantID, id))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, f.Offset, f.Limit), err
}

// SequenceRepo contadores por tenant.
type SequenceRepo struct{ base }

// Next incrementa y devuelve el contador.
func (r *SequenceRepo) Next(_ context.Context, tenantID, kind string) (int64, error) {
	var next int64
	err := r.read(func(st *state) error {
		key := tenantID + "|" + kind
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	return next, err
}
