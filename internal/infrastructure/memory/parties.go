package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ base }

// Create guarda el cliente.
func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if c.TenantID == "" {
		return domain.ErrTenantRequired
	}
	return r.read(func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.customers[c.ID] = *c
		return nil
	})
}

// GetByID obtiene el cliente del tenant o nil.
func (r *CustomerRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.read(func(st *state) error {
		if c, ok := st.customers[id]; ok && c.TenantID == tenantID {
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID dentro de la transacción serializada.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	return r.GetByID(ctx, tenantID, id)
}

// UpdateBalance fija SaldoActual.
func (r *CustomerRepo) UpdateBalance(_ context.Context, tenantID, id string, balance decimal.Decimal) error {
	return r.read(func(st *state) error {
		c, ok := st.customers[id]
		if !ok || c.TenantID != tenantID {
			return domain.NotFound("cliente")
		}
		c.SaldoActual = balance
		st.customers[id] = c
		return nil
	})
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ base }

// Create guarda el proveedor.
func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	if s.TenantID == "" {
		return domain.ErrTenantRequired
	}
	return r.read(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return domain.ErrDuplicate
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

// GetByID obtiene el proveedor del tenant o nil.
func (r *SupplierRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.read(func(st *state) error {
		if s, ok := st.suppliers[id]; ok && s.TenantID == tenantID {
			out = &s
		}
		return nil
	})
	return out, err
}
