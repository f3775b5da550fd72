package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// CustomerRepository clientes y su cuenta corriente.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Customer, error)
	UpdateBalance(ctx context.Context, tenantID, id string, balance decimal.Decimal) error
}

// SupplierRepository proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Supplier, error)
}
