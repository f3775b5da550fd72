package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CustomerRepo clientes y saldo de cuenta corriente.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el repositorio de clientes (pool o tx).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, tenant_id, document_type, document_number, name, phone, email, address,
	limite_credito, saldo_actual, descuento_porcentaje, active, deleted, created_at, updated_at`

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.TenantID, c.DocumentType, c.DocumentNumber, c.Name, c.Phone, c.Email, c.Address,
		c.LimiteCredito, c.SaldoActual, c.DescuentoPorcentaje, c.Active, c.Deleted, c.CreatedAt, c.UpdatedAt)
	return translate(err, "insert customer")
}

func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la fila del cliente para verificar y mover el saldo en la misma tx.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *CustomerRepo) get(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.TenantID, &c.DocumentType, &c.DocumentNumber, &c.Name, &c.Phone, &c.Email, &c.Address,
		&c.LimiteCredito, &c.SaldoActual, &c.DescuentoPorcentaje, &c.Active, &c.Deleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "get customer")
	}
	return &c, nil
}

func (r *CustomerRepo) UpdateBalance(ctx context.Context, tenantID, id string, balance decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE customers SET saldo_actual = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`, tenantID, id, balance)
	if err != nil {
		return translate(err, "update customer balance")
	}
	if tag.RowsAffected() == 0 {
		return notFound("cliente")
	}
	return nil
}

// SupplierRepo proveedores.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (id, tenant_id, document_type, document_number, business_name, phone, email, address,
			plazo_pago, active, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.TenantID, s.DocumentType, s.DocumentNumber, s.BusinessName, s.Phone, s.Email, s.Address,
		s.PlazoPago, s.Active, s.Deleted, s.CreatedAt, s.UpdatedAt)
	return translate(err, "insert supplier")
}

func (r *SupplierRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT id, tenant_id, document_type, document_number, business_name, phone, email, address,
			plazo_pago, active, deleted, created_at, updated_at
		FROM suppliers WHERE tenant_id = $1 AND id = $2`, tenantID, id).Scan(
		&s.ID, &s.TenantID, &s.DocumentType, &s.DocumentNumber, &s.BusinessName, &s.Phone, &s.Email, &s.Address,
		&s.PlazoPago, &s.Active, &s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "get supplier")
	}
	return &s, nil
}
