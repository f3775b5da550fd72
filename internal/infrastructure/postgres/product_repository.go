package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository      = (*ProductRepo)(nil)
	_ repository.PresentationRepository = (*PresentationRepo)(nil)
)

const productColumns = `id, tenant_id, code, barcode, name, description,
	COALESCE(category_id, ''), COALESCE(base_unit_id, ''),
	stock_base, stock_minimo, precio_base_venta, precio_base_compra,
	active, deleted, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Code, &p.Barcode, &p.Name, &p.Description,
		&p.CategoryID, &p.BaseUnitID,
		&p.StockBase, &p.StockMinimo, &p.PrecioBaseVenta, &p.PrecioBaseCompra,
		&p.Active, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, op)
	}
	return p, nil
}

// Create persiste un nuevo producto con stock en cero; el stock inicial entra por el kardex.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, code, barcode, name, description, category_id, base_unit_id,
			stock_base, stock_minimo, precio_base_venta, precio_base_compra, active, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.Code, p.Barcode, p.Name, p.Description, nullable(p.CategoryID), nullable(p.BaseUnitID),
		p.StockBase, p.StockMinimo, p.PrecioBaseVenta, p.PrecioBaseCompra, p.Active, p.Deleted, p.CreatedAt, p.UpdatedAt,
	)
	return translate(err, "insert product")
}

// GetByID obtiene un producto del tenant por ID.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product",
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate obtiene y bloquea la fila del producto hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product",
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// GetByCode obtiene un producto por código normalizado.
func (r *ProductRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by code",
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND code = $2`, tenantID, code)
}

// List lista productos del tenant ordenados por código.
func (r *ProductRepo) List(ctx context.Context, tenantID string, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}
	if !f.IncludeDeleted {
		query += ` AND deleted = FALSE`
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR code ILIKE $%d OR barcode ILIKE $%d)`, len(args), len(args), len(args))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	query += ` ORDER BY code` + limitOffset(f.Limit, f.Offset)
	return r.list(ctx, "list products", query, args...)
}

// ListLowStock productos activos con stock en o por debajo del mínimo.
func (r *ProductRepo) ListLowStock(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE tenant_id = $1 AND deleted = FALSE AND active = TRUE AND stock_base <= stock_minimo
		ORDER BY code`
	return r.list(ctx, "list low stock", query, tenantID)
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, op)
	}
	defer rows.Close()
	var out []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translate(err, op)
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), op)
}

// UpdateStock fija el saldo en unidad base.
func (r *ProductRepo) UpdateStock(ctx context.Context, tenantID, id string, stock decimal.Decimal) error {
	return r.exec(ctx, "update stock",
		`UPDATE products SET stock_base = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, tenantID, id, stock)
}

// UpdatePurchaseCost fija el costo promedio ponderado.
func (r *ProductRepo) UpdatePurchaseCost(ctx context.Context, tenantID, id string, cost decimal.Decimal) error {
	return r.exec(ctx, "update purchase cost",
		`UPDATE products SET precio_base_compra = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, tenantID, id, cost)
}

// Update guarda los datos maestros editables. stock_base queda fuera: solo lo mueve el kardex.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.exec(ctx, "update product", `
		UPDATE products SET code = $3, barcode = $4, name = $5, description = $6,
			category_id = $7, base_unit_id = $8, stock_minimo = $9,
			precio_base_venta = $10, precio_base_compra = $11, active = $12, updated_at = $13
		WHERE tenant_id = $1 AND id = $2 AND deleted = FALSE`,
		p.TenantID, p.ID, p.Code, p.Barcode, p.Name, p.Description,
		nullable(p.CategoryID), nullable(p.BaseUnitID), p.StockMinimo,
		p.PrecioBaseVenta, p.PrecioBaseCompra, p.Active, p.UpdatedAt)
}

// SoftDelete marca el producto como eliminado; el kardex se conserva.
func (r *ProductRepo) SoftDelete(ctx context.Context, tenantID, id string) error {
	return r.exec(ctx, "delete product",
		`UPDATE products SET deleted = TRUE, active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *ProductRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, op)
	}
	if tag.RowsAffected() == 0 {
		return notFound("producto")
	}
	return nil
}

// PresentationRepo presentaciones de producto.
type PresentationRepo struct {
	q Querier
}

func NewPresentationRepository(q Querier) *PresentationRepo {
	return &PresentationRepo{q: q}
}

const presentationColumns = `id, tenant_id, product_id, name, COALESCE(unit_id, ''), factor_conversion,
	precio_venta, precio_compra, barcode, is_primary, active, created_at`

func scanPresentation(row pgx.Row) (*entity.Presentation, error) {
	var p entity.Presentation
	if err := row.Scan(&p.ID, &p.TenantID, &p.ProductID, &p.Name, &p.UnitID, &p.FactorConversion,
		&p.PrecioVenta, &p.PrecioCompra, &p.Barcode, &p.IsPrimary, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PresentationRepo) Create(ctx context.Context, p *entity.Presentation) error {
	query := `
		INSERT INTO presentations (id, tenant_id, product_id, name, unit_id, factor_conversion,
			precio_venta, precio_compra, barcode, is_primary, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query, p.ID, p.TenantID, p.ProductID, p.Name, nullable(p.UnitID), p.FactorConversion,
		p.PrecioVenta, p.PrecioCompra, p.Barcode, p.IsPrimary, p.Active, p.CreatedAt)
	return translate(err, "insert presentation")
}

func (r *PresentationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Presentation, error) {
	p, err := scanPresentation(r.q.QueryRow(ctx,
		`SELECT `+presentationColumns+` FROM presentations WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "get presentation")
	}
	return p, nil
}

func (r *PresentationRepo) ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Presentation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+presentationColumns+` FROM presentations
		WHERE tenant_id = $1 AND product_id = $2 ORDER BY is_primary DESC, name`, tenantID, productID)
	if err != nil {
		return nil, translate(err, "list presentations")
	}
	defer rows.Close()
	var out []*entity.Presentation
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, translate(err, "list presentations")
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), "list presentations")
}

func (r *PresentationRepo) Update(ctx context.Context, p *entity.Presentation) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE presentations SET name = $3, unit_id = $4, factor_conversion = $5,
			precio_venta = $6, precio_compra = $7, barcode = $8, is_primary = $9, active = $10
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.Name, nullable(p.UnitID), p.FactorConversion,
		p.PrecioVenta, p.PrecioCompra, p.Barcode, p.IsPrimary, p.Active)
	if err != nil {
		return translate(err, "update presentation")
	}
	if tag.RowsAffected() == 0 {
		return notFound("presentación")
	}
	return nil
}
