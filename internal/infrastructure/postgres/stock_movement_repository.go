package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex. La tabla rechaza UPDATE y DELETE mediante trigger.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, product_id, kind, quantity, stock_before, stock_after,
	date, user_id, note, reference_type, reference_id`

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.TenantID, m.ProductID, string(m.Kind), m.Quantity, m.StockBefore, m.StockAfter,
		m.Date, m.UserID, m.Note, m.ReferenceType, m.ReferenceID)
	return translate(err, "insert stock movement")
}

// ListByProduct kardex del producto, más reciente primero.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, tenantID, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE tenant_id = $1 AND product_id = $2`
	args := []any{tenantID, productID}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(` AND date < $%d`, len(args))
	}
	query += ` ORDER BY date DESC, id` + limitOffset(f.Limit, f.Offset)
	return r.list(ctx, query, args...)
}

func (r *StockMovementRepo) ListByReference(ctx context.Context, tenantID, refType, refID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3 ORDER BY date, id`, tenantID, refType, refID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list stock movements")
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var kind string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &kind, &m.Quantity, &m.StockBefore, &m.StockAfter,
			&m.Date, &m.UserID, &m.Note, &m.ReferenceType, &m.ReferenceID); err != nil {
			return nil, translate(err, "scan stock movement")
		}
		m.Kind = entity.MovementKind(kind)
		out = append(out, &m)
	}
	return out, translate(rows.Err(), "list stock movements")
}

// Balances saldo y suma del kardex por producto en una sola sentencia: bajo read committed
// ambos lados ven la misma instantánea.
func (r *StockMovementRepo) Balances(ctx context.Context, tenantID string) ([]entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.code, p.name, p.stock_base, COALESCE(m.total, 0)
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS total
			FROM stock_movements
			WHERE tenant_id = $1
			GROUP BY product_id
		) m ON m.product_id = p.id
		WHERE p.tenant_id = $1
		ORDER BY p.code`, tenantID)
	if err != nil {
		return nil, translate(err, "stock balances")
	}
	defer rows.Close()
	var out []entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.Code, &b.Name, &b.StockBase, &b.LedgerTotal); err != nil {
			return nil, translate(err, "scan stock balance")
		}
		out = append(out, b)
	}
	return out, translate(rows.Err(), "stock balances")
}
