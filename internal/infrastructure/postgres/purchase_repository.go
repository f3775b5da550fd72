package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras a proveedores.
type PurchaseRepo struct {
	q Querier
}

func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, tenant_id, supplier_id, supplier_invoice_number, status, date, due_date,
	discount_total, total, paid, user_id, notes, received_by, received_at, deleted, created_at, updated_at`

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var status string
	if err := row.Scan(&p.ID, &p.TenantID, &p.SupplierID, &p.SupplierInvoiceNumber, &status, &p.Date, &p.DueDate,
		&p.DiscountTotal, &p.Total, &p.Paid, &p.UserID, &p.Notes, &p.ReceivedBy, &p.ReceivedAt, &p.Deleted,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = entity.PurchaseStatus(status)
	return &p, nil
}

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.TenantID, p.SupplierID, p.SupplierInvoiceNumber, string(p.Status), p.Date, p.DueDate,
		p.DiscountTotal, p.Total, p.Paid, p.UserID, p.Notes, p.ReceivedBy, p.ReceivedAt, p.Deleted, p.CreatedAt, p.UpdatedAt)
	return translate(err, "insert purchase")
}

func (r *PurchaseRepo) AddLine(ctx context.Context, tenantID string, l *entity.PurchaseLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_lines (id, tenant_id, purchase_id, product_id, presentation_id, quantity, quantity_base,
			unit_cost, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, tenantID, l.PurchaseID, l.ProductID, nullable(l.PresentationID), l.Quantity, l.QuantityBase,
		l.UnitCost, l.Discount, l.Subtotal)
	return translate(err, "insert purchase line")
}

func (r *PurchaseRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_payments (id, tenant_id, purchase_id, amount, method, reference, date, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TenantID, p.DocumentID, p.Amount, string(p.Method), p.Reference, p.Date, p.UserID)
	return translate(err, "insert purchase payment")
}

func (r *PurchaseRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *PurchaseRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "get purchase")
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, product_id, COALESCE(presentation_id, ''), quantity, quantity_base, unit_cost, discount, subtotal
		FROM purchase_lines WHERE tenant_id = $1 AND purchase_id = $2 ORDER BY line_no`, tenantID, id)
	if err != nil {
		return nil, translate(err, "list purchase lines")
	}
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.PresentationID, &l.Quantity, &l.QuantityBase,
			&l.UnitCost, &l.Discount, &l.Subtotal); err != nil {
			rows.Close()
			return nil, translate(err, "scan purchase line")
		}
		p.Lines = append(p.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list purchase lines")
	}
	if p.Payments, err = listPayments(ctx, r.q, "purchase_payments", "purchase_id", tenantID, id); err != nil {
		return nil, err
	}
	return p, nil
}

// Update persiste estado, pagado, recepción y borrado lógico.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchases SET status = $3, paid = $4, received_by = $5, received_at = $6, deleted = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, string(p.Status), p.Paid, p.ReceivedBy, p.ReceivedAt, p.Deleted, p.UpdatedAt)
	if err != nil {
		return translate(err, "update purchase")
	}
	if tag.RowsAffected() == 0 {
		return notFound("compra")
	}
	return nil
}

// List cabeceras de compras no eliminadas.
func (r *PurchaseRepo) List(ctx context.Context, tenantID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	query, args := documentQuery(`SELECT `+purchaseColumns+` FROM purchases WHERE tenant_id = $1 AND deleted = FALSE`, tenantID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list purchases")
	}
	defer rows.Close()
	var out []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, translate(err, "scan purchase")
		}
		out = append(out, p)
	}
	return out, translate(rows.Err(), "list purchases")
}
