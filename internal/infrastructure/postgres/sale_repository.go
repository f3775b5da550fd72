package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas, líneas y abonos.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, tenant_id, invoice_number, COALESCE(customer_id, ''), payment_type, status, date, due_date,
	discount_total, total, paid, user_id, notes, voided_by, voided_at, void_reason, created_at, updated_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var paymentType, status string
	if err := row.Scan(&s.ID, &s.TenantID, &s.InvoiceNumber, &s.CustomerID, &paymentType, &status, &s.Date, &s.DueDate,
		&s.DiscountTotal, &s.Total, &s.Paid, &s.UserID, &s.Notes, &s.VoidedBy, &s.VoidedAt, &s.VoidReason,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.PaymentType = entity.PaymentType(paymentType)
	s.Status = entity.SaleStatus(status)
	return &s, nil
}

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, tenant_id, invoice_number, customer_id, payment_type, status, date, due_date,
			discount_total, total, paid, user_id, notes, voided_by, voided_at, void_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		s.ID, s.TenantID, s.InvoiceNumber, nullable(s.CustomerID), string(s.PaymentType), string(s.Status), s.Date, s.DueDate,
		s.DiscountTotal, s.Total, s.Paid, s.UserID, s.Notes, s.VoidedBy, s.VoidedAt, s.VoidReason, s.CreatedAt, s.UpdatedAt)
	return translate(err, "insert sale")
}

func (r *SaleRepo) AddLine(ctx context.Context, tenantID string, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (id, tenant_id, sale_id, product_id, presentation_id, quantity, quantity_base,
			unit_price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, tenantID, l.SaleID, l.ProductID, nullable(l.PresentationID), l.Quantity, l.QuantityBase,
		l.UnitPrice, l.Discount, l.Subtotal)
	return translate(err, "insert sale line")
}

func (r *SaleRepo) AddPayment(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_payments (id, tenant_id, sale_id, amount, method, reference, date, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.TenantID, p.DocumentID, p.Amount, string(p.Method), p.Reference, p.Date, p.UserID)
	return translate(err, "insert sale payment")
}

func (r *SaleRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetForUpdate bloquea la cabecera; líneas y pagos se leen en la misma tx.
func (r *SaleRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

func (r *SaleRepo) get(ctx context.Context, query, tenantID, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "get sale")
	}
	if err := r.loadDetail(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SaleRepo) loadDetail(ctx context.Context, s *entity.Sale) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, COALESCE(presentation_id, ''), quantity, quantity_base, unit_price, discount, subtotal
		FROM sale_lines WHERE tenant_id = $1 AND sale_id = $2 ORDER BY line_no`, s.TenantID, s.ID)
	if err != nil {
		return translate(err, "list sale lines")
	}
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.PresentationID, &l.Quantity, &l.QuantityBase,
			&l.UnitPrice, &l.Discount, &l.Subtotal); err != nil {
			rows.Close()
			return translate(err, "scan sale line")
		}
		s.Lines = append(s.Lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return translate(err, "list sale lines")
	}
	payments, err := listPayments(ctx, r.q, "sale_payments", "sale_id", s.TenantID, s.ID)
	if err != nil {
		return err
	}
	s.Payments = payments
	return nil
}

// Update persiste estado, pagado y anulación.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales SET status = $3, paid = $4, voided_by = $5, voided_at = $6, void_reason = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2`,
		s.TenantID, s.ID, string(s.Status), s.Paid, s.VoidedBy, s.VoidedAt, s.VoidReason, s.UpdatedAt)
	if err != nil {
		return translate(err, "update sale")
	}
	if tag.RowsAffected() == 0 {
		return notFound("venta")
	}
	return nil
}

// List devuelve cabeceras sin líneas ni pagos, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, tenantID string, f repository.DocumentFilter) ([]*entity.Sale, error) {
	query, args := documentQuery(`SELECT `+saleColumns+` FROM sales WHERE tenant_id = $1`, tenantID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "list sales")
	}
	defer rows.Close()
	var out []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, translate(err, "scan sale")
		}
		out = append(out, s)
	}
	return out, translate(rows.Err(), "list sales")
}

func documentQuery(base, tenantID string, f repository.DocumentFilter) (string, []any) {
	query := base
	args := []any{tenantID}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(` AND date < $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	return query + ` ORDER BY date DESC` + limitOffset(f.Limit, f.Offset), args
}

func listPayments(ctx context.Context, q Querier, table, fk, tenantID, docID string) ([]entity.Payment, error) {
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT id, tenant_id, %s, amount, method, reference, date, user_id
		FROM %s WHERE tenant_id = $1 AND %s = $2 ORDER BY date, id`, fk, table, fk), tenantID, docID)
	if err != nil {
		return nil, translate(err, "list payments")
	}
	defer rows.Close()
	var out []entity.Payment
	for rows.Next() {
		var p entity.Payment
		var method string
		if err := rows.Scan(&p.ID, &p.TenantID, &p.DocumentID, &p.Amount, &method, &p.Reference, &p.Date, &p.UserID); err != nil {
			return nil, translate(err, "scan payment")
		}
		p.Method = entity.PaymentMethod(method)
		out = append(out, p)
	}
	return out, translate(rows.Err(), "list payments")
}
