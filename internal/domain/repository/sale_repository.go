package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// DocumentFilter filtros de listados de ventas y compras.
type DocumentFilter struct {
	From   *time.Time
	To     *time.Time
	Status string
	Limit  int
	Offset int
}

// SaleRepository ventas con sus líneas y pagos.
// GetByID y GetForUpdate cargan líneas y pagos.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	AddLine(ctx context.Context, tenantID string, l *entity.SaleLine) error
	AddPayment(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Sale, error)
	// Update persiste estado, pagado y campos de anulación.
	Update(ctx context.Context, s *entity.Sale) error
	List(ctx context.Context, tenantID string, f DocumentFilter) ([]*entity.Sale, error)
}

// PurchaseRepository compras con sus líneas y pagos.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	AddLine(ctx context.Context, tenantID string, l *entity.PurchaseLine) error
	AddPayment(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Purchase, error)
	// Update persiste estado, pagado, recepción y borrado lógico.
	Update(ctx context.Context, p *entity.Purchase) error
	List(ctx context.Context, tenantID string, f DocumentFilter) ([]*entity.Purchase, error)
}

// Tipos de secuencia documental.
const (
	SequenceSaleInvoice = "venta"
)

// SequenceRepository contador transaccional por tenant y tipo de documento.
type SequenceRepository interface {
	// Next reserva y devuelve el siguiente valor. Debe ejecutarse en la misma
	// transacción que usa el número.
	Next(ctx context.Context, tenantID, kind string) (int64, error)
}
