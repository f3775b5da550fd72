package inventory

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products      repository.ProductRepository
	Presentations repository.PresentationRepository
	Movements     repository.StockMovementRepository
	Customers     repository.CustomerRepository
	Suppliers     repository.SupplierRepository
	Sales         repository.SaleRepository
	Purchases     repository.PurchaseRepository
	Sequences     repository.SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, r TxRepos) error) error
}

// ChangeNotifier recibe aviso después de cada commit que modifica stock o documentos.
type ChangeNotifier interface {
	StockChanged(ctx context.Context, tenantID string)
}

// Notify avisa al notifier si existe.
func Notify(ctx context.Context, n ChangeNotifier, tenantID string) {
	if n != nil {
		n.StockChanged(ctx, tenantID)
	}
}
