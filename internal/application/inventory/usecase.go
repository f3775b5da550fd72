package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	dominv "github.com/jhoicas/ferreteria-api/internal/domain/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// UseCase operaciones de inventario fuera de ventas y compras: ajustes manuales,
// kardex, conciliación y stock bajo.
type UseCase struct {
	txRunner  TxRunner
	ledger    *StockLedger
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	notifier  ChangeNotifier
}

// NewUseCase construye el caso de uso. notifier puede ser nil.
func NewUseCase(
	txRunner TxRunner,
	ledger *StockLedger,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	notifier ChangeNotifier,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		products:  products,
		movements: movements,
		notifier:  notifier,
	}
}

// AdjustStockInput ajuste manual de stock (entrada, salida, merma o ajuste absoluto).
type AdjustStockInput struct {
	ProductID string
	Kind      entity.MovementKind
	Quantity  decimal.Decimal
	Note      string
}

// AdjustStock registra un movimiento manual en su propia transacción.
func (uc *UseCase) AdjustStock(ctx context.Context, scope tenant.Scope, in AdjustStockInput) (*entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
		p, err := r.Products.GetByID(ctx, scope.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil || p.Deleted {
			return domain.NotFound("producto")
		}
		mov, err = uc.ledger.ApplyMovement(ctx, r, scope, MovementInput{
			ProductID:     in.ProductID,
			Kind:          in.Kind,
			Quantity:      in.Quantity,
			Note:          in.Note,
			ReferenceType: entity.RefAjusteManual,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	Notify(ctx, uc.notifier, scope.TenantID)
	return mov, nil
}

// ListMovements devuelve el kardex de un producto, más recientes primero.
func (uc *UseCase) ListMovements(ctx context.Context, scope tenant.Scope, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.products.GetByID(ctx, scope.TenantID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto")
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return uc.movements.ListByProduct(ctx, scope.TenantID, productID, f)
}

// Reconcile compara StockBase con la suma del kardex de cada producto del tenant. Saldos y
// sumas salen de una sola consulta para que una venta concurrente no genere falsos descuadres.
func (uc *UseCase) Reconcile(ctx context.Context, scope tenant.Scope) ([]dominv.Discrepancy, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	balances, err := uc.movements.Balances(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	return dominv.Reconcile(balances), nil
}

// LowStockItem producto en o bajo su mínimo con la cantidad sugerida de pedido.
type LowStockItem struct {
	ProductID      string          `json:"product_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	StockBase      decimal.Decimal `json:"stock_base"`
	StockMinimo    decimal.Decimal `json:"stock_minimo"`
	SuggestedOrder decimal.Decimal `json:"suggested_order"`
	EstimatedCost  decimal.Decimal `json:"estimated_cost"`
}

// LowStock lista de reposición ordenada por faltante descendente.
func (uc *UseCase) LowStock(ctx context.Context, scope tenant.Scope) ([]LowStockItem, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	products, err := uc.products.ListLowStock(ctx, scope.TenantID)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(products))
	for _, p := range products {
		qty := dominv.SuggestedOrder(p)
		items = append(items, LowStockItem{
			ProductID:      p.ID,
			Code:           p.Code,
			Name:           p.Name,
			StockBase:      p.StockBase,
			StockMinimo:    p.StockMinimo,
			SuggestedOrder: qty,
			EstimatedCost:  qty.Mul(p.PrecioBaseCompra).Round(2),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		gi := items[i].StockMinimo.Sub(items[i].StockBase)
		gj := items[j].StockMinimo.Sub(items[j].StockBase)
		return gi.GreaterThan(gj)
	})
	return items, nil
}
