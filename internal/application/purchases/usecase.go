// Package purchases implementa el motor de compras: registro, recepción de mercancía
// (entradas al kardex y costo promedio), pagos al proveedor y borrado lógico.
package purchases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	dominv "github.com/jhoicas/ferreteria-api/internal/domain/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// UseCase motor de compras.
type UseCase struct {
	txRunner  inventory.TxRunner
	ledger    *inventory.StockLedger
	payments  *payments.SubLedger
	purchases repository.PurchaseRepository
	notifier  inventory.ChangeNotifier
	now       func() time.Time
}

// NewUseCase construye el motor de compras. notifier puede ser nil.
func NewUseCase(
	txRunner inventory.TxRunner,
	ledger *inventory.StockLedger,
	subLedger *payments.SubLedger,
	purchases repository.PurchaseRepository,
	notifier inventory.ChangeNotifier,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		payments:  subLedger,
		purchases: purchases,
		notifier:  notifier,
		now:       time.Now,
	}
}

// LineInput línea de compra. UnitCost cero toma el precio de compra de la presentación
// o el costo base del producto.
type LineInput struct {
	ProductID      string
	PresentationID string
	Quantity       decimal.Decimal
	UnitCost       decimal.Decimal
	Discount       decimal.Decimal
}

// CreatePurchaseInput datos de una compra nueva. Total cero se calcula desde las líneas;
// DueDate nil usa el plazo de pago del proveedor.
type CreatePurchaseInput struct {
	SupplierID            string
	SupplierInvoiceNumber string
	Date                  *time.Time
	DueDate               *time.Time
	Total                 decimal.Decimal
	Lines                 []LineInput
	Notes                 string
}

func (in *CreatePurchaseInput) validate() error {
	if strings.TrimSpace(in.SupplierID) == "" {
		return domain.Invalid("proveedor", "proveedor requerido")
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lineas", "la compra debe tener al menos un producto")
	}
	if in.Total.IsNegative() {
		return domain.Invalid("total", "el total no puede ser negativo")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lineas[%d]", i)
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.Invalid(field, "producto requerido")
		}
		if !l.Quantity.IsPositive() {
			return domain.Invalid(field, "la cantidad debe ser mayor a cero")
		}
		if l.UnitCost.IsNegative() || l.Discount.IsNegative() {
			return domain.Invalid(field, "costo y descuento no pueden ser negativos")
		}
	}
	return nil
}

// CreatePurchase guarda la compra en estado Pendiente. No afecta el stock.
func (uc *UseCase) CreatePurchase(ctx context.Context, scope tenant.Scope, in CreatePurchaseInput) (*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var purchase *entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		supplier, err := r.Suppliers.GetByID(ctx, scope.TenantID, in.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil || supplier.Deleted {
			return domain.NotFound("proveedor")
		}

		now := uc.now()
		date := now
		if in.Date != nil {
			date = *in.Date
		}
		purchase = &entity.Purchase{
			ID:                    uuid.New().String(),
			TenantID:              scope.TenantID,
			SupplierID:            supplier.ID,
			SupplierInvoiceNumber: strings.TrimSpace(in.SupplierInvoiceNumber),
			Status:                entity.PurchasePendiente,
			Date:                  date,
			DueDate:               in.DueDate,
			UserID:                scope.UserID,
			Notes:                 in.Notes,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if purchase.DueDate == nil && supplier.PlazoPago > 0 {
			due := date.AddDate(0, 0, supplier.PlazoPago)
			purchase.DueDate = &due
		}

		var computed decimal.Decimal
		for i, l := range in.Lines {
			line, err := buildLine(ctx, r, scope.TenantID, l)
			if err != nil {
				return fmt.Errorf("lineas[%d]: %w", i, err)
			}
			line.PurchaseID = purchase.ID
			purchase.Lines = append(purchase.Lines, line)
			purchase.DiscountTotal = purchase.DiscountTotal.Add(line.Discount)
			computed = computed.Add(line.Subtotal)
		}
		purchase.Total = entity.RoundMoney(in.Total)
		if purchase.Total.IsZero() {
			purchase.Total = computed
		}

		if err := r.Purchases.Create(ctx, purchase); err != nil {
			return err
		}
		for i := range purchase.Lines {
			if err := r.Purchases.AddLine(ctx, scope.TenantID, &purchase.Lines[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func buildLine(ctx context.Context, r inventory.TxRepos, tenantID string, in LineInput) (entity.PurchaseLine, error) {
	p, err := r.Products.GetByID(ctx, tenantID, in.ProductID)
	if err != nil {
		return entity.PurchaseLine{}, err
	}
	if p == nil || p.Deleted {
		return entity.PurchaseLine{}, domain.NotFound("producto " + in.ProductID)
	}
	cost := in.UnitCost
	qtyBase := in.Quantity
	if in.PresentationID != "" {
		pres, err := r.Presentations.GetByID(ctx, tenantID, in.PresentationID)
		if err != nil {
			return entity.PurchaseLine{}, err
		}
		if pres == nil || pres.ProductID != p.ID {
			return entity.PurchaseLine{}, domain.NotFound("presentación")
		}
		qtyBase = pres.ToBase(in.Quantity)
		if cost.IsZero() {
			cost = pres.PrecioCompra
		}
	} else if cost.IsZero() {
		cost = p.PrecioBaseCompra
	}
	gross := entity.RoundMoney(in.Quantity.Mul(cost))
	discount := entity.RoundMoney(in.Discount)
	if discount.GreaterThan(gross) {
		return entity.PurchaseLine{}, domain.Invalid("descuento", "el descuento no puede superar el valor de la línea")
	}
	return entity.PurchaseLine{
		ID:             uuid.New().String(),
		ProductID:      p.ID,
		PresentationID: in.PresentationID,
		Quantity:       in.Quantity,
		QuantityBase:   qtyBase,
		UnitCost:       cost,
		Discount:       discount,
		Subtotal:       gross.Sub(discount),
	}, nil
}

// ReceivePurchase da entrada a la mercancía de una compra Pendiente.
func (uc *UseCase) ReceivePurchase(ctx context.Context, scope tenant.Scope, purchaseID string) (*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var purchase *entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		purchase, err = uc.lock(ctx, r, scope.TenantID, purchaseID)
		if err != nil {
			return err
		}
		return uc.receive(ctx, r, scope, purchase)
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return purchase, nil
}

// RegisterPayment abona a la compra sin importar si ya fue recibida.
func (uc *UseCase) RegisterPayment(ctx context.Context, scope tenant.Scope, purchaseID string, in payments.Input) (*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var purchase *entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		purchase, err = uc.lock(ctx, r, scope.TenantID, purchaseID)
		if err != nil {
			return err
		}
		_, err = uc.payments.RecordPurchasePayment(ctx, r, scope, purchase, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// PayAndReceive registra el pago y recibe la mercancía en una sola transacción:
// si la recepción falla, el pago tampoco queda registrado.
func (uc *UseCase) PayAndReceive(ctx context.Context, scope tenant.Scope, purchaseID string, in payments.Input) (*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	var purchase *entity.Purchase
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		var err error
		purchase, err = uc.lock(ctx, r, scope.TenantID, purchaseID)
		if err != nil {
			return err
		}
		if _, err := uc.payments.RecordPurchasePayment(ctx, r, scope, purchase, in); err != nil {
			return err
		}
		return uc.receive(ctx, r, scope, purchase)
	})
	if err != nil {
		return nil, err
	}
	inventory.Notify(ctx, uc.notifier, scope.TenantID)
	return purchase, nil
}

// DeletePurchase borrado lógico de una compra no recibida.
func (uc *UseCase) DeletePurchase(ctx context.Context, scope tenant.Scope, purchaseID string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return uc.txRunner.Run(ctx, func(ctx context.Context, r inventory.TxRepos) error {
		purchase, err := uc.lock(ctx, r, scope.TenantID, purchaseID)
		if err != nil {
			return err
		}
		if purchase.Status == entity.PurchaseRecibida {
			return domain.InvalidState("no se puede eliminar una compra ya recibida")
		}
		purchase.Deleted = true
		purchase.UpdatedAt = uc.now()
		return r.Purchases.Update(ctx, purchase)
	})
}

// GetPurchase devuelve la compra con líneas y pagos.
func (uc *UseCase) GetPurchase(ctx context.Context, scope tenant.Scope, purchaseID string) (*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	p, err := uc.purchases.GetByID(ctx, scope.TenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("compra")
	}
	if p.Deleted {
		return nil, domain.InvalidState("la compra fue eliminada")
	}
	return p, nil
}

// ListPurchases compras no eliminadas, más recientes primero.
func (uc *UseCase) ListPurchases(ctx context.Context, scope tenant.Scope, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return uc.purchases.List(ctx, scope.TenantID, f)
}

func (uc *UseCase) lock(ctx context.Context, r inventory.TxRepos, tenantID, purchaseID string) (*entity.Purchase, error) {
	p, err := r.Purchases.GetForUpdate(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("compra")
	}
	if p.Deleted {
		return nil, domain.InvalidState("la compra fue eliminada")
	}
	return p, nil
}

// receive aplica una Entrada por línea, recalcula el costo promedio y marca la compra Recibida.
func (uc *UseCase) receive(ctx context.Context, r inventory.TxRepos, scope tenant.Scope, purchase *entity.Purchase) error {
	if purchase.Status == entity.PurchaseRecibida {
		return domain.InvalidState("la compra ya fue recibida")
	}
	ids := make([]string, 0, len(purchase.Lines))
	for _, line := range purchase.Lines {
		ids = append(ids, line.ProductID)
	}
	if _, err := inventory.LockProducts(ctx, r, scope.TenantID, ids); err != nil {
		return err
	}
	for _, line := range purchase.Lines {
		mov, err := uc.ledger.ApplyMovement(ctx, r, scope, inventory.MovementInput{
			ProductID:     line.ProductID,
			Kind:          entity.MovementEntrada,
			Quantity:      line.QuantityBase,
			Note:          "Recepción compra " + purchase.SupplierInvoiceNumber,
			ReferenceType: entity.RefCompra,
			ReferenceID:   purchase.ID,
		})
		if err != nil {
			return err
		}
		if err := updateCost(ctx, r, scope.TenantID, line, mov); err != nil {
			return err
		}
	}
	now := uc.now()
	purchase.Status = entity.PurchaseRecibida
	purchase.ReceivedBy = scope.UserID
	purchase.ReceivedAt = &now
	purchase.UpdatedAt = now
	return r.Purchases.Update(ctx, purchase)
}

// updateCost recalcula PrecioBaseCompra con el costo neto por unidad base de la línea.
func updateCost(ctx context.Context, r inventory.TxRepos, tenantID string, line entity.PurchaseLine, mov *entity.StockMovement) error {
	if !line.QuantityBase.IsPositive() {
		return nil
	}
	p, err := r.Products.GetByID(ctx, tenantID, line.ProductID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NotFound("producto")
	}
	unitCost := line.Subtotal.Div(line.QuantityBase)
	cost := dominv.AverageCost(mov.StockBefore, p.PrecioBaseCompra, line.QuantityBase, unitCost)
	return r.Products.UpdatePurchaseCost(ctx, tenantID, p.ID, cost)
}
