package inventory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	dominv "github.com/jhoicas/ferreteria-api/internal/domain/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// StockLedger es el único punto que modifica StockBase. Cada llamada actualiza el saldo
// y agrega exactamente una fila al kardex usando los repositorios de la transacción del llamador.
type StockLedger struct {
	now func() time.Time
}

// NewStockLedger construye el kardex.
func NewStockLedger() *StockLedger {
	return &StockLedger{now: time.Now}
}

// MovementInput datos de un movimiento. Para Ajuste, Quantity es el saldo absoluto deseado.
type MovementInput struct {
	ProductID     string
	Kind          entity.MovementKind
	Quantity      decimal.Decimal
	Note          string
	ReferenceType string
	ReferenceID   string
}

// ApplyMovement bloquea el producto (SELECT FOR UPDATE), valida el movimiento, actualiza
// StockBase y guarda el movimiento. Si algo falla el llamador debe abortar su transacción.
// No filtra productos con borrado lógico: una anulación debe poder devolver su stock.
func (l *StockLedger) ApplyMovement(ctx context.Context, r TxRepos, scope tenant.Scope, in MovementInput) (*entity.StockMovement, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, domain.Invalid("producto", "producto requerido")
	}
	p, err := r.Products.GetForUpdate(ctx, scope.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto")
	}

	eff, err := dominv.Apply(p, in.Kind, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := r.Products.UpdateStock(ctx, scope.TenantID, p.ID, eff.After); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		TenantID:      scope.TenantID,
		ProductID:     p.ID,
		Kind:          in.Kind,
		Quantity:      eff.Delta,
		StockBefore:   eff.Before,
		StockAfter:    eff.After,
		Date:          l.now(),
		UserID:        scope.UserID,
		Note:          in.Note,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// LockProducts bloquea (SELECT FOR UPDATE) los productos indicados en orden ascendente de ID,
// una vez cada uno. Las transacciones que tocan varios productos los bloquean con esta
// función antes del primer ApplyMovement; así dos transacciones nunca se esperan en cruz.
// Incluye productos con borrado lógico; un ID inexistente en el tenant es NotFound.
func LockProducts(ctx context.Context, r TxRepos, tenantID string, ids []string) (map[string]*entity.Product, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make(map[string]*entity.Product, len(sorted))
	for _, id := range sorted {
		p, err := r.Products.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NotFound("producto " + id)
		}
		out[id] = p
	}
	return out, nil
}
