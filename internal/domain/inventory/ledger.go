// Package inventory contiene las reglas puras del kardex: cómo cada tipo de
// movimiento afecta el StockBase y cómo se concilia el saldo con el libro.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// Effect resultado de aplicar un movimiento al saldo actual.
type Effect struct {
	Delta  decimal.Decimal // efecto con signo que se guarda en el kardex
	Before decimal.Decimal
	After  decimal.Decimal
}

// Apply calcula el efecto de un movimiento de tipo kind y cantidad qty sobre el producto.
// Para Ajuste, qty es el saldo absoluto deseado y el efecto es la diferencia.
func Apply(p *entity.Product, kind entity.MovementKind, qty decimal.Decimal) (Effect, error) {
	if !kind.Valid() {
		return Effect{}, domain.Invalid("tipo", "tipo de movimiento desconocido: %q", kind)
	}
	before := p.StockBase
	switch kind {
	case entity.MovementAjuste:
		if qty.IsNegative() {
			return Effect{}, domain.Invalid("cantidad", "el stock ajustado no puede ser negativo")
		}
		return Effect{Delta: qty.Sub(before), Before: before, After: qty}, nil
	case entity.MovementEntrada:
		if !qty.IsPositive() {
			return Effect{}, domain.Invalid("cantidad", "la cantidad debe ser mayor a cero")
		}
		return Effect{Delta: qty, Before: before, After: before.Add(qty)}, nil
	default:
		if !qty.IsPositive() {
			return Effect{}, domain.Invalid("cantidad", "la cantidad debe ser mayor a cero")
		}
		if before.LessThan(qty) {
			return Effect{}, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   before,
				Requested:   qty,
			}
		}
		return Effect{Delta: qty.Neg(), Before: before, After: before.Sub(qty)}, nil
	}
}

// Discrepancy producto cuyo StockBase no coincide con la suma de su kardex.
type Discrepancy struct {
	ProductID   string          `json:"product_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	StockBase   decimal.Decimal `json:"stock_base"`
	LedgerTotal decimal.Decimal `json:"ledger_total"`
	Difference  decimal.Decimal `json:"difference"`
}

// Reconcile devuelve los productos cuyo saldo no coincide con la suma de su kardex.
func Reconcile(balances []entity.StockBalance) []Discrepancy {
	var out []Discrepancy
	for _, b := range balances {
		if b.LedgerTotal.Equal(b.StockBase) {
			continue
		}
		out = append(out, Discrepancy{
			ProductID:   b.ProductID,
			Code:        b.Code,
			Name:        b.Name,
			StockBase:   b.StockBase,
			LedgerTotal: b.LedgerTotal,
			Difference:  b.StockBase.Sub(b.LedgerTotal),
		})
	}
	return out
}

// SuggestedOrder cantidad sugerida para reponer un producto hasta el doble de su mínimo.
func SuggestedOrder(p *entity.Product) decimal.Decimal {
	target := p.StockMinimo.Mul(decimal.NewFromInt(2))
	if p.StockBase.GreaterThanOrEqual(target) {
		return decimal.Zero
	}
	return target.Sub(p.StockBase)
}
