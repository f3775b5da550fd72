package inventory

import "github.com/shopspring/decimal"

// costScale decimales del costo promedio almacenado.
const costScale = 4

// AverageCost costo promedio ponderado por unidad base tras recibir qtyIn unidades a costIn:
//
//	(stock*cost + qtyIn*costIn) / (stock + qtyIn)
//
// Con stock previo nulo o negativo el costo pasa a ser el de la entrada. Una entrada sin
// cantidad deja el costo como estaba.
func AverageCost(stock, cost, qtyIn, costIn decimal.Decimal) decimal.Decimal {
	if !qtyIn.IsPositive() {
		return cost
	}
	if !stock.IsPositive() {
		return costIn.Round(costScale)
	}
	total := stock.Mul(cost).Add(qtyIn.Mul(costIn))
	return total.Div(stock.Add(qtyIn)).Round(costScale)
}
