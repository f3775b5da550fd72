package entity

import "github.com/shopspring/decimal"

// MoneyScale decimales de los importes guardados (NUMERIC(18,2)). Las cantidades usan 4.
const MoneyScale = 2

// RoundMoney redondea un importe a MoneyScale decimales.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
