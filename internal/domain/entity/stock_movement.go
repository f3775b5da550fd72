package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del kardex.
type MovementKind string

const (
	MovementEntrada MovementKind = "Entrada"
	MovementSalida  MovementKind = "Salida"
	MovementAjuste  MovementKind = "Ajuste"
	MovementMerma   MovementKind = "Merma"
)

// Valid indica si el tipo es uno de los cuatro conocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntrada, MovementSalida, MovementAjuste, MovementMerma:
		return true
	}
	return false
}

// Tipos de documento que originan movimientos.
const (
	RefVenta          = "Venta"
	RefAnulacionVenta = "AnulacionVenta"
	RefCompra         = "Compra"
	RefAjusteManual   = "AjusteManual"
	RefStockInicial   = "StockInicial"
)

// StockMovement es una fila inmutable del kardex.
// Quantity es el efecto con signo sobre StockBase, de modo que la suma de
// Quantity por producto es igual a su StockBase.
type StockMovement struct {
	ID            string
	TenantID      string
	ProductID     string
	Kind          MovementKind
	Quantity      decimal.Decimal
	StockBefore   decimal.Decimal
	StockAfter    decimal.Decimal
	Date          time.Time
	UserID        string
	Note          string
	ReferenceType string
	ReferenceID   string
}

// StockBalance saldo denormalizado de un producto junto con la suma con signo de su kardex.
type StockBalance struct {
	ProductID   string
	Code        string
	Name        string
	StockBase   decimal.Decimal
	LedgerTotal decimal.Decimal
}
