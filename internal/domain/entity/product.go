package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo de la ferretería.
// StockBase es el saldo desnormalizado en unidad base; solo lo modifica el kardex (StockMovement).
type Product struct {
	ID               string
	TenantID         string
	Code             string // único por tenant, normalizado
	Barcode          string
	Name             string
	Description      string
	CategoryID       string
	BaseUnitID       string
	StockBase        decimal.Decimal
	StockMinimo      decimal.Decimal
	PrecioBaseVenta  decimal.Decimal
	PrecioBaseCompra decimal.Decimal // costo promedio ponderado por unidad base
	Active           bool
	Deleted          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsLowStock indica si el producto está en o por debajo de su mínimo.
func (p *Product) IsLowStock() bool {
	return p.StockBase.LessThanOrEqual(p.StockMinimo)
}

// Presentation es una forma de venta/compra de un producto (caja, bulto, metro)
// con su factor de conversión a la unidad base.
type Presentation struct {
	ID               string
	TenantID         string
	ProductID        string
	Name             string
	UnitID           string
	FactorConversion decimal.Decimal
	PrecioVenta      decimal.Decimal
	PrecioCompra     decimal.Decimal
	Barcode          string
	IsPrimary        bool
	Active           bool
	CreatedAt        time.Time
}

// ToBase convierte una cantidad en esta presentación a unidad base.
func (p *Presentation) ToBase(qty decimal.Decimal) decimal.Decimal {
	if p == nil {
		return qty
	}
	return qty.Mul(p.FactorConversion)
}
