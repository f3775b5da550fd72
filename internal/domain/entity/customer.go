package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente con cuenta corriente. LimiteCredito en cero significa sin límite.
type Customer struct {
	ID                  string
	TenantID            string
	DocumentType        string
	DocumentNumber      string
	Name                string
	Phone               string
	Email               string
	Address             string
	LimiteCredito       decimal.Decimal
	SaldoActual         decimal.Decimal
	DescuentoPorcentaje decimal.Decimal
	Active              bool
	Deleted             bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Supplier proveedor. PlazoPago en días.
type Supplier struct {
	ID             string
	TenantID       string
	DocumentType   string
	DocumentNumber string
	BusinessName   string
	Phone          string
	Email          string
	Address        string
	PlazoPago      int
	Active         bool
	Deleted        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
