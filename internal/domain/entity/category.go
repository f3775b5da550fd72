package entity

import "time"

// Category agrupa productos del catálogo.
type Category struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
}

// Unit es una unidad de medida (unidad, metro, kilo, galón).
type Unit struct {
	ID           string
	TenantID     string
	Code         string
	Name         string
	Abbreviation string
	Active       bool
	CreatedAt    time.Time
}
