package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. initial_stock > 0 registra una Entrada.
type CreateProductRequest struct {
	Code             string          `json:"code" validate:"required,max=50"`
	Barcode          string          `json:"barcode" validate:"max=50"`
	Name             string          `json:"name" validate:"required,max=200"`
	Description      string          `json:"description"`
	CategoryID       string          `json:"category_id"`
	BaseUnitID       string          `json:"base_unit_id"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
	PrecioBaseVenta  decimal.Decimal `json:"precio_base_venta"`
	PrecioBaseCompra decimal.Decimal `json:"precio_base_compra"`
	InitialStock     decimal.Decimal `json:"initial_stock"`
}

// UpdateProductRequest cambios parciales sobre un producto. El stock no se edita por aquí.
type UpdateProductRequest struct {
	Code             *string          `json:"code" validate:"omitempty,max=50"`
	Barcode          *string          `json:"barcode" validate:"omitempty,max=50"`
	Name             *string          `json:"name" validate:"omitempty,max=200"`
	Description      *string          `json:"description"`
	CategoryID       *string          `json:"category_id"`
	BaseUnitID       *string          `json:"base_unit_id"`
	StockMinimo      *decimal.Decimal `json:"stock_minimo"`
	PrecioBaseVenta  *decimal.Decimal `json:"precio_base_venta"`
	PrecioBaseCompra *decimal.Decimal `json:"precio_base_compra"`
	Active           *bool            `json:"active"`
}

// AddPresentationRequest entrada para agregar una presentación.
type AddPresentationRequest struct {
	Name             string          `json:"name" validate:"required,max=100"`
	UnitID           string          `json:"unit_id"`
	FactorConversion decimal.Decimal `json:"factor_conversion"`
	PrecioVenta      decimal.Decimal `json:"precio_venta"`
	PrecioCompra     decimal.Decimal `json:"precio_compra"`
	Barcode          string          `json:"barcode" validate:"max=50"`
	IsPrimary        bool            `json:"is_primary"`
}

// UpdatePresentationRequest cambios parciales sobre una presentación.
type UpdatePresentationRequest struct {
	Name             *string          `json:"name" validate:"omitempty,max=100"`
	UnitID           *string          `json:"unit_id"`
	FactorConversion *decimal.Decimal `json:"factor_conversion"`
	PrecioVenta      *decimal.Decimal `json:"precio_venta"`
	PrecioCompra     *decimal.Decimal `json:"precio_compra"`
	Barcode          *string          `json:"barcode" validate:"omitempty,max=50"`
	IsPrimary        *bool            `json:"is_primary"`
	Active           *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Barcode          string          `json:"barcode"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       string          `json:"category_id,omitempty"`
	BaseUnitID       string          `json:"base_unit_id,omitempty"`
	StockBase        decimal.Decimal `json:"stock_base"`
	StockMinimo      decimal.Decimal `json:"stock_minimo"`
	PrecioBaseVenta  decimal.Decimal `json:"precio_base_venta"`
	PrecioBaseCompra decimal.Decimal `json:"precio_base_compra"`
	LowStock         bool            `json:"low_stock"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PresentationResponse salida de una presentación.
type PresentationResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Name             string          `json:"name"`
	UnitID           string          `json:"unit_id,omitempty"`
	FactorConversion decimal.Decimal `json:"factor_conversion"`
	PrecioVenta      decimal.Decimal `json:"precio_venta"`
	PrecioCompra     decimal.Decimal `json:"precio_compra"`
	Barcode          string          `json:"barcode"`
	IsPrimary        bool            `json:"is_primary"`
}

// FromProduct mapea la entidad a la respuesta.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Barcode:          p.Barcode,
		Name:             p.Name,
		Description:      p.Description,
		CategoryID:       p.CategoryID,
		BaseUnitID:       p.BaseUnitID,
		StockBase:        p.StockBase,
		StockMinimo:      p.StockMinimo,
		PrecioBaseVenta:  p.PrecioBaseVenta,
		PrecioBaseCompra: p.PrecioBaseCompra,
		LowStock:         p.IsLowStock(),
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func FromPresentation(p *entity.Presentation) PresentationResponse {
	return PresentationResponse{
		ID:               p.ID,
		ProductID:        p.ProductID,
		Name:             p.Name,
		UnitID:           p.UnitID,
		FactorConversion: p.FactorConversion,
		PrecioVenta:      p.PrecioVenta,
		PrecioCompra:     p.PrecioCompra,
		Barcode:          p.Barcode,
		IsPrimary:        p.IsPrimary,
	}
}
