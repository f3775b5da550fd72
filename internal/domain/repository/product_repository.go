package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string
	CategoryID string
	// IncludeDeleted incluye productos con borrado lógico.
	IncludeDeleted bool
	Limit          int // 0 = sin límite
	Offset         int
}

// ProductRepository puerto de persistencia del catálogo. Todas las consultas van acotadas al tenant.
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe en el tenant.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Product, error)
	List(ctx context.Context, tenantID string, f ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, tenantID string) ([]*entity.Product, error)
	// UpdateStock solo debe llamarlo el kardex.
	UpdateStock(ctx context.Context, tenantID, id string, stock decimal.Decimal) error
	UpdatePurchaseCost(ctx context.Context, tenantID, id string, cost decimal.Decimal) error
	// Update guarda los datos maestros editables; no toca StockBase ni Deleted.
	Update(ctx context.Context, p *entity.Product) error
	SoftDelete(ctx context.Context, tenantID, id string) error
}

// PresentationRepository presentaciones de venta/compra de un producto.
type PresentationRepository interface {
	Create(ctx context.Context, p *entity.Presentation) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Presentation, error)
	ListByProduct(ctx context.Context, tenantID, productID string) ([]*entity.Presentation, error)
	Update(ctx context.Context, p *entity.Presentation) error
}
