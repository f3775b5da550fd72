package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// MovementFilter filtros del kardex de un producto.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// StockMovementRepository kardex append-only: no expone Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByProduct(ctx context.Context, tenantID, productID string, f MovementFilter) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, tenantID, refType, refID string) ([]*entity.StockMovement, error)
	// Balances devuelve, para cada producto del tenant (incluidos los eliminados), su StockBase
	// y la suma con signo de su kardex leídos en una sola lectura, ordenados por código.
	Balances(ctx context.Context, tenantID string) ([]entity.StockBalance, error)
}
