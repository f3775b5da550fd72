package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
	opts pgx.TxOptions
}

// NewTxRunner construye el runner. isolation acepta "read committed", "repeatable read"
// o "serializable"; vacío usa read committed (los bloqueos de fila dan la consistencia).
func NewTxRunner(pool *pgxpool.Pool, isolation string) *TxRunner {
	return &TxRunner{pool: pool, opts: pgx.TxOptions{IsoLevel: isoLevel(isolation)}}
}

func isoLevel(s string) pgx.TxIsoLevel {
	switch s {
	case "repeatable read":
		return pgx.RepeatableRead
	case "serializable":
		return pgx.Serializable
	default:
		return pgx.ReadCommitted
	}
}

// Repos construye los repositorios sobre q (pool o tx).
func Repos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Products:      NewProductRepository(q),
		Presentations: NewPresentationRepository(q),
		Movements:     NewStockMovementRepository(q),
		Customers:     NewCustomerRepository(q),
		Suppliers:     NewSupplierRepository(q),
		Sales:         NewSaleRepository(q),
		Purchases:     NewPurchaseRepository(q),
		Sequences:     NewSequenceRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un fallo de serialización o deadlock reintenta la transacción completa una vez.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	return retryOnConflict(ctx, maxTxAttempts, func() error { return r.runOnce(ctx, fn) })
}

const maxTxAttempts = 2

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, r.opts)
	if err != nil {
		return translate(err, "begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, Repos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translate(fmt.Errorf("commit transaction: %w", err), "commit transaction")
	}
	return nil
}

// retryOnConflict ejecuta attempt hasta attempts veces mientras falle con ErrConcurrency.
func retryOnConflict(ctx context.Context, attempts int, attempt func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = attempt(); err == nil || !errors.Is(err, domain.ErrConcurrency) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		log.Warn().Err(err).Int("intento", i+1).Msg("conflicto de concurrencia en transacción")
	}
	return err
}
