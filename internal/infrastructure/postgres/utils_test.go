package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// translate
// ──────────────────────────────────────────────────────────────────────────────

func TestTranslate_UnicoConMensajeDeConstraint(t *testing.T) {
	err := translate(&pgconn.PgError{Code: "23505", ConstraintName: "uq_products_tenant_code"}, "insert product")

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "ya existe un producto con ese código", pe.Message)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, domain.KindDuplicate, domain.KindOf(err))
}

func TestTranslate_SerializacionYDeadlockSonConflictoDeConcurrencia(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		t.Run(code, func(t *testing.T) {
			err := translate(&pgconn.PgError{Code: code}, "commit transaction")
			assert.ErrorIs(t, err, domain.ErrConcurrency)
			assert.ErrorIs(t, err, domain.ErrPersistence)
			assert.Equal(t, domain.KindConcurrency, domain.KindOf(err), "no debe terminar en 500")

			var pg *pgconn.PgError
			assert.ErrorAs(t, err, &pg, "el error original queda disponible para el log")
		})
	}
}

func TestTranslate_ErrorNoPostgres(t *testing.T) {
	assert.NoError(t, translate(nil, "x"))

	err := translate(errors.New("conexión cerrada"), "list products")
	assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintento ante conflicto de concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func conflict() error {
	return translate(&pgconn.PgError{Code: "40001"}, "commit transaction")
}

func TestRetryOnConflict_ReintentaUnaVez(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), maxTxAttempts, func() error {
		calls++
		if calls == 1 {
			return conflict()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnConflict_AgotaIntentos(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), maxTxAttempts, func() error {
		calls++
		return conflict()
	})
	assert.ErrorIs(t, err, domain.ErrConcurrency)
	assert.Equal(t, maxTxAttempts, calls)
}

func TestRetryOnConflict_OtrosErroresNoSeReintentan(t *testing.T) {
	calls := 0
	err := retryOnConflict(context.Background(), maxTxAttempts, func() error {
		calls++
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls)
}

func TestRetryOnConflict_ContextoCanceladoNoReintenta(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryOnConflict(ctx, maxTxAttempts, func() error {
		calls++
		cancel()
		return conflict()
	})
	assert.ErrorIs(t, err, domain.ErrConcurrency)
	assert.Equal(t, 1, calls)
}
