package postgres

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador por tenant y tipo. El UPSERT bloquea la fila hasta el fin de la tx,
// de modo que dos ventas concurrentes nunca obtienen el mismo número.
type SequenceRepo struct {
	q Querier
}

func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

func (r *SequenceRepo) Next(ctx context.Context, tenantID, kind string) (int64, error) {
	var next int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (tenant_id, kind, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, kind) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`, tenantID, kind).Scan(&next)
	if err != nil {
		return 0, translate(err, "next sequence")
	}
	return next, nil
}
