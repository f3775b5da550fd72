package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

func TestScope_Validate(t *testing.T) {
	assert.ErrorIs(t, tenant.New("", "u1").Validate(), domain.ErrTenantRequired, "sin tenant debe fallar")
	assert.ErrorIs(t, tenant.New("  ", "u1").Validate(), domain.ErrTenantRequired, "tenant en blanco debe fallar")
	assert.ErrorIs(t, tenant.New("t1", "").Validate(), domain.ErrActorRequired, "sin usuario no hay usuario por defecto")
	assert.NoError(t, tenant.New("t1", "u1").Validate())
}

func TestScope_Assign(t *testing.T) {
	s := tenant.New("t1", "u1")

	var empty string
	require.NoError(t, s.Assign(&empty))
	assert.Equal(t, "t1", empty)

	same := "t1"
	assert.NoError(t, s.Assign(&same))

	other := "t2"
	err := s.Assign(&other)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no se puede reasignar una entidad de otro tenant")
	assert.Equal(t, "t2", other)
}

func TestContextResolver(t *testing.T) {
	var r tenant.ContextResolver

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, domain.ErrTenantRequired)

	ctx := tenant.WithScope(context.Background(), tenant.New("t1", "u1"))
	s, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", s.TenantID)
	assert.Equal(t, "u1", s.UserID)
}
