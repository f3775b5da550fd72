// Package tenant modela el alcance (tenant + usuario) con el que se ejecuta cada operación.
package tenant

import (
	"context"
	"strings"

	"github.com/jhoicas/ferreteria-api/internal/domain"
)

// Scope identifica al tenant y al usuario que actúa. Ambos son obligatorios.
type Scope struct {
	TenantID string
	UserID   string
}

// New construye un Scope recortando espacios.
func New(tenantID, userID string) Scope {
	return Scope{TenantID: strings.TrimSpace(tenantID), UserID: strings.TrimSpace(userID)}
}

// Validate falla cerrado: sin tenant o sin usuario no hay operación.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.TenantID) == "" {
		return domain.ErrTenantRequired
	}
	if strings.TrimSpace(s.UserID) == "" {
		return domain.ErrActorRequired
	}
	return nil
}

// Assign fija el tenant del scope en una entidad nueva. Rechaza una entidad
// que ya trae otro tenant.
func (s Scope) Assign(current *string) error {
	if *current != "" && *current != s.TenantID {
		return domain.Invalid("tenant_id", "la entidad pertenece a otro tenant")
	}
	*current = s.TenantID
	return nil
}

// Resolver obtiene el Scope de la petición en curso.
type Resolver interface {
	Resolve(ctx context.Context) (Scope, error)
}

type ctxKey struct{}

// WithScope guarda el Scope en el contexto.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// ContextResolver resuelve el Scope previamente guardado con WithScope.
type ContextResolver struct{}

// Resolve implementa Resolver.
func (ContextResolver) Resolve(ctx context.Context) (Scope, error) {
	s, _ := ctx.Value(ctxKey{}).(Scope)
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}
