package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio.
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrCreditLimitExceeded = errors.New("límite de crédito excedido")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrPersistence         = errors.New("error de persistencia")
	ErrConcurrency         = errors.New("conflicto de concurrencia")
	ErrTenantRequired      = errors.New("tenant requerido")
	ErrActorRequired       = errors.New("usuario requerido")
)

// Códigos estables expuestos por la API.
const (
	KindValidation     = "VALIDATION"
	KindNotFound       = "NOT_FOUND"
	KindDuplicate      = "DUPLICATE"
	KindInsufficient   = "INSUFFICIENT_STOCK"
	KindCreditExceeded = "CREDIT_LIMIT_EXCEEDED"
	KindInvalidState   = "INVALID_STATE"
	KindPersistence    = "PERSISTENCE"
	KindConcurrency    = "CONCURRENCY_CONFLICT"
	KindUnauthorized   = "UNAUTHORIZED"
	KindInternal       = "INTERNAL"
)

// ValidationError describe una entrada rechazada antes de tocar el almacenamiento.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound envuelve ErrNotFound con el recurso buscado.
func NotFound(resource string) error {
	return fmt.Errorf("%s no encontrado: %w", resource, ErrNotFound)
}

// InvalidState envuelve ErrInvalidState con el detalle de la transición.
func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidState)
}

// InsufficientStockError indica que una salida supera el stock disponible.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s. Disponible: %s, solicitado: %s",
		e.ProductName, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CreditLimitError indica que la venta a crédito supera el límite del cliente.
type CreditLimitError struct {
	CustomerID string
	Limit      decimal.Decimal
	Attempted  decimal.Decimal
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("el cliente excede su límite de crédito. Límite: %s, saldo resultante: %s",
		e.Limit.StringFixed(2), e.Attempted.StringFixed(2))
}

func (e *CreditLimitError) Unwrap() error { return ErrCreditLimitExceeded }

// PersistenceError traduce un fallo del almacenamiento a un mensaje de dominio.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Err}
}

// KindOf clasifica un error en su código estable.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTenantRequired), errors.Is(err, ErrActorRequired):
		return KindUnauthorized
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficient
	case errors.Is(err, ErrCreditLimitExceeded):
		return KindCreditExceeded
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrConcurrency):
		return KindConcurrency
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}
