package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ferreteria-api/internal/application/reports"
	dominv "github.com/jhoicas/ferreteria-api/internal/domain/inventory"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

// SystemUser actor con el que corren las tareas programadas.
const SystemUser = "sistema"

// reconcileLockTTL cubre la conciliación de un tenant grande.
const reconcileLockTTL = 5 * time.Minute

func reconcileLockKey(tenantID string) string {
	return "ferreteria:lock:reconcile:" + tenantID
}

// Reconciler lo implementa inventory.UseCase.
type Reconciler interface {
	Reconcile(ctx context.Context, scope tenant.Scope) ([]dominv.Discrepancy, error)
}

// DashboardLoader lo implementa reports.UseCase.
type DashboardLoader interface {
	GetDashboard(ctx context.Context, scope tenant.Scope) (*reports.Dashboard, error)
}

// Handlers agrupa los manejadores de tareas con sus dependencias.
type Handlers struct {
	reconciler Reconciler
	dashboard  DashboardLoader
	locker     *redislock.Client
	logger     zerolog.Logger
}

// NewHandlers construye los manejadores. dashboard puede ser nil.
func NewHandlers(reconciler Reconciler, dashboard DashboardLoader, logger zerolog.Logger) *Handlers {
	return &Handlers{reconciler: reconciler, dashboard: dashboard, logger: logger}
}

// WithLocker hace que cada tenant se concilie bajo un lock de Redis, de modo que dos
// workers no concilien el mismo tenant a la vez.
func (h *Handlers) WithLocker(l *redislock.Client) *Handlers {
	h.locker = l
	return h
}

// HandleReconcile concilia cada tenant y registra las diferencias. No corrige stock:
// una diferencia requiere revisión humana y un Ajuste explícito.
func (h *Handlers) HandleReconcile(ctx context.Context, t *asynq.Task) error {
	tenants, err := decodeTenants(t)
	if err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	var errs []error
	for _, tenantID := range tenants {
		if err := h.reconcileTenant(ctx, tenantID); err != nil {
			h.logger.Error().Err(err).Str("tenant_id", tenantID).Msg("conciliación fallida")
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return errors.Join(errs...)
}

func (h *Handlers) reconcileTenant(ctx context.Context, tenantID string) error {
	if h.locker != nil {
		lock, err := h.locker.Obtain(ctx, reconcileLockKey(tenantID), reconcileLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			h.logger.Info().Str("tenant_id", tenantID).Msg("conciliación en curso en otro worker, se omite")
			return nil
		}
		if err != nil {
			return fmt.Errorf("obtener lock: %w", err)
		}
		defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	}

	diffs, err := h.reconciler.Reconcile(ctx, tenant.New(tenantID, SystemUser))
	if err != nil {
		return err
	}
	for _, d := range diffs {
		h.logger.Warn().
			Str("tenant_id", tenantID).
			Str("product_id", d.ProductID).
			Str("code", d.Code).
			Str("stock_base", d.StockBase.String()).
			Str("ledger_total", d.LedgerTotal.String()).
			Str("difference", d.Difference.String()).
			Msg("descuadre entre stock y kardex")
	}
	h.logger.Info().Str("tenant_id", tenantID).Int("discrepancies", len(diffs)).Msg("conciliación completada")
	return nil
}

// HandleWarmDashboard recalcula el tablero de cada tenant para dejarlo en caché.
func (h *Handlers) HandleWarmDashboard(ctx context.Context, t *asynq.Task) error {
	tenants, err := decodeTenants(t)
	if err != nil {
		return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
	}
	if h.dashboard == nil {
		return nil
	}
	var errs []error
	for _, tenantID := range tenants {
		if _, err := h.dashboard.GetDashboard(ctx, tenant.New(tenantID, SystemUser)); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return errors.Join(errs...)
}
