// Package reports contiene las consultas de solo lectura para el tablero y los
// reportes de ventas. No modifica stock ni documentos.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/domain/tenant"
)

const dashboardTopProducts = 10

// Cache caché de lectura por tenant. Una implementación nil equivale a no cachear.
type Cache interface {
	// Key arma la llave versionada del tenant.
	Key(ctx context.Context, tenantID string, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Dashboard resumen del tablero principal.
type Dashboard struct {
	SalesToday      decimal.Decimal         `json:"sales_today"`
	SalesTodayCount int                     `json:"sales_today_count"`
	LowStockCount   int                     `json:"low_stock_count"`
	MonthProfit     decimal.Decimal         `json:"month_profit"`
	Last7Days       []repository.DailySales `json:"last_7_days"`
	TopProducts     []repository.TopProduct `json:"top_products"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// SalesReport ventas de un rango de fechas.
type SalesReport struct {
	From  time.Time               `json:"from"`
	To    time.Time               `json:"to"`
	Total decimal.Decimal         `json:"total"`
	Count int                     `json:"count"`
	ByDay []repository.DailySales `json:"by_day"`
	Top   []repository.TopProduct `json:"top_products"`
}

// UseCase reportes.
type UseCase struct {
	repo  repository.ReportRepository
	cache Cache
	now   func() time.Time
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(repo repository.ReportRepository, cache Cache) *UseCase {
	return &UseCase{repo: repo, cache: cache, now: time.Now}
}

// GetDashboard arma el tablero con las consultas en paralelo. El resultado se cachea
// por tenant hasta el próximo cambio de stock o documentos.
func (uc *UseCase) GetDashboard(ctx context.Context, scope tenant.Scope) (*Dashboard, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	if uc.cache == nil {
		return uc.loadDashboard(ctx, scope.TenantID, now)
	}
	key, err := uc.cache.Key(ctx, scope.TenantID, "dashboard", now.Format("2006-01-02"))
	if err != nil {
		return uc.loadDashboard(ctx, scope.TenantID, now)
	}
	var out Dashboard
	err = uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return uc.loadDashboard(ctx, scope.TenantID, now)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *UseCase) loadDashboard(ctx context.Context, tenantID string, now time.Time) (*Dashboard, error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -6)

	out := &Dashboard{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.SalesToday, out.SalesTodayCount, err = uc.repo.SalesTotals(gctx, tenantID, todayStart, todayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		out.LowStockCount, err = uc.repo.CountLowStock(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		out.MonthProfit, err = uc.repo.EstimatedProfit(gctx, tenantID, monthStart, todayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		out.Last7Days, err = uc.repo.SalesByDay(gctx, tenantID, weekStart, todayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		out.TopProducts, err = uc.repo.TopProducts(gctx, tenantID, monthStart, todayEnd, dashboardTopProducts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSalesReport ventas entre from y to (to exclusivo).
func (uc *UseCase) GetSalesReport(ctx context.Context, scope tenant.Scope, from, to time.Time) (*SalesReport, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, domain.Invalid("rango", "la fecha final debe ser posterior a la inicial")
	}
	out := &SalesReport{From: from, To: to}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Total, out.Count, err = uc.repo.SalesTotals(gctx, scope.TenantID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		out.ByDay, err = uc.repo.SalesByDay(gctx, scope.TenantID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		out.Top, err = uc.repo.TopProducts(gctx, scope.TenantID, from, to, dashboardTopProducts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
