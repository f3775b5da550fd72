// Package bootstrap arma los casos de uso sobre un almacenamiento concreto
// (PostgreSQL o memoria) para los binarios de cmd/ y las pruebas de integración HTTP.
package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ferreteria-api/internal/application/catalog"
	"github.com/jhoicas/ferreteria-api/internal/application/inventory"
	"github.com/jhoicas/ferreteria-api/internal/application/payments"
	"github.com/jhoicas/ferreteria-api/internal/application/purchases"
	"github.com/jhoicas/ferreteria-api/internal/application/reports"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/cache"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/postgres"
)

// Stores repositorios y unidad de trabajo de un backend.
type Stores struct {
	Tx         inventory.TxRunner
	Repos      inventory.TxRepos
	Categories repository.CategoryRepository
	Units      repository.UnitRepository
	Reports    repository.ReportRepository
}

// PostgresStores repositorios sobre el pool.
func PostgresStores(pool *pgxpool.Pool, isolation string) Stores {
	return Stores{
		Tx:         postgres.NewTxRunner(pool, isolation),
		Repos:      postgres.Repos(pool),
		Categories: postgres.NewCategoryRepository(pool),
		Units:      postgres.NewUnitRepository(pool),
		Reports:    postgres.NewReportRepository(pool),
	}
}

// MemoryStores repositorios en memoria.
func MemoryStores(s *memory.Store) Stores {
	return Stores{
		Tx:         s,
		Repos:      s.Repos(),
		Categories: s.Categories(),
		Units:      s.Units(),
		Reports:    s.Reports(),
	}
}

// Services casos de uso de la aplicación.
type Services struct {
	Catalog   *catalog.UseCase
	Inventory *inventory.UseCase
	Sales     *sales.UseCase
	Purchases *purchases.UseCase
	Reports   *reports.UseCase
}

// NewServices arma los casos de uso. c puede ser nil (sin caché ni invalidación).
func NewServices(st Stores, c *cache.Cache, salesCfg sales.Config) *Services {
	var notifier inventory.ChangeNotifier
	var reportCache reports.Cache
	if c != nil {
		notifier = c
		reportCache = c
	}
	ledger := inventory.NewStockLedger()
	subLedger := payments.NewSubLedger()
	return &Services{
		Catalog:   catalog.NewUseCase(st.Tx, ledger, st.Repos.Products, st.Repos.Presentations, st.Categories, st.Units, notifier),
		Inventory: inventory.NewUseCase(st.Tx, ledger, st.Repos.Products, st.Repos.Movements, notifier),
		Sales:     sales.NewUseCase(st.Tx, ledger, subLedger, st.Repos.Sales, notifier, salesCfg),
		Purchases: purchases.NewUseCase(st.Tx, ledger, subLedger, st.Repos.Purchases, notifier),
		Reports:   reports.NewUseCase(st.Reports, reportCache),
	}
}
