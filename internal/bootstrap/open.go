package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/cache"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/memory"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ferreteria-api/pkg/config"
)

// Runtime recursos abiertos por un binario. Close los libera en orden inverso.
type Runtime struct {
	Stores Stores
	Pool   *pgxpool.Pool // nil con APP_STORE=memory
	Redis  *redis.Client // nil sin REDIS_ADDR
	Cache  *cache.Cache  // nil sin REDIS_ADDR
}

// Open conecta el almacenamiento configurado y, si hay REDIS_ADDR, la caché.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.App.Store {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		rt.Stores = MemoryStores(memory.New())
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		rt.Pool = pool
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		rt.Stores = PostgresStores(pool, cfg.DB.TxIsolation)
	}

	if cfg.Redis.Addr != "" {
		rt.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rt.Redis.Ping(ctx).Err(); err != nil {
			// la caché es opcional: sin Redis los reportes se calculan en cada petición
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché desactivada")
			_ = rt.Redis.Close()
			rt.Redis = nil
		} else {
			rt.Cache = cache.New(rt.Redis, cfg.Redis.CacheTTL)
		}
	}
	return rt, nil
}

// Close libera Redis y el pool.
func (rt *Runtime) Close() {
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}
