package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.App.Store)
	assert.Equal(t, 15, cfg.Sales.CreditDays)
	assert.Equal(t, "FAC-%06d", cfg.Sales.InvoiceFormat)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, "read committed", cfg.DB.TxIsolation)
	assert.Empty(t, cfg.Worker.Tenants)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_STORE", "memory")
	t.Setenv("SALES_CREDIT_DAYS", "30")
	t.Setenv("WORKER_TENANTS", "t1, t2,,")
	t.Setenv("REDIS_CACHE_TTL_SECONDS", "60")
	t.Setenv("DB_AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.Store)
	assert.Equal(t, 30, cfg.Sales.CreditDays)
	assert.Equal(t, []string{"t1", "t2"}, cfg.Worker.Tenants, "la lista ignora vacíos y espacios")
	assert.Equal(t, time.Minute, cfg.Redis.CacheTTL)
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("store desconocido", func(t *testing.T) {
		t.Setenv("APP_STORE", "sqlite")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("producción sin secreto JWT", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("formato de factura sin verbo", func(t *testing.T) {
		t.Setenv("SALES_INVOICE_FORMAT", "FAC")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ferreteria", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ferreteria?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())
}
