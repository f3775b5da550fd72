package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/ferreteria-api/internal/interfaces/http"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, log.Component("bootstrap"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer rt.Close()

	svc := bootstrap.NewServices(rt.Stores, rt.Cache, sales.Config{
		CreditDays:    cfg.Sales.CreditDays,
		InvoiceFormat: cfg.Sales.InvoiceFormat,
	})

	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:        cfg.App.Name,
		Logger:      log.Component("http"),
		SwaggerFile: cfg.HTTP.SwaggerFile,
		RateLimit:   cfg.HTTP.RateLimit,
	}, httpRouter.RouterDeps{
		CatalogUC:   svc.Catalog,
		InventoryUC: svc.Inventory,
		SalesUC:     svc.Sales,
		PurchasesUC: svc.Purchases,
		ReportsUC:   svc.Reports,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
