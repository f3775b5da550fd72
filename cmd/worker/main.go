// worker procesa las tareas asynq: conciliación del kardex (cron opcional) y
// precalentado del tablero. Requiere REDIS_ADDR.
//
// Uso: go run ./cmd/worker [-enqueue reconcile|dashboard]
// Con -enqueue solo encola una ejecución inmediata para WORKER_TENANTS y termina.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bsm/redislock"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/bootstrap"
	"github.com/jhoicas/ferreteria-api/internal/jobs"
	"github.com/jhoicas/ferreteria-api/pkg/config"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

func main() {
	enqueue := flag.String("enqueue", "", "encolar una tarea y salir: reconcile | dashboard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "worker"})

	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}
	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *enqueue != "" {
		client := jobs.NewClient(redisOpts)
		defer client.Close()
		var info *asynq.TaskInfo
		switch *enqueue {
		case "reconcile":
			info, err = client.EnqueueReconcile(ctx, cfg.Worker.Tenants)
		case "dashboard":
			info, err = client.EnqueueWarmDashboard(ctx, cfg.Worker.Tenants)
		default:
			log.Fatal().Str("enqueue", *enqueue).Msg("tarea desconocida")
		}
		if err != nil {
			log.Fatal().Err(err).Msg("encolar tarea")
		}
		log.Info().Str("task_id", info.ID).Str("queue", info.Queue).Msg("tarea encolada")
		return
	}

	rt, err := bootstrap.Open(ctx, cfg, log.Component("bootstrap"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer rt.Close()

	svc := bootstrap.NewServices(rt.Stores, rt.Cache, sales.Config{
		CreditDays:    cfg.Sales.CreditDays,
		InvoiceFormat: cfg.Sales.InvoiceFormat,
	})

	var cron []jobs.CronRegistration
	if cfg.Worker.ReconcileCron != "" && len(cfg.Worker.Tenants) > 0 {
		task, err := jobs.NewReconcileTask(cfg.Worker.Tenants)
		if err != nil {
			log.Fatal().Err(err).Msg("tarea de conciliación")
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.Worker.ReconcileCron,
			Task:    task,
			Options: []asynq.Option{asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3)},
		})
	}

	jobsLog := log.Component("jobs")
	handlers := jobs.NewHandlers(svc.Inventory, svc.Reports, jobsLog)
	if rt.Redis != nil {
		handlers.WithLocker(redislock.New(rt.Redis))
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Worker.Concurrency,
		Logger:      jobsLog,
		Handlers:    handlers,
		Cron:        cron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("crear worker")
	}

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Int("cron", len(cron)).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}
