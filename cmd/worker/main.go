package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/bootstrap"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/metrics"
	"github.com/jhoicas/autotaller-api/internal/jobs"
	"github.com/jhoicas/autotaller-api/pkg/config"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	m := metrics.New()
	eng := inventory.NewEngine(inventory.EngineDeps{Tx: storage.Tx, Metrics: m, Log: log})
	reconcile := jobs.NewReconcileJob(storage.Tenants, inventory.NewStockQueryUseCase(eng), m, log, cfg.Jobs.Concurrency)

	nightly, err := jobs.NewReconcileTask(jobs.ReconcilePayload{Repair: true, ScheduledFor: time.Now().UTC()})
	if err != nil {
		log.Fatal().Err(err).Msg("tarea programada")
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Concurrency: cfg.Jobs.Concurrency,
		Logger:      log,
		Handlers:    []jobs.TaskHandler{{Type: jobs.TaskStockReconcile, Handler: reconcile.Handle}},
		Cron:        []jobs.CronRegistration{{Spec: cfg.Jobs.ReconcileCron, Task: nightly}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("worker")
	}

	if cfg.Jobs.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Jobs.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("servidor de métricas")
			}
		}()
		defer srv.Close()
	}

	log.Info().Str("cron", cfg.Jobs.ReconcileCron).Msg("iniciando worker de conciliación")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
	}
	log.Info().Msg("worker detenido")
}
