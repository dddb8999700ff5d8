package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	_ "github.com/jhoicas/autotaller-api/docs"
	"github.com/jhoicas/autotaller-api/internal/application/inventory"
	"github.com/jhoicas/autotaller-api/internal/application/usecase"
	"github.com/jhoicas/autotaller-api/internal/bootstrap"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/cache"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/messaging"
	"github.com/jhoicas/autotaller-api/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/autotaller-api/internal/interfaces/http"
	"github.com/jhoicas/autotaller-api/internal/jobs"
	"github.com/jhoicas/autotaller-api/pkg/config"
	"github.com/jhoicas/autotaller-api/pkg/logger"
)

// @title                       AutoTaller Inventario API
// @version                     1.0
// @description                 Libro de stock multi-tenant para talleres automotrices: compras, cotizaciones, ajustes, devoluciones y traslados con saldos consistentes.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer {token}
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	m := metrics.New()
	engineDeps := inventory.EngineDeps{
		Tx:      storage.Tx,
		Metrics: m,
		Log:     log,
	}

	// Redis: caché de posiciones y cola de conciliación. Opcionales.
	var jobsClient *jobs.Client
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, caché de posiciones deshabilitada")
		} else {
			defer rdb.Close()
			engineDeps.Cache = cache.NewPositionsCache(rdb, cfg.Stock.PositionsCacheTTL, log)
		}
		jobsClient = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer jobsClient.Close()
	}

	// RabbitMQ: eventos stock.moved. Opcional.
	if cfg.RabbitMQ.URL != "" {
		publisher, err := messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq no disponible, eventos de stock deshabilitados")
		} else {
			defer publisher.Close()
			engineDeps.Events = publisher
		}
	}

	eng := inventory.NewEngine(engineDeps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.MetricsMiddleware(m))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "AutoTaller Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	deps := httpRouter.RouterDeps{
		WarehouseUC:   usecase.NewWarehouseUseCase(storage.Tx),
		ProductUC:     usecase.NewProductUseCase(storage.Tx),
		Purchases:     inventory.NewPurchaseUseCase(eng),
		PurchaseOrder: inventory.NewPurchaseOrderUseCase(eng),
		Sales:         inventory.NewSaleUseCase(eng),
		Adjustments:   inventory.NewAdjustmentUseCase(eng),
		Returns:       inventory.NewPurchaseReturnUseCase(eng),
		Transfers:     inventory.NewTransferUseCase(eng),
		StockQuery:    inventory.NewStockQueryUseCase(eng),
		Replenishment: inventory.NewReplenishmentUseCase(eng),
		Tenants:       storage.Tenants,
		DefaultTenant: cfg.Tenancy.DefaultTenantID,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log,
	}
	if jobsClient != nil {
		deps.Jobs = jobsClient
	}
	httpRouter.Router(app, deps)

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
