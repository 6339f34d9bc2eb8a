package main

import (
	"context"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/events"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner   inventory.TxRunner
		repos      inventory.TxRepos
		warehouses repository.WarehouseRepository
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		txRunner, repos, warehouses = store, store.Repos(), store.Warehouses()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, repos, warehouses = postgres.NewTxRunner(pool), postgres.Repos(pool), postgres.NewWarehouseRepository(pool)
	}

	// Reconciliación: primer suscriptor del bus, reconstruida desde el almacenamiento al arrancar.
	recon := inventory.NewReconciliationService(repos.Movements, repos.Stock, log.Component("reconciliation"))
	bus := events.NewBus(recon)

	if cfg.Redis.Enabled() {
		client, err := events.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, solo bus local")
		} else {
			defer client.Close()
			bus.Subscribe(events.NewRedisPublisher(client, cfg.Redis.Channel))
			log.Info().Str("channel", cfg.Redis.Channel).Msg("publicando cambios en redis")
		}
	}

	opts := []inventory.Option{inventory.WithPublisher(bus), inventory.WithCommitGate(recon)}
	var metricsHandler nethttp.Handler
	if cfg.Metrics.Enabled {
		recorder := metrics.New("stock_ledger")
		recon.Subscribe(recorder.ObserveSummary)
		opts = append(opts, inventory.WithMetrics(recorder))
		metricsHandler = recorder.Handler()
	}
	withLog := func(component string) []inventory.Option {
		out := make([]inventory.Option, 0, len(opts)+1)
		out = append(out, opts...)
		return append(out, inventory.WithLogger(log.Component(component)))
	}

	var proofStorage inventory.ProofStorage
	if cfg.Storage.Enabled() {
		gcs, err := storage.NewGCS(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsJSON, cfg.Storage.PublicBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("cliente de Cloud Storage")
		}
		defer gcs.Close()
		proofStorage = gcs
	} else {
		log.Warn().Msg("GCS_BUCKET vacío: evidencias de entrega deshabilitadas")
	}

	if _, err := recon.Recompute(ctx); err != nil {
		log.Fatal().Err(err).Msg("reconciliación inicial")
	}

	stockUC := inventory.NewStockUseCase(txRunner, repos.Stock, warehouses, withLog("stock")...)
	transferUC := inventory.NewTransferUseCase(txRunner, repos.Stock, repos.Movements, repos.Transfers, warehouses, withLog("transfer")...)
	dispatchUC := inventory.NewDispatchUseCase(txRunner, repos.Stock, repos.Movements, repos.Dispatches, warehouses, proofStorage, withLog("dispatch")...)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.AllowOrigins}))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:        stockUC,
		TransferUC:     transferUC,
		DispatchUC:     dispatchUC,
		Reconciliation: recon,
		Metrics:        metricsHandler,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
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
