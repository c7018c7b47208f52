package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	stockgatewayserver "github.com/Apurer/go-stock-gateway/go"

	warehouseclient "github.com/Apurer/go-stock-gateway/internal/clients/http/warehouse"
	warehouseadapter "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/external/warehouse"
	invmemory "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/memory"
	invobs "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/observability"
	invfile "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/file"
	invpostgres "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/postgres"
	invworkflows "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/workflows"
	invapp "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application"
	invports "github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
	platformmigrations "github.com/Apurer/go-stock-gateway/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-stock-gateway/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-stock-gateway/internal/platform/postgres"
)

// Run boots the stock gateway HTTP API with observability, the ledger,
// the snapshot cache, and the commit dispatcher wired. It blocks until
// the process receives SIGINT/SIGTERM and the shutdown sequence ends.
func Run(ctx context.Context) error {
	const serviceName = "stock-gateway-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	warehouseHTTP, err := warehouseclient.NewClient(cfg.WarehouseBaseURL, &http.Client{Timeout: cfg.WarehouseTimeout})
	if err != nil {
		return err
	}
	warehouse := warehouseadapter.NewAdapter(warehouseHTTP)

	ledger, cleanupLedger := buildLedger(ctx, cfg, logger)
	defer cleanupLedger()

	dispatcher, cleanupDispatcher := buildDispatcher(cfg, instruments, warehouse, ledger, logger)
	defer cleanupDispatcher()

	snapshots := invmemory.NewSnapshotCache(warehouse)
	coreService := invapp.NewService(snapshots, ledger, dispatcher)
	service := invobs.New(
		coreService,
		invobs.WithLogger(logger),
		invobs.WithTracer(instruments.Tracer("internal.domains.inventory.application")),
		invobs.WithMeter(instruments.Meter("internal.domains.inventory.application")),
	)

	handlers := stockgatewayserver.ApiHandleFunctions{
		StockAPI: stockgatewayserver.NewStockAPI(service),
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := stockgatewayserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("stock gateway listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("stock gateway server exited", slog.String("error", err.Error()))
		return err
	case <-signalCtx.Done():
	}

	logger.Info("shutting down stock gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown incomplete", slog.String("error", err.Error()))
	}

	// Give in-flight warehouse pushes a bounded window; whatever is still
	// outstanding afterwards is abandoned.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.PusherDrainWindow)
	defer cancelDrain()
	if !dispatcher.Drain(drainCtx) {
		logger.Warn("commit pusher drain window expired, abandoning in-flight pushes")
	}

	// Retire the accumulated overlay: the next process lifetime rebuilds
	// snapshots from fresh warehouse fetches and must not double-apply
	// these deltas.
	invalidateCtx, cancelInvalidate := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelInvalidate()
	if err := ledger.InvalidateCacheScope(invalidateCtx); err != nil {
		logger.Error("failed to invalidate ledger cache scope", slog.String("error", err.Error()))
		return err
	}
	logger.Info("ledger cache scope invalidated, shutdown complete")
	return nil
}

// buildLedger picks the durable ledger backend: postgres when a DSN is
// configured, otherwise the JSON file ledger.
func buildLedger(ctx context.Context, cfg Config, logger *slog.Logger) (invports.Ledger, func()) {
	if cfg.PostgresDSN != "" {
		db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err == nil {
			if err := platformmigrations.Run(db); err != nil {
				logger.Warn("failed to migrate ledger schema, falling back to file ledger", slog.String("error", err.Error()))
			} else if sqlDB, err := db.DB(); err == nil {
				logger.Info("ledger configured with postgres")
				return invpostgres.NewLedger(db), func() { _ = sqlDB.Close() }
			}
		} else {
			logger.Warn("failed to connect to postgres, falling back to file ledger", slog.String("error", err.Error()))
		}
	}
	logger.Info("ledger configured with file store", slog.String("path", cfg.LedgerFile))
	return invfile.NewLedger(cfg.LedgerFile), func() {}
}

// buildDispatcher prefers durable Temporal commit pushes and falls back
// to the in-process pool, mirroring the workflow availability check.
func buildDispatcher(cfg Config, instruments *platformobservability.Instruments, warehouse invports.StockOfRecord, ledger invports.Ledger, logger *slog.Logger) (invports.CommitDispatcher, func()) {
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, running pooled commit pusher", slog.String("error", err.Error()))
	} else {
		logger.Info("Temporal commit dispatch enabled", slog.String("namespace", cfg.TemporalNamespace))
		return invworkflows.NewTemporalDispatcher(temporalClient, ledger, logger), temporalClient.Close
	}
	pool := invworkflows.NewPooledDispatcher(warehouse, ledger,
		invworkflows.WithLogger(logger),
		invworkflows.WithWorkers(cfg.PusherWorkers),
		invworkflows.WithQueueCapacity(cfg.PusherQueueSize),
		invworkflows.WithCommitTimeout(cfg.WarehouseTimeout),
	)
	return pool, func() {}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(instruments.Logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
