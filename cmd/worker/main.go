package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	warehouseclient "github.com/Apurer/go-stock-gateway/internal/clients/http/warehouse"
	warehouseadapter "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/external/warehouse"
	invfile "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/file"
	invpostgres "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/postgres"
	invports "github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
	platformmigrations "github.com/Apurer/go-stock-gateway/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-stock-gateway/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-stock-gateway/internal/platform/postgres"
	invactivities "github.com/Apurer/go-stock-gateway/internal/platform/temporal/activities/inventory"
	invworkflows "github.com/Apurer/go-stock-gateway/internal/platform/temporal/workflows/inventory"
)

func main() {
	ctx := context.Background()
	const serviceName = "stock-gateway-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	warehouseHTTP, err := warehouseclient.NewClient(os.Getenv("WAREHOUSE_BASE_URL"), &http.Client{Timeout: warehouseclient.DefaultTimeout})
	if err != nil {
		logger.Error("failed to configure warehouse client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	warehouse := warehouseadapter.NewAdapter(warehouseHTTP)

	ledger, cleanupLedger := buildLedger(ctx, logger)
	defer cleanupLedger()
	activities := invactivities.NewActivities(warehouse, ledger)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, invworkflows.CommitPushTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(invworkflows.CommitPushWorkflow, workflow.RegisterOptions{Name: invworkflows.CommitPushWorkflowName})
	w.RegisterActivityWithOptions(activities.PushCommit, activity.RegisterOptions{Name: invactivities.PushCommitActivityName})
	w.RegisterActivityWithOptions(activities.FlagOperationFailed, activity.RegisterOptions{Name: invactivities.FlagOperationFailedActivityName})

	logger.Info("worker listening", slog.String("taskQueue", invworkflows.CommitPushTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildLedger(ctx context.Context, logger *slog.Logger) (invports.Ledger, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db != nil {
		if err := platformmigrations.Run(db); err != nil {
			logger.Warn("worker failed to migrate ledger schema, falling back to file ledger", slog.String("error", err.Error()))
		} else {
			logger.Info("worker ledger configured with postgres")
			return invpostgres.NewLedger(db), cleanup
		}
	}
	path := envOrDefault("LEDGER_FILE", "operations-ledger.json")
	logger.Info("worker ledger configured with file store", slog.String("path", path))
	return invfile.NewLedger(path), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
