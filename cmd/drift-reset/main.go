// Command drift-reset force-reconciles products whose external stock has
// drifted from what the gateway believes. For every product id given on
// the command line it fails all of that product's ledger operations, so
// the overlay stops counting them and reads fall back to a fresh
// warehouse fetch on the next process lifetime.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	invfile "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/file"
	invpostgres "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/persistence/postgres"
	invports "github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
	platformpostgres "github.com/Apurer/go-stock-gateway/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if len(os.Args) < 2 {
		log.Fatal("usage: drift-reset <productId> [productId...]")
	}
	productIDs := make([]int64, 0, len(os.Args)-1)
	for _, arg := range os.Args[1:] {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			log.Fatalf("invalid product id %q", arg)
		}
		productIDs = append(productIDs, id)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ledger, cleanup := buildLedger(ctx, logger)
	defer cleanup()

	for _, id := range productIDs {
		if err := ledger.FailByProduct(ctx, id); err != nil {
			log.Fatalf("failed to reset product %d: %v", id, err)
		}
		log.Printf("ledger operations failed for product %d", id)
	}
}

func buildLedger(ctx context.Context, logger *slog.Logger) (invports.Ledger, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db != nil {
		return invpostgres.NewLedger(db), cleanup
	}
	path := strings.TrimSpace(os.Getenv("LEDGER_FILE"))
	if path == "" {
		path = "operations-ledger.json"
	}
	return invfile.NewLedger(path), cleanup
}
