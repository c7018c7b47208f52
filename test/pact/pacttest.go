//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Two contracts live here: the gateway as a consumer of the external
// warehouse, and the gateway HTTP API as a provider for its own callers.
const (
	WarehouseProviderName = "warehouse-service"
	GatewayConsumerName   = "stock-gateway"

	GatewayProviderName = "stock-gateway-api"
	PortalConsumerName  = "stock-portal"

	StateProductStocked     = "product 42 has stock on record"
	StateWarehouseWritable  = "warehouse accepts stock commits"
	StateProductUnknown     = "no product with id 404"
	StateGatewayStockSeeded = "product 1 has effective stock 100"
)

const (
	StockedProductID int64 = 42
	StockedAmount    int64 = 100
	UnknownProductID int64 = 404

	SeededProductID int64 = 1
	SeededStock     int64 = 100
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// WarehousePactFile is the pact between the gateway and the warehouse.
func WarehousePactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), GatewayConsumerName+"-"+WarehouseProviderName+".json")
}

// GatewayPactFile is the pact between the portal and the gateway API.
func GatewayPactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), PortalConsumerName+"-"+GatewayProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
