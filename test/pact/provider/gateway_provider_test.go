//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	stockgatewayserver "github.com/Apurer/go-stock-gateway/go"
	invmemory "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/memory"
	invobs "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/observability"
	invworkflows "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/workflows"
	invapp "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application"
	pacttest "github.com/Apurer/go-stock-gateway/test/pact"
)

func TestStockGatewayProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.GatewayPactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateGatewayStockSeeded: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(map[int64]int64{pacttest.SeededProductID: pacttest.SeededStock})
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.GatewayProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(map[int64]int64{pacttest.SeededProductID: pacttest.SeededStock})
			return nil
		},
	})
	require.NoError(t, err)
}

type stubWarehouse struct {
	stock map[int64]int64
}

func (w *stubWarehouse) Fetch(_ context.Context, productID int64) (int64, error) {
	return w.stock[productID], nil
}

func (w *stubWarehouse) Commit(_ context.Context, _ int64, _ int64) error {
	return nil
}

// contractProviderApp serves a freshly wired gateway per provider state so
// earlier interactions cannot leak ledger entries into later ones.
type contractProviderApp struct {
	mu     sync.RWMutex
	router *gin.Engine
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(nil)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(stock map[int64]int64) {
	warehouse := &stubWarehouse{stock: stock}
	ledger := invmemory.NewLedger()
	dispatcher := invworkflows.NewPooledDispatcher(warehouse, ledger, invworkflows.WithWorkers(1))
	service := invobs.New(invapp.NewService(invmemory.NewSnapshotCache(warehouse), ledger, dispatcher))
	router := stockgatewayserver.NewRouter(stockgatewayserver.ApiHandleFunctions{
		StockAPI: stockgatewayserver.NewStockAPI(service),
	})

	a.mu.Lock()
	a.router = router
	a.mu.Unlock()
}
