package stockgatewayserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	invmemory "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/memory"
	invworkflows "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/workflows"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/application"
	stockhttpmapper "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/http/mapper"
)

type fixedWarehouse struct {
	stock map[int64]int64
}

func (w *fixedWarehouse) Fetch(_ context.Context, productID int64) (int64, error) {
	return w.stock[productID], nil
}

func (w *fixedWarehouse) Commit(_ context.Context, _ int64, _ int64) error {
	return nil
}

func newTestRouter(t *testing.T, stock map[int64]int64) (*gin.Engine, *invworkflows.PooledDispatcher) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	warehouse := &fixedWarehouse{stock: stock}
	ledger := invmemory.NewLedger()
	dispatcher := invworkflows.NewPooledDispatcher(warehouse, ledger, invworkflows.WithWorkers(1))
	service := application.NewService(invmemory.NewSnapshotCache(warehouse), ledger, dispatcher)
	router := NewRouter(ApiHandleFunctions{StockAPI: NewStockAPI(service)})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		dispatcher.Drain(ctx)
	})
	return router, dispatcher
}

func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetStock_ReturnsBareInteger(t *testing.T) {
	router, _ := newTestRouter(t, map[int64]int64{1: 100})

	rec := performJSON(router, http.MethodGet, "/stock/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "100", rec.Body.String())
}

func TestGetStock_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/stock/abc", "/stock/0", "/stock/-3"} {
		rec := performJSON(router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestRetrieveStock_AcceptedMovement(t *testing.T) {
	router, _ := newTestRouter(t, map[int64]int64{1: 100})

	rec := performJSON(router, http.MethodPost, "/stock/retrieve",
		stockhttpmapper.MovementRequest{ProductID: 1, Amount: 30})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stockhttpmapper.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(1), resp.ProductID)
	require.Equal(t, int64(70), resp.Stock)
	require.NotEmpty(t, resp.OperationID)
}

func TestRetrieveStock_InsufficientStock(t *testing.T) {
	router, _ := newTestRouter(t, map[int64]int64{1: 10})

	rec := performJSON(router, http.MethodPost, "/stock/retrieve",
		stockhttpmapper.MovementRequest{ProductID: 1, Amount: 50})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "not enough stock", problem["detail"])
}

func TestRetrieveStock_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/stock/retrieve", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRestock_AlwaysAccepted(t *testing.T) {
	router, _ := newTestRouter(t, map[int64]int64{2: 0})

	rec := performJSON(router, http.MethodPost, "/stock/restock",
		stockhttpmapper.MovementRequest{ProductID: 2, Amount: 500})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stockhttpmapper.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(500), resp.Stock)

	rec = performJSON(router, http.MethodGet, "/stock/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "500", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := performJSON(router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
