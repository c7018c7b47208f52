package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(filepath.Join(t.TempDir(), "operations-ledger.json"))
}

func TestLedger_AppendIsDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operations-ledger.json")
	ledger := NewLedger(path)
	ctx := context.Background()

	id, err := ledger.Append(ctx, time.Now().UTC(), 1, -50)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// A fresh instance over the same path sees the record.
	reopened := NewLedger(path)
	require.Equal(t, []int64{-50}, reopened.ListActions(ctx, 1))

	operations, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, operations, 1)
	require.Equal(t, id, operations[0].ID)
	require.True(t, operations[0].Ok)
	require.True(t, operations[0].InCache)
}

func TestLedger_FieldLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operations-ledger.json")
	ledger := NewLedger(path)

	_, err := ledger.Append(context.Background(), time.Now().UTC(), 7, 20)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	for _, key := range []string{"id", "time", "ok", "productId", "action", "inCache"} {
		require.Contains(t, raw[0], key)
	}
	require.Equal(t, float64(7), raw[0]["productId"])
	require.Equal(t, float64(20), raw[0]["action"])
}

func TestLedger_MissingFileReadsEmpty(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	require.Empty(t, ledger.ListActions(ctx, 1))
	operations, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Empty(t, operations)
}

func TestLedger_CorruptFileDegradesToEmptyOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operations-ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	ledger := NewLedger(path)

	require.Empty(t, ledger.ListActions(context.Background(), 1))
	_, err := ledger.List(context.Background())
	require.Error(t, err)
}

func TestLedger_FailByOperation(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	id, err := ledger.Append(ctx, time.Now().UTC(), 2, -5)
	require.NoError(t, err)
	require.NoError(t, ledger.FailByOperation(ctx, id))
	require.Empty(t, ledger.ListActions(ctx, 2))

	require.NoError(t, ledger.FailByOperation(ctx, id))
	require.NoError(t, ledger.FailByOperation(ctx, "missing"))

	operations, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, operations, 1)
	require.False(t, operations[0].Ok)
}

func TestLedger_FailByProduct(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := ledger.Append(ctx, now, 1, 10)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, now, 1, -4)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, now, 2, 3)
	require.NoError(t, err)

	require.NoError(t, ledger.FailByProduct(ctx, 1))
	require.Empty(t, ledger.ListActions(ctx, 1))
	require.Equal(t, []int64{3}, ledger.ListActions(ctx, 2))
}

func TestLedger_InvalidateCacheScopeKeepsRecords(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := ledger.Append(ctx, now, 1, 10)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, now, 2, -3)
	require.NoError(t, err)

	require.NoError(t, ledger.InvalidateCacheScope(ctx))
	require.Empty(t, ledger.ListActions(ctx, 1))
	require.Empty(t, ledger.ListActions(ctx, 2))

	operations, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, operations, 2)
	for _, op := range operations {
		require.True(t, op.Ok)
		require.False(t, op.InCache)
	}
}

func TestLedger_ConcurrentAppendsLoseNothing(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Append(ctx, time.Now().UTC(), 1, -1)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, ledger.ListActions(ctx, 1), writers)
}
