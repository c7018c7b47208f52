package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingWarehouse struct {
	fetches atomic.Int64
	stock   int64
	err     error
}

func (w *countingWarehouse) Fetch(_ context.Context, _ int64) (int64, error) {
	n := w.fetches.Add(1)
	if w.err != nil {
		return 0, w.err
	}
	// Each fetch observes a different value so the winner is detectable.
	return w.stock + n - 1, nil
}

func (w *countingWarehouse) Commit(_ context.Context, _ int64, _ int64) error {
	return nil
}

func TestSnapshotCache_FetchesOncePerProduct(t *testing.T) {
	warehouse := &countingWarehouse{stock: 42}
	cache := NewSnapshotCache(warehouse)
	ctx := context.Background()

	first, err := cache.GetOrFetch(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(42), first)

	second, err := cache.GetOrFetch(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(1), warehouse.fetches.Load())
	require.Equal(t, 1, cache.Len())
}

func TestSnapshotCache_FetchErrorLeavesCacheEmpty(t *testing.T) {
	warehouse := &countingWarehouse{err: errors.New("unreachable")}
	cache := NewSnapshotCache(warehouse)

	_, err := cache.GetOrFetch(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, 0, cache.Len())

	warehouse.err = nil
	stock, err := cache.GetOrFetch(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), stock)
}

func TestSnapshotCache_ConcurrentFirstReadersAgree(t *testing.T) {
	// Racing first-time readers may each reach the warehouse, but every
	// caller must come away with the single stored value.
	warehouse := &countingWarehouse{stock: 100}
	cache := NewSnapshotCache(warehouse)
	ctx := context.Background()

	const readers = 32
	results := make([]int64, readers)
	errs := make([]error, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrFetch(ctx, 5)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, cache.Len())
	for _, r := range results[1:] {
		require.Equal(t, results[0], r)
	}
}
