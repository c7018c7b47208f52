package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	invmemory "github.com/Apurer/go-stock-gateway/internal/domains/inventory/adapters/memory"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

type recordingWarehouse struct {
	mu        sync.Mutex
	commits   []ports.CommitCommand
	commitErr error
	block     chan struct{}
}

func (w *recordingWarehouse) Fetch(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (w *recordingWarehouse) Commit(ctx context.Context, productID, newStock int64) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.commitErr != nil {
		return w.commitErr
	}
	w.commits = append(w.commits, ports.CommitCommand{ProductID: productID, NewStock: newStock})
	return nil
}

func TestPooledDispatcher_PushesCommit(t *testing.T) {
	warehouse := &recordingWarehouse{}
	ledger := invmemory.NewLedger()
	d := NewPooledDispatcher(warehouse, ledger, WithWorkers(2))

	d.Dispatch(context.Background(), ports.CommitCommand{ProductID: 1, NewStock: 70, OperationID: "op-1"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, d.Drain(ctx))

	warehouse.mu.Lock()
	defer warehouse.mu.Unlock()
	require.Len(t, warehouse.commits, 1)
	require.Equal(t, int64(70), warehouse.commits[0].NewStock)
}

func TestPooledDispatcher_CommitFailureFlagsOperation(t *testing.T) {
	warehouse := &recordingWarehouse{commitErr: errors.New("push refused")}
	ledger := invmemory.NewLedger()
	ctx := context.Background()

	operationID, err := ledger.Append(ctx, time.Now().UTC(), 2, -5)
	require.NoError(t, err)

	d := NewPooledDispatcher(warehouse, ledger, WithWorkers(1))
	d.Dispatch(ctx, ports.CommitCommand{ProductID: 2, NewStock: 5, OperationID: operationID})

	drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.True(t, d.Drain(drainCtx))

	operations, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, operations, 1)
	require.False(t, operations[0].Ok)
	require.Empty(t, ledger.ListActions(ctx, 2))
}

func TestPooledDispatcher_DrainTimesOutOnStuckPush(t *testing.T) {
	warehouse := &recordingWarehouse{block: make(chan struct{})}
	ledger := invmemory.NewLedger()
	d := NewPooledDispatcher(warehouse, ledger, WithWorkers(1), WithCommitTimeout(time.Minute))

	d.Dispatch(context.Background(), ports.CommitCommand{ProductID: 1, NewStock: 1, OperationID: "op-stuck"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.False(t, d.Drain(ctx))
	close(warehouse.block)
}

func TestPooledDispatcher_DropsDispatchAfterDrain(t *testing.T) {
	warehouse := &recordingWarehouse{}
	ledger := invmemory.NewLedger()
	d := NewPooledDispatcher(warehouse, ledger, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, d.Drain(ctx))

	// Must not panic on the closed queue, and must not push.
	d.Dispatch(context.Background(), ports.CommitCommand{ProductID: 3, NewStock: 9, OperationID: "op-late"})

	warehouse.mu.Lock()
	defer warehouse.mu.Unlock()
	require.Empty(t, warehouse.commits)
}
