package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
	invworkflows "github.com/Apurer/go-stock-gateway/internal/platform/temporal/workflows/inventory"
)

var (
	_ ports.CommitDispatcher = (*PooledDispatcher)(nil)
	_ ports.CommitDispatcher = (*TemporalDispatcher)(nil)
)

// PooledDispatcher pushes warehouse commits from a bounded worker pool.
// Every dispatched command is tracked so shutdown can drain in-flight
// pushes before retiring the ledger overlay. A full queue blocks the
// dispatching request instead of spawning an unbounded goroutine per
// commit.
type PooledDispatcher struct {
	warehouse     ports.StockOfRecord
	ledger        ports.Ledger
	logger        *slog.Logger
	workers       int
	commitTimeout time.Duration

	queue     chan ports.CommitCommand
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// PoolOption configures the pooled dispatcher.
type PoolOption func(*PooledDispatcher)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) PoolOption {
	return func(d *PooledDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithWorkers sets the number of concurrent push workers.
func WithWorkers(n int) PoolOption {
	return func(d *PooledDispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithQueueCapacity sets how many commands may wait for a worker.
func WithQueueCapacity(n int) PoolOption {
	return func(d *PooledDispatcher) {
		if n > 0 {
			d.queue = make(chan ports.CommitCommand, n)
		}
	}
}

// WithCommitTimeout bounds each warehouse push.
func WithCommitTimeout(timeout time.Duration) PoolOption {
	return func(d *PooledDispatcher) {
		if timeout > 0 {
			d.commitTimeout = timeout
		}
	}
}

// NewPooledDispatcher wires the pool and starts its workers.
func NewPooledDispatcher(warehouse ports.StockOfRecord, ledger ports.Ledger, opts ...PoolOption) *PooledDispatcher {
	d := &PooledDispatcher{
		warehouse:     warehouse,
		ledger:        ledger,
		logger:        slog.Default(),
		workers:       4,
		commitTimeout: 30 * time.Second,
		queue:         make(chan ports.CommitCommand, 256),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	for i := 0; i < d.workers; i++ {
		go d.worker()
	}
	return d
}

// Dispatch enqueues the commit for asynchronous execution. After Drain
// has closed the intake, late commands are dropped with a warning; the
// pending operation they belong to stays in the ledger either way.
func (d *PooledDispatcher) Dispatch(_ context.Context, cmd ports.CommitCommand) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("commit dispatcher closed, dropping push",
			slog.Int64("productId", cmd.ProductID),
			slog.String("operationId", cmd.OperationID))
		return
	}
	d.wg.Add(1)
	d.queue <- cmd
}

// Drain closes the intake and waits for tracked pushes to finish or ctx
// to expire, reporting whether the pool fully drained.
func (d *PooledDispatcher) Drain(ctx context.Context) bool {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *PooledDispatcher) worker() {
	for cmd := range d.queue {
		d.push(cmd)
		d.wg.Done()
	}
}

// push runs detached from the request that produced the command; the
// request has already been answered.
func (d *PooledDispatcher) push(cmd ports.CommitCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), d.commitTimeout)
	defer cancel()
	if err := d.warehouse.Commit(ctx, cmd.ProductID, cmd.NewStock); err != nil {
		d.logger.Warn("warehouse commit failed, flagging operation",
			slog.Int64("productId", cmd.ProductID),
			slog.String("operationId", cmd.OperationID),
			slog.String("error", err.Error()))
		if failErr := d.ledger.FailByOperation(ctx, cmd.OperationID); failErr != nil {
			d.logger.Error("failed to flag operation after commit failure",
				slog.String("operationId", cmd.OperationID),
				slog.String("error", failErr.Error()))
		}
		return
	}
	d.logger.Info("warehouse commit pushed",
		slog.Int64("productId", cmd.ProductID),
		slog.Int64("newStock", cmd.NewStock),
		slog.String("operationId", cmd.OperationID))
}

// TemporalDispatcher starts a durable commit-push workflow per command.
// The workflow outlives this process, so Drain has nothing to wait for.
type TemporalDispatcher struct {
	client    client.Client
	ledger    ports.Ledger
	logger    *slog.Logger
	taskQueue string
}

// NewTemporalDispatcher wires a Temporal client into the dispatcher.
func NewTemporalDispatcher(c client.Client, ledger ports.Ledger, logger *slog.Logger) *TemporalDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemporalDispatcher{
		client:    c,
		ledger:    ledger,
		logger:    logger,
		taskQueue: invworkflows.CommitPushTaskQueue,
	}
}

// Dispatch starts the commit-push workflow without waiting for its
// result. When even starting the workflow fails the operation is flagged
// failed, matching the commit-failure bookkeeping.
func (d *TemporalDispatcher) Dispatch(ctx context.Context, cmd ports.CommitCommand) {
	if d == nil || d.client == nil {
		return
	}
	// The request context ends when the handler answers; the push must not
	// be canceled with it.
	ctx = context.WithoutCancel(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("stock-commit-%s", cmd.OperationID),
		TaskQueue: d.taskQueue,
	}
	_, err := d.client.ExecuteWorkflow(ctx, options, invworkflows.CommitPushWorkflowName,
		invworkflows.CommitPushWorkflowInput{Command: cmd})
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &already) {
		// The workflow ID is derived from the operation, so a duplicate
		// dispatch means the push is in flight. Nothing to flag.
		d.logger.Info("commit-push workflow already running",
			slog.String("operationId", cmd.OperationID))
		return
	}
	if err != nil {
		d.logger.Warn("failed to start commit-push workflow, flagging operation",
			slog.String("operationId", cmd.OperationID),
			slog.String("error", err.Error()))
		if failErr := d.ledger.FailByOperation(ctx, cmd.OperationID); failErr != nil {
			d.logger.Error("failed to flag operation after workflow start failure",
				slog.String("operationId", cmd.OperationID),
				slog.String("error", failErr.Error()))
		}
	}
}

// Drain reports true immediately; dispatched workflows are durable on the
// cluster and survive this process.
func (d *TemporalDispatcher) Drain(context.Context) bool { return true }
