package ports

import "context"

// CommitCommand asks the dispatcher to push a new absolute stock value to
// the warehouse on behalf of a ledger operation. When the push errors the
// operation is flagged failed; nothing else changes.
type CommitCommand struct {
	ProductID   int64
	NewStock    int64
	OperationID string
}

// CommitDispatcher hands warehouse commits off for asynchronous execution.
// Dispatch is fire-and-forget relative to the request that produced the
// command: the caller has already answered success by the time the push
// runs.
type CommitDispatcher interface {
	Dispatch(ctx context.Context, cmd CommitCommand)

	// Drain blocks until all dispatched commits have finished or ctx is
	// done, reporting whether the tracked work fully drained. Shutdown may
	// abandon whatever is still in flight after the drain window.
	Drain(ctx context.Context) bool
}
