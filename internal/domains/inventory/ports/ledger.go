package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
)

// Ledger is the durable operation log behind effective-stock computation.
//
// Implementations must serialize mutations relative to each other: two
// concurrent Appends may never lose a record. Reads may run concurrently
// with writes but must observe a consistent state of the store.
type Ledger interface {
	// ListActions returns the deltas of every operation for the product
	// that still counts toward effective stock (ok and in-cache). A read
	// or decode failure degrades to an empty slice instead of an error so
	// callers fall back to the raw snapshot value.
	ListActions(ctx context.Context, productID int64) []int64

	// Append records a new pending operation and returns its identifier.
	// The record must be durable before Append returns.
	Append(ctx context.Context, at time.Time, productID, action int64) (string, error)

	// FailByOperation clears the ok flag of a single operation. Unknown
	// identifiers are a no-op.
	FailByOperation(ctx context.Context, operationID string) error

	// FailByProduct clears the ok flag of every operation for the product.
	FailByProduct(ctx context.Context, productID int64) error

	// InvalidateCacheScope clears the in-cache flag on every operation,
	// retiring the whole overlay. Called once, at shutdown.
	InvalidateCacheScope(ctx context.Context) error

	// List returns every operation in the ledger, oldest first.
	List(ctx context.Context) ([]domain.Operation, error)
}
