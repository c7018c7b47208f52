package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger is an in-memory operation log for development and tests. The
// mutex serializes mutations the same way the durable adapters do.
type Ledger struct {
	mu         sync.RWMutex
	operations []domain.Operation
}

// NewLedger constructs an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// ListActions returns the counted deltas for the product, oldest first.
func (l *Ledger) ListActions(_ context.Context, productID int64) []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	actions := make([]int64, 0, len(l.operations))
	for _, op := range l.operations {
		if op.ProductID == productID && op.Counted() {
			actions = append(actions, op.Action)
		}
	}
	return actions
}

// Append records a new pending operation and returns its identifier.
func (l *Ledger) Append(_ context.Context, at time.Time, productID, action int64) (string, error) {
	op := domain.Operation{
		ID:        uuid.NewString(),
		Time:      at,
		ProductID: productID,
		Action:    action,
		Ok:        true,
		InCache:   true,
	}
	l.mu.Lock()
	l.operations = append(l.operations, op)
	l.mu.Unlock()
	return op.ID, nil
}

// FailByOperation clears the ok flag of a single operation.
func (l *Ledger) FailByOperation(_ context.Context, operationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.operations {
		if l.operations[i].ID == operationID {
			l.operations[i].Ok = false
			return nil
		}
	}
	return nil
}

// FailByProduct clears the ok flag of every operation for the product.
func (l *Ledger) FailByProduct(_ context.Context, productID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.operations {
		if l.operations[i].ProductID == productID {
			l.operations[i].Ok = false
		}
	}
	return nil
}

// InvalidateCacheScope retires every operation from the overlay.
func (l *Ledger) InvalidateCacheScope(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.operations {
		l.operations[i].InCache = false
	}
	return nil
}

// List returns a copy of every operation, oldest first.
func (l *Ledger) List(_ context.Context) ([]domain.Operation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Operation, len(l.operations))
	copy(out, l.operations)
	return out, nil
}
