package application

import (
	"context"
	"sync"
	"time"

	invtypes "github.com/Apurer/go-stock-gateway/internal/domains/inventory/application/types"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/domain"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

// Service orchestrates the inventory bounded context use cases: effective
// stock reconciliation, retrievals, and restocks.
//
// The sufficiency check and the ledger append of a retrieval run inside a
// per-product critical section. Without it two concurrent retrievals can
// validate against the same effective stock and jointly over-commit.
type Service struct {
	snapshots  ports.SnapshotCache
	ledger     ports.Ledger
	dispatcher ports.CommitDispatcher
	now        func() time.Time

	mu       sync.Mutex
	products map[int64]*sync.Mutex
}

// NewService wires the inventory service with its collaborators.
func NewService(snapshots ports.SnapshotCache, ledger ports.Ledger, dispatcher ports.CommitDispatcher) *Service {
	return &Service{
		snapshots:  snapshots,
		ledger:     ledger,
		dispatcher: dispatcher,
		now:        time.Now,
		products:   make(map[int64]*sync.Mutex),
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// EffectiveStock computes the snapshot value plus the counted ledger
// overlay. The derived value is never cached; staleness is bounded by the
// last ledger write.
func (s *Service) EffectiveStock(ctx context.Context, input invtypes.ProductIdentifier) (int64, error) {
	if input.ProductID <= 0 {
		return 0, mapError(domain.ErrInvalidProduct)
	}
	return s.effectiveStock(ctx, input.ProductID)
}

// Retrieve validates the withdrawal against effective stock, appends the
// negative delta, and dispatches the warehouse commit without waiting for
// it. The caller is answered before the commit outcome is known.
func (s *Service) Retrieve(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error) {
	if err := validateMovement(input); err != nil {
		return nil, mapError(err)
	}

	unlock := s.lockProduct(input.ProductID)
	stock, err := s.effectiveStock(ctx, input.ProductID)
	if err != nil {
		unlock()
		return nil, err
	}
	if input.Amount > stock {
		unlock()
		return nil, mapError(domain.ErrInsufficientStock)
	}
	operationID, err := s.ledger.Append(ctx, s.now().UTC(), input.ProductID, -input.Amount)
	unlock()
	if err != nil {
		return nil, err
	}

	remaining := stock - input.Amount
	s.dispatcher.Dispatch(ctx, ports.CommitCommand{
		ProductID:   input.ProductID,
		NewStock:    remaining,
		OperationID: operationID,
	})
	return &invtypes.MovementResult{
		OperationID:    operationID,
		ProductID:      input.ProductID,
		EffectiveStock: remaining,
	}, nil
}

// Restock records the positive delta unconditionally and dispatches the
// warehouse commit.
func (s *Service) Restock(ctx context.Context, input invtypes.MovementInput) (*invtypes.MovementResult, error) {
	if err := validateMovement(input); err != nil {
		return nil, mapError(err)
	}

	unlock := s.lockProduct(input.ProductID)
	stock, err := s.effectiveStock(ctx, input.ProductID)
	if err != nil {
		unlock()
		return nil, err
	}
	operationID, err := s.ledger.Append(ctx, s.now().UTC(), input.ProductID, input.Amount)
	unlock()
	if err != nil {
		return nil, err
	}

	next := stock + input.Amount
	s.dispatcher.Dispatch(ctx, ports.CommitCommand{
		ProductID:   input.ProductID,
		NewStock:    next,
		OperationID: operationID,
	})
	return &invtypes.MovementResult{
		OperationID:    operationID,
		ProductID:      input.ProductID,
		EffectiveStock: next,
	}, nil
}

func (s *Service) effectiveStock(ctx context.Context, productID int64) (int64, error) {
	stock, err := s.snapshots.GetOrFetch(ctx, productID)
	if err != nil {
		return 0, err
	}
	for _, action := range s.ledger.ListActions(ctx, productID) {
		stock += action
	}
	return stock, nil
}

// lockProduct acquires the per-product mutex, creating it on first use.
// Product cardinality is assumed bounded; the lock map is never pruned.
func (s *Service) lockProduct(productID int64) func() {
	s.mu.Lock()
	lock, ok := s.products[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.products[productID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func validateMovement(input invtypes.MovementInput) error {
	if input.ProductID <= 0 {
		return domain.ErrInvalidProduct
	}
	if input.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
