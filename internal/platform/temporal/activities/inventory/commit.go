package inventory

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

const (
	// PushCommitActivityName pushes one absolute stock value to the warehouse.
	PushCommitActivityName = "inventory.activities.PushCommit"
	// FlagOperationFailedActivityName records a failed push on the ledger operation.
	FlagOperationFailedActivityName = "inventory.activities.FlagOperationFailed"
)

// Activities groups activities that operate on the inventory bounded context.
type Activities struct {
	warehouse ports.StockOfRecord
	ledger    ports.Ledger
}

// NewActivities wires the inventory collaborators into the Temporal activities bundle.
func NewActivities(warehouse ports.StockOfRecord, ledger ports.Ledger) *Activities {
	return &Activities{warehouse: warehouse, ledger: ledger}
}

// PushCommit writes the new stock value to the warehouse.
func (a *Activities) PushCommit(ctx context.Context, cmd ports.CommitCommand) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.warehouse == nil {
		logger.Error("push commit activity not initialized", "operationId", cmd.OperationID)
		return errors.New("push commit activity not initialized")
	}
	logger.Info("PushCommit activity started", "productId", cmd.ProductID, "operationId", cmd.OperationID)
	if err := a.warehouse.Commit(ctx, cmd.ProductID, cmd.NewStock); err != nil {
		logger.Error("PushCommit activity failed", "operationId", cmd.OperationID, "error", err)
		return err
	}
	logger.Info("PushCommit activity completed", "productId", cmd.ProductID, "operationId", cmd.OperationID)
	return nil
}

// FlagOperationFailed clears the ok flag on the operation whose push failed.
func (a *Activities) FlagOperationFailed(ctx context.Context, operationID string) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.ledger == nil {
		logger.Error("flag operation activity not initialized", "operationId", operationID)
		return errors.New("flag operation activity not initialized")
	}
	if err := a.ledger.FailByOperation(ctx, operationID); err != nil {
		logger.Error("FlagOperationFailed activity failed", "operationId", operationID, "error", err)
		return err
	}
	logger.Info("FlagOperationFailed activity completed", "operationId", operationID)
	return nil
}
