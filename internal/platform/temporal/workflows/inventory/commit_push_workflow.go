package inventory

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	invactivities "github.com/Apurer/go-stock-gateway/internal/platform/temporal/activities/inventory"
	"github.com/Apurer/go-stock-gateway/internal/domains/inventory/ports"
)

const (
	// CommitPushWorkflowName is the public identifier for registering the workflow.
	CommitPushWorkflowName = "inventory.workflows.CommitPush"
	// CommitPushTaskQueue is the queue consumed by the worker processing commit pushes.
	CommitPushTaskQueue = "STOCK_COMMIT_PUSH"
)

// CommitPushWorkflowInput carries the commit command to execute durably.
type CommitPushWorkflowInput struct {
	Command ports.CommitCommand
}

// CommitPushWorkflow pushes one stock value to the warehouse. The push
// itself runs exactly one attempt: a failed commit is not retried, it is
// recorded on the originating ledger operation. Only the bookkeeping
// activity retries, so a transient ledger hiccup cannot lose the flag.
func CommitPushWorkflow(ctx workflow.Context, input CommitPushWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	cmd := input.Command
	logger.Info("CommitPushWorkflow started", "productId", cmd.ProductID, "operationId", cmd.OperationID)

	pushOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, pushOptions),
		invactivities.PushCommitActivityName, cmd,
	).Get(ctx, nil)
	if err == nil {
		logger.Info("CommitPushWorkflow completed", "productId", cmd.ProductID, "operationId", cmd.OperationID)
		return nil
	}

	logger.Warn("commit push failed, flagging operation", "operationId", cmd.OperationID, "error", err)
	flagOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	if flagErr := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, flagOptions),
		invactivities.FlagOperationFailedActivityName, cmd.OperationID,
	).Get(ctx, nil); flagErr != nil {
		logger.Error("CommitPushWorkflow could not flag operation", "operationId", cmd.OperationID, "error", flagErr)
		return flagErr
	}
	logger.Info("CommitPushWorkflow recorded failure", "operationId", cmd.OperationID)
	return nil
}
