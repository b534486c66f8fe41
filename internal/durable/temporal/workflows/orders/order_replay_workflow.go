package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/thirty33/foodshop-go/internal/platform/temporal/activities/orders"
)

const (
	// OrderReplayWorkflowName is the public identifier for registering the workflow.
	OrderReplayWorkflowName = "orders.workflows.Replay"
	// OrderReplayTaskQueue is the queue consumed by the worker processing replay workflows.
	OrderReplayTaskQueue = "ORDER_REPLAY"
)

// ReplayLine is one product-quantity pair to push onto the target order.
type ReplayLine struct {
	ProductID int64
	Quantity  int
}

// OrderReplayWorkflowInput carries the whole replay request.
type OrderReplayWorkflowInput struct {
	Date         string
	DelegateUser string
	Lines        []ReplayLine
	TraceID      string
}

// ReplayLineResult is the settled outcome of one replayed line. Errors
// travel as strings so the result survives workflow serialization.
type ReplayLineResult struct {
	ProductID    int64
	ErrorMessage string
}

// OrderReplayWorkflowResult summarizes a completed replay.
type OrderReplayWorkflowResult struct {
	Results []ReplayLineResult
}

// OrderReplayWorkflow pushes the lines of a previous order onto the
// target date one at a time. A failing line never aborts the ones behind
// it; each outcome is recorded and the caller decides how to surface
// partial failure.
func OrderReplayWorkflow(ctx workflow.Context, input OrderReplayWorkflowInput) (*OrderReplayWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderReplayWorkflow started", withTraceID(input.TraceID, "date", input.Date, "lines", len(input.Lines))...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	result := &OrderReplayWorkflowResult{Results: make([]ReplayLineResult, 0, len(input.Lines))}
	for _, line := range input.Lines {
		activityInput := orderactivities.UpsertOrderLineInput{
			Date:         input.Date,
			DelegateUser: input.DelegateUser,
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
		}
		lineResult := ReplayLineResult{ProductID: line.ProductID}
		err := workflow.ExecuteActivity(ctx, orderactivities.UpsertOrderLineActivityName, activityInput).Get(ctx, nil)
		if err != nil {
			logger.Error("order line replay failed", withTraceID(input.TraceID, "productId", line.ProductID, "error", err)...)
			lineResult.ErrorMessage = err.Error()
		}
		result.Results = append(result.Results, lineResult)
	}

	logger.Info("OrderReplayWorkflow completed", withTraceID(input.TraceID, "date", input.Date)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
