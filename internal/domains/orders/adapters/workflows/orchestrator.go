// Package workflows provides the replay orchestrators: an inline
// single-concurrency runner and a durable Temporal-backed variant.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	orderworkflows "github.com/thirty33/foodshop-go/internal/durable/temporal/workflows/orders"
	"github.com/thirty33/foodshop-go/internal/shared/queue"
)

var (
	_ ports.ReplayOrchestrator = (*TemporalReplayOrchestrator)(nil)
	_ ports.ReplayOrchestrator = (*InlineReplayOrchestrator)(nil)
)

// InlineReplayOrchestrator pushes the replay tasks through the gateway
// directly, one at a time, without durable orchestration.
type InlineReplayOrchestrator struct {
	gateway ports.Gateway
}

// NewInlineReplayOrchestrator wraps the gateway for synchronous execution.
func NewInlineReplayOrchestrator(gateway ports.Gateway) *InlineReplayOrchestrator {
	return &InlineReplayOrchestrator{gateway: gateway}
}

// ReplayOrder runs the tasks sequentially. Per-task failures are
// collected; only a nil receiver is a hard error.
func (o *InlineReplayOrchestrator) ReplayOrder(ctx context.Context, input ports.ReplayInput) (ports.ReplayResult, error) {
	if o == nil || o.gateway == nil {
		return ports.ReplayResult{}, errors.New("inline replay orchestrator not configured")
	}
	runner := queue.NewRunner(func(ctx context.Context, task ports.ReplayTask) error {
		_, err := o.gateway.CreateOrUpdate(ctx, input.Date, input.DelegateUser, []ports.LineInput{{
			ProductID: task.ProductID,
			Quantity:  task.Quantity,
		}})
		return err
	}, queue.WithProgress(input.Progress))

	outcomes := runner.Run(ctx, input.Tasks)
	result := ports.ReplayResult{Results: make([]ports.ReplayItemResult, 0, len(outcomes))}
	for _, outcome := range outcomes {
		result.Results = append(result.Results, ports.ReplayItemResult{ProductID: outcome.Task.ProductID, Err: outcome.Err})
	}
	return result, nil
}

// TemporalReplayOrchestrator starts the replay workflow on a Temporal
// cluster so an interrupted replay resumes where it stopped.
type TemporalReplayOrchestrator struct {
	client    client.Client
	taskQueue string
}

// NewTemporalReplayOrchestrator wires a Temporal client into the orchestrator.
func NewTemporalReplayOrchestrator(c client.Client) *TemporalReplayOrchestrator {
	return &TemporalReplayOrchestrator{client: c, taskQueue: orderworkflows.OrderReplayTaskQueue}
}

// ReplayOrder executes the durable replay workflow and maps its
// serialized outcomes back onto the port types. Progress callbacks are
// not streamed across the workflow boundary; callers get the settled
// results in one batch.
func (o *TemporalReplayOrchestrator) ReplayOrder(ctx context.Context, input ports.ReplayInput) (ports.ReplayResult, error) {
	if o == nil || o.client == nil {
		return ports.ReplayResult{}, errors.New("temporal replay orchestrator not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	lines := make([]orderworkflows.ReplayLine, 0, len(input.Tasks))
	for _, task := range input.Tasks {
		lines = append(lines, orderworkflows.ReplayLine{ProductID: task.ProductID, Quantity: task.Quantity})
	}
	options := client.StartWorkflowOptions{
		ID:        buildReplayWorkflowID(input),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderReplayWorkflow,
		orderworkflows.OrderReplayWorkflowInput{
			Date:         input.Date,
			DelegateUser: input.DelegateUser,
			Lines:        lines,
			TraceID:      traceComponent,
		},
	)
	if err != nil {
		// A duplicate replay for the same order joins the in-flight run.
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return ports.ReplayResult{}, err
		}
		run = o.client.GetWorkflow(ctx, options.ID, alreadyStarted.RunId)
	}
	var workflowResult orderworkflows.OrderReplayWorkflowResult
	if err := run.Get(ctx, &workflowResult); err != nil {
		return ports.ReplayResult{}, err
	}
	result := ports.ReplayResult{Results: make([]ports.ReplayItemResult, 0, len(workflowResult.Results))}
	for _, lineResult := range workflowResult.Results {
		item := ports.ReplayItemResult{ProductID: lineResult.ProductID}
		if lineResult.ErrorMessage != "" {
			item.Err = errors.New(lineResult.ErrorMessage)
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

// buildReplayWorkflowID keys the workflow by order identity so repeated
// clicks for the same dispatch date converge on one run.
func buildReplayWorkflowID(input ports.ReplayInput) string {
	if delegate := strings.TrimSpace(input.DelegateUser); delegate != "" {
		return fmt.Sprintf("order-replay-%s-%s", input.Date, delegate)
	}
	return fmt.Sprintf("order-replay-%s", input.Date)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
