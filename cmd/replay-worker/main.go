package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	foodshopclient "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	ordersapi "github.com/thirty33/foodshop-go/internal/domains/orders/adapters/api"
	orderworkflows "github.com/thirty33/foodshop-go/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/thirty33/foodshop-go/internal/platform/observability"
	orderactivities "github.com/thirty33/foodshop-go/internal/platform/temporal/activities/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "foodshop-replay-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	gateway, err := buildOrderGateway()
	if err != nil {
		logger.Error("failed to configure order gateway", slog.String("error", err.Error()))
		os.Exit(1)
	}
	activities := orderactivities.NewActivities(gateway)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderReplayTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderReplayWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderReplayWorkflowName})
	w.RegisterActivityWithOptions(activities.UpsertOrderLine, activity.RegisterOptions{Name: orderactivities.UpsertOrderLineActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderReplayTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// buildOrderGateway wires an API-backed order gateway so replay activities
// write through the same HTTP contract the client uses.
func buildOrderGateway() (*ordersapi.Gateway, error) {
	baseURL := envOrDefault("FOODSHOP_API_URL", "http://localhost:8080")
	token := os.Getenv("FOODSHOP_API_TOKEN")
	apiClient, err := foodshopclient.New(baseURL,
		foodshopclient.WithTokenSource(foodshopclient.TokenFunc(func() string { return token })),
	)
	if err != nil {
		return nil, err
	}
	return ordersapi.NewGateway(apiClient), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
