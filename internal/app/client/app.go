// Package client is the composition root for the FoodShop web client
// SDK: it wires the HTTP client, session, catalog, cart, history, and
// replay services with observability and the replay orchestrator.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	foodshopclient "github.com/thirty33/foodshop-go/internal/clients/http/foodshop"
	catalogapi "github.com/thirty33/foodshop-go/internal/domains/catalog/adapters/api"
	catalogapp "github.com/thirty33/foodshop-go/internal/domains/catalog/application"
	ordersapi "github.com/thirty33/foodshop-go/internal/domains/orders/adapters/api"
	ordersobs "github.com/thirty33/foodshop-go/internal/domains/orders/adapters/observability"
	ordersworkflows "github.com/thirty33/foodshop-go/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/thirty33/foodshop-go/internal/domains/orders/application"
	ordersdomain "github.com/thirty33/foodshop-go/internal/domains/orders/domain"
	ordersports "github.com/thirty33/foodshop-go/internal/domains/orders/ports"
	sessionapi "github.com/thirty33/foodshop-go/internal/domains/session/adapters/api"
	sessionmemory "github.com/thirty33/foodshop-go/internal/domains/session/adapters/memory"
	sessionapp "github.com/thirty33/foodshop-go/internal/domains/session/application"
	platformobservability "github.com/thirty33/foodshop-go/internal/platform/observability"
	"github.com/thirty33/foodshop-go/internal/shared/notify"
)

// Config carries the settings the SDK needs at construction time.
type Config struct {
	// BaseURL points at the ordering backend, e.g. "http://localhost:8080".
	BaseURL string
	// Notifier receives the user-facing toasts. Defaults to a slog adapter.
	Notifier notify.Notifier
	// Viewport reports the viewport at interaction time for the side-cart
	// auto-open heuristic. Defaults to a desktop-sized viewport.
	Viewport func() ordersdomain.Viewport
}

// App bundles the wired client services.
type App struct {
	API     *foodshopclient.Client
	Session *sessionapp.Service
	Catalog *catalogapp.Service
	Cart    ordersports.CartService
	History *ordersapp.History
	Replay  *ordersapp.Replay
}

// New wires the full client stack. The returned shutdown function closes
// the catalog triggers, the Temporal client when one was dialed, and the
// observability pipelines.
func New(ctx context.Context, cfg Config) (*App, func(context.Context) error, error) {
	const serviceName = "foodshop-client"
	instruments, shutdownObservability, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := instruments.Logger

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NewSlogNotifier(logger)
	}
	viewport := cfg.Viewport
	if viewport == nil {
		viewport = func() ordersdomain.Viewport { return ordersdomain.Viewport{} }
	}

	tokens := sessionmemory.NewTokenStore()
	// The unauthorized hook fires before the session service exists, so it
	// goes through an indirection filled in below.
	var onUnauthorized func()
	api, err := foodshopclient.New(cfg.BaseURL,
		foodshopclient.WithTokenSource(foodshopclient.TokenFunc(func() string {
			token, _ := tokens.Load(context.Background())
			return token
		})),
		foodshopclient.WithUnauthorizedHandler(func() {
			if onUnauthorized != nil {
				onUnauthorized()
			}
		}),
	)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownObservability(shutdownCtx)
		return nil, nil, err
	}

	session := sessionapp.NewService(sessionapi.NewGateway(api), tokens, sessionapp.WithNotifier(notifier))
	onUnauthorized = func() { session.Expire(context.Background()) }

	catalog := catalogapp.NewService(catalogapi.NewGateway(api), catalogapp.WithNotifier(notifier))

	orderGateway := ordersapi.NewGateway(api)
	cart := ordersapp.NewCart(orderGateway,
		ordersapp.WithCartNotifier(notifier),
		ordersapp.WithCapabilities(session),
		ordersapp.WithViewport(viewport),
	)
	cartService := ordersobs.NewCart(cart,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.domains.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.domains.orders.application")),
	)

	var orchestrator ordersports.ReplayOrchestrator = ordersworkflows.NewInlineReplayOrchestrator(orderGateway)
	cleanupTemporal := func() {}
	if temporalClient, err := connectTemporalClient(instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline replay", slog.String("error", err.Error()))
	} else {
		cleanupTemporal = temporalClient.Close
		orchestrator = ordersworkflows.NewTemporalReplayOrchestrator(temporalClient)
		logger.Info("Temporal replay enabled", slog.String("namespace", envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)))
	}

	history := ordersapp.NewHistory(orderGateway, ordersapp.WithHistoryNotifier(notifier))
	replay := ordersapp.NewReplay(orderGateway, orchestrator, cart,
		ordersapp.WithReplayNotifier(notifier),
		ordersapp.WithMenuPatcher(catalog),
	)

	app := &App{
		API:     api,
		Session: session,
		Catalog: catalog,
		Cart:    cartService,
		History: history,
		Replay:  replay,
	}
	shutdown := func(ctx context.Context) error {
		catalog.Close()
		history.Close()
		cleanupTemporal()
		return shutdownObservability(ctx)
	}
	return app, shutdown, nil
}

func connectTemporalClient(instruments *platformobservability.Instruments) (client.Client, error) {
	if os.Getenv("TEMPORAL_DISABLED") == "1" || os.Getenv("TEMPORAL_ADDRESS") == "" {
		return nil, errors.New("temporal not configured")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  os.Getenv("TEMPORAL_ADDRESS"),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
