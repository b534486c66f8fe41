// Package stub boots the self-contained ordering backend used for local
// development and contract testing of the food ordering client.
package stub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	platformobservability "github.com/thirty33/foodshop-go/internal/platform/observability"
	platformpostgres "github.com/thirty33/foodshop-go/internal/platform/postgres"
	"github.com/thirty33/foodshop-go/internal/stubserver"
	stubhttp "github.com/thirty33/foodshop-go/internal/stubserver/http"
	stubmemory "github.com/thirty33/foodshop-go/internal/stubserver/memory"
	stubpostgres "github.com/thirty33/foodshop-go/internal/stubserver/postgres"
)

// Run boots the stub ordering backend with observability and storage wired.
func Run(ctx context.Context) error {
	const serviceName = "foodshop-stub"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	store, cleanupStore := buildStore(ctx, logger)
	defer cleanupStore()

	if cfg.SessionPurgeIntervalMinute > 0 {
		go purgeSessionsLoop(ctx, store, logger, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute)
	}

	router := stubhttp.NewRouter(store, otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("stub backend listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("stub backend exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildStore(ctx context.Context, logger *slog.Logger) (stubserver.Store, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		return stubmemory.NewStore(), cleanup
	}
	store := stubpostgres.NewStore(db)
	if err := store.SeedDefaults(ctx); err != nil {
		logger.Warn("failed to seed postgres store, falling back to memory", slog.String("error", err.Error()))
		cleanup()
		return stubmemory.NewStore(), func() {}
	}
	logger.Info("stub store configured with postgres")
	return store, cleanup
}

func purgeSessionsLoop(ctx context.Context, store stubserver.Store, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.PurgeExpiredSessions(ctx, time.Now())
			if err != nil {
				logger.Error("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("purged expired sessions", slog.Int64("count", purged))
			}
		}
	}
}
