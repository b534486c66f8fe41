package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	platformpostgres "github.com/thirty33/foodshop-go/internal/platform/postgres"
	stubpostgres "github.com/thirty33/foodshop-go/internal/stubserver/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	store := stubpostgres.NewStore(db)
	purged, err := store.PurgeExpiredSessions(ctx, time.Now())
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	log.Printf("session purge completed, removed %d sessions", purged)
}
