// Command sweep runs a single moderation expiry sweep and exits. It exists
// for deployments that prefer a cron job over the server's background ticker.
package main

import (
	"context"
	"log"
	"time"

	"bullpen/internal/config"
	"bullpen/internal/database"
	"bullpen/internal/moderation"
	"bullpen/internal/observability"
	"bullpen/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.InitLogging(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// The sweep only reads and writes database rows, so no Redis connection
	// is made.
	engine := moderation.NewEngine(
		nil,
		repository.NewActionRepository(db),
		repository.NewStatusRepository(db),
		repository.NewMessageRepository(db),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	purged, err := engine.CleanupExpiredActions(ctx)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Sweep completed, %d actions deactivated", purged)
}
