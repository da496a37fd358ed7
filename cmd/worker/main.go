// worker sweeps expired entries out of the revoked_tokens table. Revocation
// reads ignore expired rows, so the sweep only reclaims space; the interval
// comes from WORKER_SWEEP_INTERVAL.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmetic-compliance-platform/backend/internal/blacklist"
	"cosmetic-compliance-platform/backend/internal/config"
	"cosmetic-compliance-platform/backend/internal/db"
	"cosmetic-compliance-platform/backend/internal/logging"
)

const sweepTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "cosy-worker")

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	store := blacklist.NewPostgresStore(dbConn)
	interval := cfg.SweepInterval()
	logger.Info("revocation janitor started", "interval", interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("revocation janitor stopped")
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			removed, err := store.Sweep(sweepCtx)
			cancel()
			if err != nil {
				logger.Warn("sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("swept expired revocations", "removed", removed)
			}
		}
	}
}
