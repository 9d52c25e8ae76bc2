package main

// Background sweep over pending enhancements. The API detects finished
// generator output lazily on reads; this binary walks pending rows on an
// interval so completion lands even when nobody is polling.

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"enhancehub-backend/internal/bootstrap"
	"enhancehub-backend/internal/shared/config"
	"enhancehub-backend/internal/sweep"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	batch := envInt("SWEEP_BATCH_SIZE", 0)
	sweeper := sweep.New(app.EnhancementsService, cfg.SweepInterval, batch)

	log.Printf("sweeper started interval=%s batch=%d", sweeper.Interval, sweeper.BatchSize)
	sweeper.Run(ctx)
	log.Printf("sweeper stopped")

	if app.DB != nil {
		app.DB.Close()
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
