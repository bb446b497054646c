package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/reviews"
	"github.com/lealre/moviereviews/internal/worker"
	"go.uber.org/zap"
)

// Recomputes every movie's avgRating and reviewCount from its reviews.
// Meant to run on a schedule to repair aggregates left stale by a failed
// write.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "routines: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logx.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	dbClient, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	db := mongodb.NewDB(dbClient, cfg.Mongo.Database)
	defer db.Close(context.Background())

	pool, err := worker.NewPool("aggregate-sync", cfg.Worker.FanoutPoolSize)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Shutdown(time.Minute)

	logger.Info("starting aggregate sync")
	start := time.Now()

	synced, err := reviews.RecomputeAllAggregates(ctx, db, pool)
	if err != nil {
		return fmt.Errorf("aggregate sync: %w", err)
	}

	logger.Info("aggregate sync completed",
		zap.Int("movies", synced),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
