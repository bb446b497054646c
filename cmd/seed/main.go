package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/movies"
	"go.uber.org/zap"
)

// Loads a JSON array of movies into the configured database. Movies whose
// slug already exists are skipped, so the command can be run repeatedly.
func main() {
	file := flag.String("file", "fixtures/movies.json", "path to a JSON array of movies")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(file string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logx.Init(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	requests, err := loadFixture(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbClient, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	db := mongodb.NewDB(dbClient, cfg.Mongo.Database)
	defer db.Close(context.Background())

	created, skipped := 0, 0
	for _, req := range requests {
		movie, err := movies.CreateMovie(ctx, db, req)
		switch {
		case errors.Is(err, movies.ErrMovieAlreadyExists):
			skipped++
		case err != nil:
			return fmt.Errorf("create movie %q: %w", req.Title, err)
		default:
			created++
			logger.Debug("movie seeded", zap.String("movieSlug", movie.Slug))
		}
	}

	logger.Info("seed finished", zap.Int("created", created), zap.Int("skipped", skipped))
	return nil
}

func loadFixture(path string) ([]movies.CreateMovieRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var requests []movies.CreateMovieRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return requests, nil
}
