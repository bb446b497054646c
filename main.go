package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/server"
	"github.com/lealre/moviereviews/internal/worker"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "moviereviews: %v\n", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pool, err := worker.NewPool("notification-fanout", cfg.Worker.FanoutPoolSize)
	if err != nil {
		return fmt.Errorf("create fanout pool: %w", err)
	}
	defer pool.Shutdown(cfg.Server.ShutdownTimeout)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.NewServer(db, pool, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// openStore picks the store backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (mongodb.Store, func(), error) {
	logger := logx.L()

	if cfg.Store.Backend == config.StoreBackendMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	client, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return nil, nil, err
	}
	db := mongodb.NewDB(client, cfg.Mongo.Database)

	if cfg.Mongo.EnsureIndexes {
		if err := mongodb.CreateAllIndexes(ctx, db.Database(), false); err != nil {
			_ = db.Close(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}

	closeFn := func() {
		if err := db.Close(context.Background()); err != nil {
			logger.Warn("closing mongo client", zap.Error(err))
		}
	}
	return db, closeFn, nil
}
