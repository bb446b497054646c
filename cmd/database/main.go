package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

func main() {
	indexes := flag.Bool("indexes", false, "create indexes in the database if they do not exist")
	resetIndexes := flag.Bool("reset", false, "drop and recreate existing indexes (with -indexes)")
	deleteIndexes := flag.Bool("delete", false, "delete every index except _id (with -indexes)")
	superuser := flag.Bool("superuser", false, "create a superuser if it does not exist")
	flag.Parse()

	if !*indexes && !*superuser {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*indexes, *resetIndexes, *deleteIndexes, *superuser); err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
}

func run(indexes, resetIndexes, deleteIndexes, superuser bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logx.Init(cfg.Log.Level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbClient, err := mongodb.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		return err
	}
	db := mongodb.NewDB(dbClient, cfg.Mongo.Database)
	defer db.Close(context.Background())

	if indexes {
		if deleteIndexes {
			if err := mongodb.DeleteAllIndexes(ctx, db.Database()); err != nil {
				return fmt.Errorf("delete indexes: %w", err)
			}
			logger.Info("all indexes deleted")
		} else {
			if err := mongodb.CreateAllIndexes(ctx, db.Database(), resetIndexes); err != nil {
				return fmt.Errorf("create indexes: %w", err)
			}
			logger.Info("indexes created", zap.Bool("reset", resetIndexes))
		}
	}

	if superuser {
		if err := createSuperuser(ctx, db); err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
	}
	return nil
}

// createSuperuser adds an admin from SUPERUSER_USERNAME, SUPERUSER_EMAIL and
// SUPERUSER_PASSWORD. An existing user with that username is left as is.
func createSuperuser(ctx context.Context, db *mongodb.DB) error {
	username := strings.TrimSpace(os.Getenv("SUPERUSER_USERNAME"))
	email := strings.TrimSpace(os.Getenv("SUPERUSER_EMAIL"))
	password := os.Getenv("SUPERUSER_PASSWORD")

	if username == "" {
		username = "admin"
	}
	if password == "" {
		return errors.New("SUPERUSER_PASSWORD is required")
	}

	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		logx.FromContext(ctx).Info("superuser already exists", zap.String("username", username))
		return nil
	}
	if !errors.Is(err, mongodb.ErrRecordNotFound) {
		return fmt.Errorf("failed to check if user exists: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.AddUser(ctx, mongodb.UserDb{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      true,
		IsActive:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to add user to database: %w", err)
	}

	logx.FromContext(ctx).Info("superuser created", zap.String("username", username), zap.String("email", email))
	return nil
}
