package watchlists

import (
	"context"
	"errors"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

/*
Toggle removes the movie from the user's watchlist when it is there and adds
it otherwise.

The delete runs first, so a present entry is always removed in one write.
When nothing was deleted an insert follows; the unique (username, movieSlug)
index turns the insert of a concurrent toggle into a duplicate key error,
which is reported as "added" since the entry is present. Two concurrent
toggles that both find nothing to delete therefore leave exactly one entry
and neither fails.
*/
func Toggle(ctx context.Context, db mongodb.WatchlistStore, username, movieSlug, movieTitle string) (string, error) {
	if username == "" || movieSlug == "" {
		return "", ErrInvalidEntry
	}

	removed, err := db.DeleteWatchlistEntry(ctx, username, movieSlug)
	if err != nil {
		return "", err
	}
	if removed {
		return ActionRemoved, nil
	}

	_, err = db.AddWatchlistEntry(ctx, mongodb.WatchlistDb{
		Username:   username,
		MovieSlug:  movieSlug,
		MovieTitle: movieTitle,
	})
	if err != nil && !errors.Is(err, mongodb.ErrDuplicateKey) {
		return "", err
	}

	return ActionAdded, nil
}

// Add puts the movie on the watchlist; ErrEntryAlreadyExist when present.
func Add(ctx context.Context, db movieWatchlistStore, username, movieSlug string) (WatchlistEntry, error) {
	if username == "" || movieSlug == "" {
		return WatchlistEntry{}, ErrInvalidEntry
	}

	movie, err := db.GetMovieBySlug(ctx, movieSlug)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return WatchlistEntry{}, ErrMovieNotFound
		}
		return WatchlistEntry{}, err
	}

	entry, err := db.AddWatchlistEntry(ctx, mongodb.WatchlistDb{
		Username:   username,
		MovieSlug:  movie.Slug,
		MovieTitle: movie.Title,
	})
	if err != nil {
		if errors.Is(err, mongodb.ErrDuplicateKey) {
			return WatchlistEntry{}, ErrEntryAlreadyExist
		}
		return WatchlistEntry{}, err
	}

	logx.FromContext(ctx).Info("watchlist entry added", zap.String("movieSlug", movie.Slug))
	return MapDbWatchlistToApiEntry(entry), nil
}

// Remove takes the movie off the watchlist. It does not require the movie to
// still exist.
func Remove(ctx context.Context, db mongodb.WatchlistStore, username, movieSlug string) error {
	if username == "" || movieSlug == "" {
		return ErrInvalidEntry
	}

	removed, err := db.DeleteWatchlistEntry(ctx, username, movieSlug)
	if err != nil {
		return err
	}
	if !removed {
		return ErrEntryNotFound
	}
	return nil
}

// IsInWatchlist reports false when the store cannot be reached.
func IsInWatchlist(ctx context.Context, db mongodb.WatchlistStore, username, movieSlug string) bool {
	_, err := db.GetWatchlistEntry(ctx, username, movieSlug)
	if err != nil {
		if !errors.Is(err, mongodb.ErrRecordNotFound) {
			logx.FromContext(ctx).Warn("watchlist lookup failed", zap.Error(err))
		}
		return false
	}
	return true
}

// GetUserWatchlist returns the user's entries, most recently added first.
func GetUserWatchlist(ctx context.Context, db mongodb.WatchlistStore, username string) ([]WatchlistEntry, error) {
	entriesDb, err := db.GetWatchlistByUser(ctx, username)
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("watchlist unavailable, returning empty list", zap.Error(err))
			return []WatchlistEntry{}, nil
		}
		return []WatchlistEntry{}, err
	}

	entries := make([]WatchlistEntry, 0, len(entriesDb))
	for _, e := range entriesDb {
		entries = append(entries, MapDbWatchlistToApiEntry(e))
	}
	return entries, nil
}
