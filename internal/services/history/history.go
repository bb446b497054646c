package history

import (
	"context"
	"errors"
	"time"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

const DefaultLimit = 20

type ViewHistoryEntry struct {
	MovieSlug     string    `json:"movieSlug"`
	MovieTitle    string    `json:"movieTitle"`
	FirstViewedAt time.Time `json:"firstViewedAt"`
	LastViewedAt  time.Time `json:"lastViewedAt"`
	ViewCount     int       `json:"viewCount"`
}

func MapDbViewHistoryToApiEntry(h mongodb.ViewHistoryDb) ViewHistoryEntry {
	return ViewHistoryEntry{
		MovieSlug:     h.MovieSlug,
		MovieTitle:    h.MovieTitle,
		FirstViewedAt: h.FirstViewedAt,
		LastViewedAt:  h.LastViewedAt,
		ViewCount:     h.ViewCount,
	}
}

// LogView records that the user opened the movie page. Anonymous views are
// ignored and store errors are only logged; the page must render anyway.
func LogView(ctx context.Context, db mongodb.ViewHistoryStore, username, movieSlug, movieTitle string) {
	if username == "" || movieSlug == "" {
		return
	}

	if err := db.UpsertView(ctx, username, movieSlug, movieTitle); err != nil {
		logx.FromContext(ctx).Warn("could not record movie view",
			zap.String("movieSlug", movieSlug),
			zap.Error(err),
		)
	}
}

// GetUserViewHistory returns the user's most recently viewed movies. A
// non-positive limit means DefaultLimit.
func GetUserViewHistory(ctx context.Context, db mongodb.ViewHistoryStore, username string, limit int) ([]ViewHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	historyDb, err := db.GetViewHistory(ctx, username, limit)
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("view history unavailable, returning empty list", zap.Error(err))
			return []ViewHistoryEntry{}, nil
		}
		return []ViewHistoryEntry{}, err
	}

	entries := make([]ViewHistoryEntry, 0, len(historyDb))
	for _, h := range historyDb {
		entries = append(entries, MapDbViewHistoryToApiEntry(h))
	}
	return entries, nil
}
