package memstore

import (
	"context"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func (s *Store) UpsertView(ctx context.Context, username, movieSlug, movieTitle string) error {
	if err := s.check("UpsertView", username); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	key := pairKey(username, movieSlug)
	if r, ok := s.history[key]; ok {
		r.val.MovieTitle = movieTitle
		r.val.LastViewedAt = ts
		r.val.ViewCount++
		r.seq = s.next()
		return nil
	}

	s.history[key] = &row[mongodb.ViewHistoryDb]{
		val: mongodb.ViewHistoryDb{
			Username:      username,
			MovieSlug:     movieSlug,
			MovieTitle:    movieTitle,
			FirstViewedAt: ts,
			LastViewedAt:  ts,
			ViewCount:     1,
		},
		seq: s.next(),
	}
	return nil
}

func (s *Store) GetViewHistory(ctx context.Context, username string, limit int) ([]mongodb.ViewHistoryDb, error) {
	if err := s.check("GetViewHistory", username); err != nil {
		return []mongodb.ViewHistoryDb{}, err
	}

	s.mu.RLock()
	var rows []*row[mongodb.ViewHistoryDb]
	for _, r := range s.history {
		if r.val.Username == username {
			rows = append(rows, r.snapshot())
		}
	}
	s.mu.RUnlock()

	newestFirst(rows, func(h mongodb.ViewHistoryDb) time.Time { return h.LastViewedAt })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return values(rows), nil
}
