package memstore

import (
	"context"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func (s *Store) AddWatchlistEntry(ctx context.Context, entry mongodb.WatchlistDb) (mongodb.WatchlistDb, error) {
	if err := s.check("AddWatchlistEntry", entry.Username); err != nil {
		return mongodb.WatchlistDb{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(entry.Username, entry.MovieSlug)
	if _, exists := s.watchlists[key]; exists {
		return mongodb.WatchlistDb{}, mongodb.ErrDuplicateKey
	}

	entry.AddedAt = now()
	entry.IsFavorite = true
	s.watchlists[key] = &row[mongodb.WatchlistDb]{val: entry, seq: s.next()}

	return entry, nil
}

func (s *Store) GetWatchlistEntry(ctx context.Context, username, movieSlug string) (mongodb.WatchlistDb, error) {
	if err := s.check("GetWatchlistEntry", username); err != nil {
		return mongodb.WatchlistDb{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.watchlists[pairKey(username, movieSlug)]
	if !ok {
		return mongodb.WatchlistDb{}, mongodb.ErrRecordNotFound
	}
	return r.val, nil
}

func (s *Store) DeleteWatchlistEntry(ctx context.Context, username, movieSlug string) (bool, error) {
	if err := s.check("DeleteWatchlistEntry", username); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(username, movieSlug)
	if _, ok := s.watchlists[key]; !ok {
		return false, nil
	}
	delete(s.watchlists, key)
	return true, nil
}

func (s *Store) DeleteWatchlistByMovie(ctx context.Context, movieSlug string) (int64, error) {
	if err := s.check("DeleteWatchlistByMovie", movieSlug); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, r := range s.watchlists {
		if r.val.MovieSlug == movieSlug {
			delete(s.watchlists, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) GetWatchlistByUser(ctx context.Context, username string) ([]mongodb.WatchlistDb, error) {
	if err := s.check("GetWatchlistByUser", username); err != nil {
		return []mongodb.WatchlistDb{}, err
	}

	s.mu.RLock()
	var rows []*row[mongodb.WatchlistDb]
	for _, r := range s.watchlists {
		if r.val.Username == username {
			rows = append(rows, r.snapshot())
		}
	}
	s.mu.RUnlock()

	newestFirst(rows, func(w mongodb.WatchlistDb) time.Time { return w.AddedAt })
	return values(rows), nil
}

func (s *Store) GetWatchlistUsernames(ctx context.Context, movieSlug string) ([]string, error) {
	if err := s.check("GetWatchlistUsernames", movieSlug); err != nil {
		return []string{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := map[string]struct{}{}
	for _, r := range s.watchlists {
		if r.val.MovieSlug == movieSlug && r.val.Username != "" {
			set[r.val.Username] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

func (s *Store) DistinctWatchlistUsernames(ctx context.Context) ([]string, error) {
	if err := s.check("DistinctWatchlistUsernames", ""); err != nil {
		return []string{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := map[string]struct{}{}
	for _, r := range s.watchlists {
		if r.val.Username != "" {
			set[r.val.Username] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}
