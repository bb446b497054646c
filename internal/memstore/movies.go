package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

func copyMovie(m mongodb.MovieDb) mongodb.MovieDb {
	m.Cast = append([]string{}, m.Cast...)
	return m
}

func (s *Store) GetMovieBySlug(ctx context.Context, slug string) (mongodb.MovieDb, error) {
	if err := s.check("GetMovieBySlug", slug); err != nil {
		return mongodb.MovieDb{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.movies[slug]
	if !ok {
		return mongodb.MovieDb{}, mongodb.ErrRecordNotFound
	}
	return copyMovie(r.val), nil
}

func (s *Store) GetMovies(ctx context.Context, query mongodb.MovieQuery) ([]mongodb.MovieDb, error) {
	if err := s.check("GetMovies", query.Q); err != nil {
		return []mongodb.MovieDb{}, err
	}

	s.mu.RLock()
	rows := make([]*row[mongodb.MovieDb], 0, len(s.movies))
	for _, r := range s.movies {
		if query.Q == "" || containsFold(r.val.Title, query.Q) {
			rows = append(rows, &row[mongodb.MovieDb]{val: copyMovie(r.val), seq: r.seq})
		}
	}
	s.mu.RUnlock()

	byInsertion(rows)
	switch query.Sort {
	case mongodb.MovieSortNewest:
		newestFirst(rows, func(m mongodb.MovieDb) time.Time { return m.CreatedAt })
	case mongodb.MovieSortHighest:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].val.AvgRating > rows[j].val.AvgRating })
	case mongodb.MovieSortMostReviewed:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].val.ReviewCount > rows[j].val.ReviewCount })
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].val.Title < rows[j].val.Title })
	}
	if query.Limit > 0 && len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}

	return values(rows), nil
}

func (s *Store) CountMovies(ctx context.Context) (int, error) {
	if err := s.check("CountMovies", ""); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies), nil
}

func (s *Store) AddMovie(ctx context.Context, movie mongodb.MovieDb) (mongodb.MovieDb, error) {
	if err := s.check("AddMovie", movie.Slug); err != nil {
		return mongodb.MovieDb{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.movies[movie.Slug]; exists {
		return mongodb.MovieDb{}, mongodb.ErrDuplicateKey
	}

	movie.AvgRating = 0
	movie.ReviewCount = 0
	movie.CreatedAt = now()
	movie = copyMovie(movie)
	s.movies[movie.Slug] = &row[mongodb.MovieDb]{val: movie, seq: s.next()}

	return copyMovie(movie), nil
}

func (s *Store) UpdateMovie(ctx context.Context, slug string, update mongodb.MovieUpdate) error {
	if err := s.check("UpdateMovie", slug); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.movies[slug]
	if !ok {
		return mongodb.ErrRecordNotFound
	}

	m := &r.val
	if update.Title != nil {
		m.Title = *update.Title
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.Director != nil {
		m.Director = *update.Director
	}
	if update.Year != nil {
		m.Year = *update.Year
	}
	if update.Cast != nil {
		m.Cast = append([]string{}, (*update.Cast)...)
	}
	if update.PhotoURL != nil {
		m.PhotoURL = *update.PhotoURL
	}

	return nil
}

func (s *Store) DeleteMovie(ctx context.Context, slug string) (bool, error) {
	if err := s.check("DeleteMovie", slug); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[slug]; !ok {
		return false, nil
	}
	delete(s.movies, slug)
	return true, nil
}

func (s *Store) SetMovieAggregate(ctx context.Context, slug string, avgRating float64, reviewCount int) error {
	if err := s.check("SetMovieAggregate", slug); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.movies[slug]
	if !ok {
		return mongodb.ErrRecordNotFound
	}
	r.val.AvgRating = avgRating
	r.val.ReviewCount = reviewCount
	return nil
}
