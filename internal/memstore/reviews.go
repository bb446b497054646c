package memstore

import (
	"context"
	"time"

	"github.com/lealre/moviereviews/internal/mongodb"
)

// UpsertReview replaces rating, title, body and updatedAt of the existing
// review for the pair, or inserts a new one. Id and CreatedAt survive updates.
func (s *Store) UpsertReview(ctx context.Context, review mongodb.ReviewDb) (mongodb.ReviewDb, bool, error) {
	if err := s.check("UpsertReview", review.Username); err != nil {
		return mongodb.ReviewDb{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(review.MovieSlug, review.Username)
	ts := now()

	if r, ok := s.reviews[key]; ok {
		r.val.Rating = review.Rating
		r.val.Title = review.Title
		r.val.Body = review.Body
		r.val.UpdatedAt = ts
		return r.val, false, nil
	}

	review.Id = newId()
	review.CreatedAt = ts
	review.UpdatedAt = ts
	s.reviews[key] = &row[mongodb.ReviewDb]{val: review, seq: s.next()}

	return review, true, nil
}

func (s *Store) GetReview(ctx context.Context, movieSlug, username string) (mongodb.ReviewDb, error) {
	if err := s.check("GetReview", username); err != nil {
		return mongodb.ReviewDb{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[pairKey(movieSlug, username)]
	if !ok {
		return mongodb.ReviewDb{}, mongodb.ErrRecordNotFound
	}
	return r.val, nil
}

func (s *Store) reviewRows(movieSlug string) []*row[mongodb.ReviewDb] {
	var rows []*row[mongodb.ReviewDb]
	for _, r := range s.reviews {
		if r.val.MovieSlug == movieSlug {
			rows = append(rows, r.snapshot())
		}
	}
	return rows
}

func (s *Store) GetReviewsByMovie(ctx context.Context, movieSlug string, skip, limit int) ([]mongodb.ReviewDb, error) {
	if err := s.check("GetReviewsByMovie", movieSlug); err != nil {
		return []mongodb.ReviewDb{}, err
	}

	s.mu.RLock()
	rows := s.reviewRows(movieSlug)
	s.mu.RUnlock()

	newestFirst(rows, func(r mongodb.ReviewDb) time.Time { return r.CreatedAt })

	if skip > 0 {
		if skip >= len(rows) {
			return []mongodb.ReviewDb{}, nil
		}
		rows = rows[skip:]
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return values(rows), nil
}

func (s *Store) CountReviewsByMovie(ctx context.Context, movieSlug string) (int, error) {
	if err := s.check("CountReviewsByMovie", movieSlug); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviewRows(movieSlug)), nil
}

func (s *Store) DeleteReview(ctx context.Context, movieSlug, username string) (bool, error) {
	if err := s.check("DeleteReview", username); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(movieSlug, username)
	if _, ok := s.reviews[key]; !ok {
		return false, nil
	}
	delete(s.reviews, key)
	return true, nil
}

func (s *Store) DeleteReviewsByMovie(ctx context.Context, movieSlug string) (int64, error) {
	if err := s.check("DeleteReviewsByMovie", movieSlug); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key, r := range s.reviews {
		if r.val.MovieSlug == movieSlug {
			delete(s.reviews, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) AggregateReviews(ctx context.Context, movieSlug string) (float64, int, error) {
	if err := s.check("AggregateReviews", movieSlug); err != nil {
		return 0, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	count := 0
	for _, r := range s.reviews {
		if r.val.MovieSlug == movieSlug {
			sum += r.val.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}
