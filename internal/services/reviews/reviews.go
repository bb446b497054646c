package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/lealre/moviereviews/internal/generics"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/notifications"
	"github.com/lealre/moviereviews/internal/worker"
	"go.uber.org/zap"
)

const defaultPageSize = 20

/*
SubmitReview stores the user's review of a movie, creating it on the first
submission and replacing rating, title and body on later ones. The review id
and createdAt of the first submission are kept.

After the write the movie aggregate is recomputed from the full review set.
A rating of at least notifications.HighRatingThreshold then notifies the
movie's watchlist owners; fanout problems are logged and never fail the
submission.
*/
func SubmitReview(ctx context.Context, db mongodb.Store, pool *worker.Pool, req SubmitReviewRequest) (Review, error) {
	if err := validateSubmit(req); err != nil {
		return Review{}, err
	}

	logger := logx.FromContext(ctx).With(
		zap.String("movieSlug", req.MovieSlug),
		zap.String("username", req.Username),
	)

	movie, err := db.GetMovieBySlug(ctx, req.MovieSlug)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Review{}, ErrMovieNotFound
		}
		return Review{}, err
	}

	stored, created, err := db.UpsertReview(ctx, mongodb.ReviewDb{
		MovieSlug: req.MovieSlug,
		Username:  req.Username,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		return Review{}, fmt.Errorf("upsert review: %w", err)
	}

	outcome := "updated"
	if created {
		outcome = "created"
	}
	metrics.NewMetrics().ReviewsSubmitted.WithLabelValues(outcome).Inc()

	aggregate, err := RecomputeAggregate(ctx, db, req.MovieSlug)
	if err != nil {
		return Review{}, err
	}

	logger.Info("review stored",
		zap.String("outcome", outcome),
		zap.Float64("rating", req.Rating),
		zap.Float64("avgRating", aggregate.AvgRating),
		zap.Int("reviewCount", aggregate.ReviewCount),
	)

	if req.Rating >= notifications.HighRatingThreshold {
		notifications.NotifyWatchlistOwners(ctx, db, pool, notifications.FanoutRequest{
			MovieSlug:   movie.Slug,
			MovieTitle:  movie.Title,
			Rating:      req.Rating,
			ReviewTitle: req.Title,
		})
	}

	return MapDbReviewToApiReview(stored), nil
}

// DeleteReview removes the user's review of the movie and recomputes the
// movie aggregate.
func DeleteReview(ctx context.Context, db mongodb.Store, movieSlug, username string) (Aggregate, error) {
	deleted, err := db.DeleteReview(ctx, movieSlug, username)
	if err != nil {
		return Aggregate{}, err
	}
	if !deleted {
		return Aggregate{}, ErrReviewNotFound
	}

	return RecomputeAggregate(ctx, db, movieSlug)
}

func GetUserReview(ctx context.Context, db mongodb.ReviewStore, movieSlug, username string) (Review, error) {
	review, err := db.GetReview(ctx, movieSlug, username)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, err
	}
	return MapDbReviewToApiReview(review), nil
}

// GetReviewsForMovie returns one page of the movie's reviews, newest first.
// page starts at 1; non-positive page or size fall back to defaults.
func GetReviewsForMovie(ctx context.Context, db mongodb.Store, movieSlug string, page, size int) (generics.Page[Review], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	empty := generics.Page[Review]{Page: page, Size: 0, Content: []Review{}}

	if _, err := db.GetMovieBySlug(ctx, movieSlug); err != nil {
		switch {
		case errors.Is(err, mongodb.ErrRecordNotFound):
			return empty, ErrMovieNotFound
		case errors.Is(err, mongodb.ErrStoreUnavailable):
			logx.FromContext(ctx).Warn("reviews unavailable, returning empty page", zap.Error(err))
			return empty, nil
		}
		return empty, err
	}

	total, err := db.CountReviewsByMovie(ctx, movieSlug)
	if err != nil {
		return empty, err
	}

	reviewsDb, err := db.GetReviewsByMovie(ctx, movieSlug, (page-1)*size, size)
	if err != nil {
		return empty, err
	}

	content := make([]Review, 0, len(reviewsDb))
	for _, r := range reviewsDb {
		content = append(content, MapDbReviewToApiReview(r))
	}

	return generics.NewPage(content, page, size, total), nil
}
