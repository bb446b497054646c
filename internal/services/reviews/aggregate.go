package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
	"go.uber.org/zap"
)

type aggregateStore interface {
	AggregateReviews(ctx context.Context, movieSlug string) (float64, int, error)
	SetMovieAggregate(ctx context.Context, slug string, avgRating float64, reviewCount int) error
}

/*
RecomputeAggregate derives the movie's average rating and review count from
every review that references it and writes both onto the movie, replacing
whatever was there. A movie without reviews gets (0, 0).

The values are never adjusted incrementally, so a stale aggregate is fixed by
the next call. Concurrent calls for the same movie end with the result of the
last write.
*/
func RecomputeAggregate(ctx context.Context, db aggregateStore, movieSlug string) (Aggregate, error) {
	m := metrics.NewMetrics()

	avg, count, err := db.AggregateReviews(ctx, movieSlug)
	if err != nil {
		m.AggregateRecomputes.WithLabelValues("failed").Inc()
		return Aggregate{}, fmt.Errorf("aggregate reviews: %w", err)
	}

	if err := db.SetMovieAggregate(ctx, movieSlug, avg, count); err != nil {
		m.AggregateRecomputes.WithLabelValues("failed").Inc()
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Aggregate{}, ErrMovieNotFound
		}
		return Aggregate{}, fmt.Errorf("update movie aggregate: %w", err)
	}

	m.AggregateRecomputes.WithLabelValues("ok").Inc()
	return Aggregate{AvgRating: avg, ReviewCount: count}, nil
}

// RecomputeAllAggregates recomputes the aggregate of every movie on the pool
// and returns how many succeeded. Failures are logged per movie and do not
// stop the others; an error is returned only when listing the movies fails.
func RecomputeAllAggregates(ctx context.Context, db mongodb.Store, pool *worker.Pool) (int, error) {
	moviesDb, err := db.GetMovies(ctx, mongodb.MovieQuery{})
	if err != nil {
		return 0, fmt.Errorf("list movies: %w", err)
	}

	tasks := make([]worker.Task, len(moviesDb))
	for i, movie := range moviesDb {
		slug := movie.Slug
		tasks[i] = func(ctx context.Context) error {
			_, err := RecomputeAggregate(ctx, db, slug)
			return err
		}
	}

	logger := logx.FromContext(ctx)
	synced := 0
	for i, err := range pool.RunAll(ctx, tasks...) {
		if err != nil {
			logger.Warn("aggregate recompute failed",
				zap.String("movieSlug", moviesDb[i].Slug),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	return synced, nil
}
