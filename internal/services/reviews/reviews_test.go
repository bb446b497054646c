package reviews

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T, slugs ...string) (*memstore.Store, *worker.Pool) {
	t.Helper()

	ctx := context.Background()
	store := memstore.New()
	for _, slug := range slugs {
		_, err := store.AddMovie(ctx, mongodb.MovieDb{Slug: slug, Title: "Title of " + slug})
		require.NoError(t, err)
	}

	pool, err := worker.NewPool("test-fanout", 4)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Shutdown(time.Second) })

	return store, pool
}

func addToWatchlist(t *testing.T, store *memstore.Store, slug string, usernames ...string) {
	t.Helper()
	for _, username := range usernames {
		_, err := store.AddWatchlistEntry(context.Background(), mongodb.WatchlistDb{
			Username: username, MovieSlug: slug, MovieTitle: "Title of " + slug,
		})
		require.NoError(t, err)
	}
}

func submit(t *testing.T, store *memstore.Store, pool *worker.Pool, slug, username string, rating float64) Review {
	t.Helper()
	review, err := SubmitReview(context.Background(), store, pool, SubmitReviewRequest{
		MovieSlug: slug,
		Username:  username,
		Rating:    rating,
		Title:     fmt.Sprintf("%s rates %.1f", username, rating),
	})
	require.NoError(t, err)
	return review
}

func requireAggregate(t *testing.T, store *memstore.Store, slug string, avg float64, count int) {
	t.Helper()
	movie, err := store.GetMovieBySlug(context.Background(), slug)
	require.NoError(t, err)
	require.InDelta(t, avg, movie.AvgRating, 1e-9, "avgRating of %s", slug)
	require.Equal(t, count, movie.ReviewCount, "reviewCount of %s", slug)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Aggregate follows create, second reviewer and update", func(t *testing.T) {
		store, pool := setupStore(t, "inception")

		submit(t, store, pool, "inception", "alice", 5)
		requireAggregate(t, store, "inception", 5.0, 1)

		submit(t, store, pool, "inception", "bob", 3)
		requireAggregate(t, store, "inception", 4.0, 2)

		submit(t, store, pool, "inception", "alice", 1)
		requireAggregate(t, store, "inception", 2.0, 2)
	})

	t.Run("Resubmitting keeps the review identity", func(t *testing.T) {
		store, pool := setupStore(t, "inception")

		first := submit(t, store, pool, "inception", "alice", 2)
		time.Sleep(2 * time.Millisecond)
		second := submit(t, store, pool, "inception", "alice", 4)

		require.Equal(t, first.Id, second.Id)
		require.Equal(t, first.CreatedAt, second.CreatedAt)
		require.Equal(t, 4.0, second.Rating)

		total, err := store.CountReviewsByMovie(ctx, "inception")
		require.NoError(t, err)
		require.Equal(t, 1, total)
	})

	t.Run("Aggregate is the mean of every stored rating", func(t *testing.T) {
		store, pool := setupStore(t, "heat")

		ratings := []float64{1, 2.5, 3, 4.5, 5, 3.5, 2}
		sum := 0.0
		for i, rating := range ratings {
			submit(t, store, pool, "heat", fmt.Sprintf("user%d", i), rating)
			sum += rating
		}

		requireAggregate(t, store, "heat", sum/float64(len(ratings)), len(ratings))
	})

	t.Run("Concurrent submissions by one user count once", func(t *testing.T) {
		store, pool := setupStore(t, "inception")

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(rating float64) {
				defer wg.Done()
				_, err := SubmitReview(ctx, store, pool, SubmitReviewRequest{
					MovieSlug: "inception", Username: "alice", Rating: rating,
				})
				assert.NoError(t, err)
			}(float64(i%4 + 1))
		}
		wg.Wait()

		// Recompute once more so the check does not depend on write order.
		aggregate, err := RecomputeAggregate(ctx, store, "inception")
		require.NoError(t, err)
		require.Equal(t, 1, aggregate.ReviewCount)
	})

	t.Run("Validation cases", func(t *testing.T) {
		store, pool := setupStore(t, "inception")

		cases := []struct {
			name string
			req  SubmitReviewRequest
			err  error
		}{
			{"rating below 1", SubmitReviewRequest{MovieSlug: "inception", Username: "alice", Rating: 0}, ErrInvalidRating},
			{"rating above 5", SubmitReviewRequest{MovieSlug: "inception", Username: "alice", Rating: 5.5}, ErrInvalidRating},
			{"missing username", SubmitReviewRequest{MovieSlug: "inception", Rating: 3}, ErrInvalidReview},
			{"unknown movie", SubmitReviewRequest{MovieSlug: "missing", Username: "alice", Rating: 3}, ErrMovieNotFound},
		}

		for _, tc := range cases {
			_, err := SubmitReview(ctx, store, pool, tc.req)
			require.ErrorIs(t, err, tc.err, tc.name)
		}

		total, err := store.CountReviewsByMovie(ctx, "inception")
		require.NoError(t, err)
		require.Zero(t, total, "rejected submissions must not be stored")
	})
}

func TestSubmitReviewFanout(t *testing.T) {
	ctx := context.Background()

	unreadFor := func(t *testing.T, store *memstore.Store, username string) []mongodb.NotificationDb {
		t.Helper()
		ns, err := store.GetNotificationsByUser(ctx, username, true)
		require.NoError(t, err)
		return ns
	}

	t.Run("High rating notifies every watchlist owner once", func(t *testing.T) {
		store, pool := setupStore(t, "the-matrix")
		addToWatchlist(t, store, "the-matrix", "carol", "dave")

		submit(t, store, pool, "the-matrix", "eve", 5)

		for _, username := range []string{"carol", "dave"} {
			ns := unreadFor(t, store, username)
			require.Len(t, ns, 1, username)
			require.Equal(t, mongodb.NotificationTypeNewReview, ns[0].Type)
			require.Equal(t, "the-matrix", ns[0].MovieSlug)
			require.Equal(t, 5.0, ns[0].ReviewRating)
			require.False(t, ns[0].IsRead)
		}
		require.Empty(t, unreadFor(t, store, "eve"))
	})

	t.Run("Threshold is inclusive at 4.5", func(t *testing.T) {
		store, pool := setupStore(t, "the-matrix")
		addToWatchlist(t, store, "the-matrix", "carol")

		submit(t, store, pool, "the-matrix", "eve", 4.4)
		require.Empty(t, unreadFor(t, store, "carol"))

		submit(t, store, pool, "the-matrix", "frank", 4.5)
		require.Len(t, unreadFor(t, store, "carol"), 1)
	})

	t.Run("A failed delivery does not fail the review or the other deliveries", func(t *testing.T) {
		store, pool := setupStore(t, "the-matrix")
		addToWatchlist(t, store, "the-matrix", "carol", "dave")

		store.SetFault(func(op, key string) error {
			if op == "AddNotification" && key == "dave" {
				return mongodb.ErrStoreUnavailable
			}
			return nil
		})

		review := submit(t, store, pool, "the-matrix", "eve", 5)
		require.NotEmpty(t, review.Id)

		store.SetFault(nil)
		require.Len(t, unreadFor(t, store, "carol"), 1)
		require.Empty(t, unreadFor(t, store, "dave"))
		requireAggregate(t, store, "the-matrix", 5.0, 1)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("Deleting recomputes the aggregate down to zero", func(t *testing.T) {
		store, pool := setupStore(t, "inception")
		submit(t, store, pool, "inception", "alice", 5)
		submit(t, store, pool, "inception", "bob", 3)

		aggregate, err := DeleteReview(ctx, store, "inception", "alice")
		require.NoError(t, err)
		require.Equal(t, Aggregate{AvgRating: 3, ReviewCount: 1}, aggregate)

		aggregate, err = DeleteReview(ctx, store, "inception", "bob")
		require.NoError(t, err)
		require.Equal(t, Aggregate{}, aggregate)
		requireAggregate(t, store, "inception", 0, 0)
	})

	t.Run("Deleting a missing review", func(t *testing.T) {
		store, _ := setupStore(t, "inception")

		_, err := DeleteReview(ctx, store, "inception", "alice")
		require.ErrorIs(t, err, ErrReviewNotFound)
	})
}

func TestGetReviewsForMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("Pages newest first", func(t *testing.T) {
		store, pool := setupStore(t, "inception")
		for i := 0; i < 5; i++ {
			submit(t, store, pool, "inception", fmt.Sprintf("user%d", i), 3)
		}

		page, err := GetReviewsForMovie(ctx, store, "inception", 1, 2)
		require.NoError(t, err)
		require.Equal(t, 5, page.TotalResults)
		require.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Content, 2)
		require.Equal(t, "user4", page.Content[0].Username)

		last, err := GetReviewsForMovie(ctx, store, "inception", 3, 2)
		require.NoError(t, err)
		require.Len(t, last.Content, 1)
		require.Equal(t, "user0", last.Content[0].Username)
	})

	t.Run("Unknown movie", func(t *testing.T) {
		store, _ := setupStore(t)

		_, err := GetReviewsForMovie(ctx, store, "missing", 1, 10)
		require.ErrorIs(t, err, ErrMovieNotFound)
	})

	t.Run("Unavailable store gives an empty page", func(t *testing.T) {
		store, _ := setupStore(t, "inception")
		store.SetFault(func(op, key string) error { return mongodb.ErrStoreUnavailable })

		page, err := GetReviewsForMovie(ctx, store, "inception", 1, 10)
		require.NoError(t, err)
		require.Empty(t, page.Content)
	})
}

func TestRecomputeAllAggregates(t *testing.T) {
	ctx := context.Background()
	store, pool := setupStore(t, "heat", "inception", "alien")

	for _, r := range []mongodb.ReviewDb{
		{MovieSlug: "heat", Username: "alice", Rating: 4},
		{MovieSlug: "heat", Username: "bob", Rating: 2},
		{MovieSlug: "inception", Username: "alice", Rating: 5},
	} {
		_, _, err := store.UpsertReview(ctx, r)
		require.NoError(t, err)
	}
	// Stale value that the sync must overwrite.
	require.NoError(t, store.SetMovieAggregate(ctx, "alien", 3, 7))

	store.SetFault(func(op, key string) error {
		if op == "SetMovieAggregate" && key == "inception" {
			return mongodb.ErrStoreUnavailable
		}
		return nil
	})

	synced, err := RecomputeAllAggregates(ctx, store, pool)
	require.NoError(t, err)
	require.Equal(t, 2, synced)

	store.SetFault(nil)
	requireAggregate(t, store, "heat", 3, 2)
	requireAggregate(t, store, "alien", 0, 0)
	requireAggregate(t, store, "inception", 0, 0)
}
