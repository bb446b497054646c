package movies

import (
	"context"
	"strings"
	"testing"

	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		slug  string
	}{
		{"Inception", "inception"},
		{"The Dark Knight (2008)", "the-dark-knight-2008"},
		{"  Spider-Man: No Way Home  ", "spider-man-no-way-home"},
		{"Amélie", "am-lie"},
		{"!!!", ""},
		{strings.Repeat("ab ", 100), strings.Repeat("ab-", 67)[:200]},
	}

	for _, tc := range cases {
		require.Equal(t, tc.slug, Slugify(tc.title), tc.title)
	}
}

func TestCreateMovie(t *testing.T) {
	ctx := context.Background()

	t.Run("Slug comes from the title and aggregates start at zero", func(t *testing.T) {
		store := memstore.New()

		movie, err := CreateMovie(ctx, store, CreateMovieRequest{
			Title: "The Matrix", Director: "Wachowski", Year: 1999,
		})
		require.NoError(t, err)
		require.Equal(t, "the-matrix", movie.Slug)
		require.Zero(t, movie.AvgRating)
		require.Zero(t, movie.ReviewCount)
		require.NotNil(t, movie.Cast)

		got, err := GetMovieBySlug(ctx, store, "the-matrix")
		require.NoError(t, err)
		require.Equal(t, "The Matrix", got.Title)
	})

	t.Run("Explicit slug and duplicates", func(t *testing.T) {
		store := memstore.New()

		movie, err := CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat", Slug: "Heat 1995"})
		require.NoError(t, err)
		require.Equal(t, "heat-1995", movie.Slug)

		_, err = CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat", Slug: "heat-1995"})
		require.ErrorIs(t, err, ErrMovieAlreadyExists)
	})

	t.Run("Validation cases", func(t *testing.T) {
		store := memstore.New()

		_, err := CreateMovie(ctx, store, CreateMovieRequest{})
		require.ErrorIs(t, err, ErrInvalidMovie)
		_, err = CreateMovie(ctx, store, CreateMovieRequest{Title: "???"})
		require.ErrorIs(t, err, ErrInvalidMovie)
		_, err = CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat", PhotoURL: "not a url"})
		require.ErrorIs(t, err, ErrInvalidMovie)
	})
}

func TestUpdateMovie(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat", Director: "Mann"})
	require.NoError(t, err)
	require.NoError(t, store.SetMovieAggregate(ctx, "heat", 4.5, 2))

	title := "Heat (1995)"
	movie, err := UpdateMovie(ctx, store, "heat", UpdateMovieRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, title, movie.Title)
	require.Equal(t, "heat", movie.Slug)
	require.Equal(t, "Mann", movie.Director)
	require.Equal(t, 4.5, movie.AvgRating)
	require.Equal(t, 2, movie.ReviewCount)

	_, err = UpdateMovie(ctx, store, "heat", UpdateMovieRequest{})
	require.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = UpdateMovie(ctx, store, "missing", UpdateMovieRequest{Title: &title})
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestDeleteMovie(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat"})
	require.NoError(t, err)

	_, _, err = store.UpsertReview(ctx, mongodb.ReviewDb{MovieSlug: "heat", Username: "alice", Rating: 4})
	require.NoError(t, err)
	_, err = store.AddWatchlistEntry(ctx, mongodb.WatchlistDb{Username: "carol", MovieSlug: "heat"})
	require.NoError(t, err)

	resp, err := DeleteMovie(ctx, store, "heat")
	require.NoError(t, err)
	require.Equal(t, DeleteMovieResponse{DeletedReviews: 1, DeletedWatchlist: 1}, resp)

	_, err = GetMovieBySlug(ctx, store, "heat")
	require.ErrorIs(t, err, ErrMovieNotFound)

	_, err = DeleteMovie(ctx, store, "heat")
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestGetMovies(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	for _, title := range []string{"Heat", "Inception", "Heathers"} {
		_, err := CreateMovie(ctx, store, CreateMovieRequest{Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, store.SetMovieAggregate(ctx, "inception", 4.8, 10))
	require.NoError(t, store.SetMovieAggregate(ctx, "heathers", 3.9, 20))

	t.Run("Search is case insensitive", func(t *testing.T) {
		movies, err := GetMovies(ctx, store, mongodb.MovieQuery{Q: "HEAT"})
		require.NoError(t, err)
		require.Len(t, movies, 2)
	})

	t.Run("Sort and limit", func(t *testing.T) {
		movies, err := GetMovies(ctx, store, mongodb.MovieQuery{Sort: mongodb.MovieSortHighest, Limit: 1})
		require.NoError(t, err)
		require.Len(t, movies, 1)
		require.Equal(t, "inception", movies[0].Slug)

		movies, err = GetMovies(ctx, store, mongodb.MovieQuery{Sort: mongodb.MovieSortMostReviewed})
		require.NoError(t, err)
		require.Equal(t, "heathers", movies[0].Slug)
	})

	t.Run("Unknown sort", func(t *testing.T) {
		_, err := GetMovies(ctx, store, mongodb.MovieQuery{Sort: "random"})
		require.ErrorIs(t, err, ErrInvalidSort)
	})

	t.Run("Unavailable store gives an empty list", func(t *testing.T) {
		faulty := memstore.New()
		faulty.SetFault(func(op, key string) error { return mongodb.ErrStoreUnavailable })

		movies, err := GetMovies(ctx, faulty, mongodb.MovieQuery{})
		require.NoError(t, err)
		require.Empty(t, movies)
	})
}

func TestGetDashboard(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := CreateMovie(ctx, store, CreateMovieRequest{Title: "Heat"})
	require.NoError(t, err)
	for _, username := range []string{"carol", "dave"} {
		_, err := store.AddWatchlistEntry(ctx, mongodb.WatchlistDb{Username: username, MovieSlug: "heat"})
		require.NoError(t, err)
	}
	_, err = store.AddTicket(ctx, mongodb.TicketDb{Username: "carol", Subject: "s", Message: "m"})
	require.NoError(t, err)

	dashboard, err := GetDashboard(ctx, store)
	require.NoError(t, err)
	require.Equal(t, Dashboard{MoviesCount: 1, WatchlistUsers: 2, OpenTickets: 1}, dashboard)
}
