package movies

import (
	"context"
	"errors"
	"fmt"

	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

// GetMovies lists movies matching the title search, ordered by the
// requested sort (title order when empty).
func GetMovies(ctx context.Context, db mongodb.MovieStore, query mongodb.MovieQuery) ([]Movie, error) {
	if !validSort(query.Sort) {
		return []Movie{}, ErrInvalidSort
	}

	moviesDb, err := db.GetMovies(ctx, query)
	if err != nil {
		if errors.Is(err, mongodb.ErrStoreUnavailable) {
			logx.FromContext(ctx).Warn("movies unavailable, returning empty list", zap.Error(err))
			return []Movie{}, nil
		}
		return []Movie{}, err
	}

	movies := make([]Movie, 0, len(moviesDb))
	for _, m := range moviesDb {
		movies = append(movies, MapDbMovieToApiMovie(m))
	}
	return movies, nil
}

func GetMovieBySlug(ctx context.Context, db mongodb.MovieStore, slug string) (Movie, error) {
	movie, err := db.GetMovieBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, err
	}
	return MapDbMovieToApiMovie(movie), nil
}

// CreateMovie adds a movie with an empty rating aggregate. The slug is
// derived from the title when the request has none.
func CreateMovie(ctx context.Context, db mongodb.MovieStore, req CreateMovieRequest) (Movie, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return Movie{}, fmt.Errorf("%w: %v", ErrInvalidMovie, err)
	}

	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return Movie{}, fmt.Errorf("%w: title has no characters usable in a slug", ErrInvalidMovie)
	}

	movie, err := db.AddMovie(ctx, mongodb.MovieDb{
		Slug:        slug,
		Title:       req.Title,
		Description: req.Description,
		Director:    req.Director,
		Year:        req.Year,
		Cast:        req.Cast,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, mongodb.ErrDuplicateKey) {
			return Movie{}, ErrMovieAlreadyExists
		}
		return Movie{}, err
	}

	logx.FromContext(ctx).Info("movie created", zap.String("movieSlug", slug))
	return MapDbMovieToApiMovie(movie), nil
}

func UpdateMovie(ctx context.Context, db mongodb.MovieStore, slug string, req UpdateMovieRequest) (Movie, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return Movie{}, fmt.Errorf("%w: %v", ErrInvalidMovie, err)
	}

	update := MapUpdateRequestToDbUpdate(req)
	if update.IsEmpty() {
		return Movie{}, ErrEmptyUpdate
	}

	if err := db.UpdateMovie(ctx, slug, update); err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return Movie{}, ErrMovieNotFound
		}
		return Movie{}, err
	}

	return GetMovieBySlug(ctx, db, slug)
}

// DeleteMovie removes the movie together with its reviews and watchlist
// entries. Notifications that mention it are kept as history.
func DeleteMovie(ctx context.Context, db mongodb.Store, slug string) (DeleteMovieResponse, error) {
	deleted, err := db.DeleteMovie(ctx, slug)
	if err != nil {
		return DeleteMovieResponse{}, err
	}
	if !deleted {
		return DeleteMovieResponse{}, ErrMovieNotFound
	}

	var resp DeleteMovieResponse
	if resp.DeletedReviews, err = db.DeleteReviewsByMovie(ctx, slug); err != nil {
		return resp, fmt.Errorf("delete reviews of %s: %w", slug, err)
	}
	if resp.DeletedWatchlist, err = db.DeleteWatchlistByMovie(ctx, slug); err != nil {
		return resp, fmt.Errorf("delete watchlist entries of %s: %w", slug, err)
	}

	logx.FromContext(ctx).Info("movie deleted",
		zap.String("movieSlug", slug),
		zap.Int64("reviews", resp.DeletedReviews),
		zap.Int64("watchlistEntries", resp.DeletedWatchlist),
	)
	return resp, nil
}

// GetDashboard counts movies, users with a watchlist and open tickets.
func GetDashboard(ctx context.Context, db mongodb.Store) (Dashboard, error) {
	moviesCount, err := db.CountMovies(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	watchlistUsers, err := db.DistinctWatchlistUsernames(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	openTickets, err := db.CountTickets(ctx, mongodb.TicketStatusOpen)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		MoviesCount:    moviesCount,
		WatchlistUsers: len(watchlistUsers),
		OpenTickets:    openTickets,
	}, nil
}
