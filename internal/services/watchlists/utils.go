package watchlists

import (
	"errors"
	"net/http"

	"github.com/lealre/moviereviews/internal/mongodb"
)

var (
	ErrMovieNotFound     = errors.New("movie not found")
	ErrEntryNotFound     = errors.New("movie is not on the watchlist")
	ErrEntryAlreadyExist = errors.New("movie is already on the watchlist")
	ErrInvalidEntry      = errors.New("username and movie slug are required")
)

var ErrorMap = map[error]int{
	ErrMovieNotFound:            http.StatusNotFound,
	ErrEntryNotFound:            http.StatusNotFound,
	ErrEntryAlreadyExist:        http.StatusConflict,
	ErrInvalidEntry:             http.StatusBadRequest,
	mongodb.ErrStoreUnavailable: http.StatusServiceUnavailable,
}

// movieWatchlistStore is what Add needs: the movie title comes from the
// movies collection.
type movieWatchlistStore interface {
	mongodb.MovieStore
	mongodb.WatchlistStore
}
