package api

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/generics"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/history"
	"github.com/lealre/moviereviews/internal/services/movies"
	"github.com/lealre/moviereviews/internal/services/watchlists"
)

// GetMovies lists movies. Query params: q (title search), sort (newest,
// highest, most_reviewed) and limit.
func (api *API) GetMovies(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	query := mongodb.MovieQuery{
		Q:     r.URL.Query().Get("q"),
		Sort:  r.URL.Query().Get("sort"),
		Limit: generics.StringToInt(r.URL.Query().Get("limit")),
	}

	allMovies, err := movies.GetMovies(r.Context(), api.Db, query)
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to list movies")
		return
	}

	respondWithJSON(w, http.StatusOK, movies.AllMoviesResponse{Movies: allMovies})
}

// GetMovie returns the movie page. For an authenticated user the view is
// recorded and the watchlist flag is filled.
func (api *API) GetMovie(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	slug := r.PathValue("slug")

	movie, err := movies.GetMovieBySlug(r.Context(), api.Db, slug)
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to get movie")
		return
	}

	detail := movies.MovieDetail{Movie: movie}
	if user := auth.GetUserFromContext(r.Context()); user != nil {
		history.LogView(r.Context(), api.Db, user.Username, movie.Slug, movie.Title)
		detail.InWatchlist = watchlists.IsInWatchlist(r.Context(), api.Db, user.Username, movie.Slug)
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (api *API) CreateMovie(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	var req movies.CreateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	movie, err := movies.CreateMovie(r.Context(), api.Db, req)
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to create movie")
		return
	}

	respondWithJSON(w, http.StatusCreated, movie)
}

func (api *API) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	var req movies.UpdateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	movie, err := movies.UpdateMovie(r.Context(), api.Db, r.PathValue("slug"), req)
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to update movie")
		return
	}

	respondWithJSON(w, http.StatusOK, movie)
}

func (api *API) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	resp, err := movies.DeleteMovie(r.Context(), api.Db, r.PathValue("slug"))
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to delete movie")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (api *API) GetDashboard(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	dashboard, err := movies.GetDashboard(r.Context(), api.Db)
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to load dashboard")
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}
