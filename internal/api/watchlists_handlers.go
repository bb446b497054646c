package api

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/generics"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/services/history"
	"github.com/lealre/moviereviews/internal/services/movies"
	"github.com/lealre/moviereviews/internal/services/watchlists"
)

func (api *API) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	movie, err := movies.GetMovieBySlug(r.Context(), api.Db, r.PathValue("slug"))
	if err != nil {
		respondWithServiceError(w, logger, movies.ErrorMap, err, "Failed to get movie")
		return
	}

	action, err := watchlists.Toggle(r.Context(), api.Db, user.Username, movie.Slug, movie.Title)
	if err != nil {
		respondWithServiceError(w, logger, watchlists.ErrorMap, err, "Failed to update watchlist")
		return
	}

	respondWithJSON(w, http.StatusOK, watchlists.ToggleResponse{Action: action})
}

func (api *API) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entry, err := watchlists.Add(r.Context(), api.Db, user.Username, r.PathValue("slug"))
	if err != nil {
		respondWithServiceError(w, logger, watchlists.ErrorMap, err, "Failed to add to watchlist")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (api *API) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := watchlists.Remove(r.Context(), api.Db, user.Username, r.PathValue("slug")); err != nil {
		respondWithServiceError(w, logger, watchlists.ErrorMap, err, "Failed to remove from watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (api *API) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := watchlists.GetUserWatchlist(r.Context(), api.Db, user.Username)
	if err != nil {
		respondWithServiceError(w, logger, watchlists.ErrorMap, err, "Failed to get watchlist")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (api *API) GetViewHistory(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := generics.StringToInt(r.URL.Query().Get("limit"))
	entries, err := history.GetUserViewHistory(r.Context(), api.Db, user.Username, limit)
	if err != nil {
		respondWithServiceError(w, logger, nil, err, "Failed to get view history")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
