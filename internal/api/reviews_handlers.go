package api

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/generics"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/services/reviews"
)

// GetMovieReviews pages through a movie's reviews with page and size params.
func (api *API) GetMovieReviews(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	page := generics.StringToInt(r.URL.Query().Get("page"))
	size := generics.StringToInt(r.URL.Query().Get("size"))

	reviewsPage, err := reviews.GetReviewsForMovie(r.Context(), api.Db, r.PathValue("slug"), page, size)
	if err != nil {
		respondWithServiceError(w, logger, reviews.ErrorMap, err, "Failed to list reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, reviewsPage)
}

// SubmitReview creates or replaces the current user's review of the movie.
func (api *API) SubmitReview(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req reviews.SubmitReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}
	req.MovieSlug = r.PathValue("slug")
	req.Username = user.Username

	review, err := reviews.SubmitReview(r.Context(), api.Db, api.Pool, req)
	if err != nil {
		respondWithServiceError(w, logger, reviews.ErrorMap, err, "Failed to submit review")
		return
	}

	respondWithJSON(w, http.StatusOK, review)
}

func (api *API) DeleteReview(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	aggregate, err := reviews.DeleteReview(r.Context(), api.Db, r.PathValue("slug"), user.Username)
	if err != nil {
		respondWithServiceError(w, logger, reviews.ErrorMap, err, "Failed to delete review")
		return
	}

	respondWithJSON(w, http.StatusOK, aggregate)
}
