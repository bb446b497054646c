package api

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/users"
)

func (api *API) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	var req users.NewUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	user, err := users.Register(r.Context(), api.Db, req)
	if err != nil {
		respondWithServiceError(w, logger, users.ErrorMap, err, "Failed to register user")
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

func (api *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	logger := logx.FromContext(r.Context())

	var authReq auth.LoginRequest
	if err := decodeJSON(r, &authReq); err != nil {
		respondWithError(w, http.StatusBadRequest, formatErrorMessage(err))
		return
	}

	loginResponse, err := users.Login(r.Context(), api.Db, authReq, api.Auth.TokenSecret, api.Auth.TokenTTL)
	if err != nil {
		if statusCode, ok := getErrorStatusCode(auth.ErrorsMap, err); ok {
			respondWithError(w, statusCode, formatErrorMessage(err))
			return
		}
		respondWithServiceError(w, logger, users.ErrorMap, err, "Unexpected error occurred")
		return
	}

	loginResponse.IsAdmin = loginResponse.IsAdmin || api.Auth.IsAdmin(loginResponse.Username)
	respondWithJSON(w, http.StatusOK, loginResponse)
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*mongodb.UserDb, bool) {
	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		RespondWithUnauthorized(w, errUnauthorized)
		return nil, false
	}
	return user, true
}
