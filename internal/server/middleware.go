package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lealre/moviereviews/internal/api"
	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/metrics"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

type contextKey string

const requestIdKey contextKey = "requestId"

const requestIdHeader = "X-Request-Id"

////////////////////////////////////////////////////////////////////////////
//  LOGGER MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

// responseRecorder wraps http.ResponseWriter to capture status code
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rr *responseRecorder) WriteHeader(statusCode int) {
	rr.statusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

/*
RequestIdMiddleware tags every request with an id, taken from the
X-Request-Id header when the client sent one, and stores a logger carrying
that id, the method and the path in the context.

Logs when the request arrives and when the response is written, with the
status code and duration. Handlers get the logger with
logx.FromContext(r.Context()).
*/
func RequestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		startTime := time.Now()

		logger := logx.L().With(
			zap.String("requestId", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		logger.Debug("request received")

		ctx := context.WithValue(r.Context(), requestIdKey, requestId)
		ctx = logx.WithLogger(ctx, logger)
		r = r.WithContext(ctx)

		w.Header().Set(requestIdHeader, requestId)
		recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info("request completed",
			zap.Int("status", recorder.statusCode),
			zap.Duration("duration", time.Since(startTime)),
		)
	})
}

////////////////////////////////////////////////////////////////////////////
//  METRICS MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

// MetricsMiddleware counts and times requests by route pattern, so path
// parameters do not multiply the label values.
func MetricsMiddleware(mux *http.ServeMux) func(http.Handler) http.Handler {
	m := metrics.NewMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			route := routePattern(mux, r)
			if route == "" {
				route = "unmatched"
			}

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			m.HTTPRequestTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(startTime).Seconds())
		})
	}
}

////////////////////////////////////////////////////////////////////////////
//  AUTHENTICATION MIDDLEWARE
////////////////////////////////////////////////////////////////////////////

/*
AuthMiddleware resolves the bearer token to an active user and stores it in
the context.

Routes listed in api.PublicPaths pass without a token; when one is sent and
valid the user is still loaded, otherwise the request continues anonymous.
Every other route answers 401 without a valid token. Routes under /admin/
also require an admin: a user flagged isAdmin or listed in
auth.admin_users.
*/
func AuthMiddleware(mux *http.ServeMux, authCfg config.AuthConfig, db mongodb.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logx.FromContext(r.Context())
			pattern := routePattern(mux, r)
			if pattern == "" {
				// Let the mux answer 404 or 405.
				next.ServeHTTP(w, r)
				return
			}
			public := api.PublicPaths[pattern]

			userDb, err := authenticate(r, authCfg.TokenSecret, db)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				if _, ok := auth.ErrorsMap[err]; !ok {
					logger.Error("authentication failed", zap.Error(err))
					api.RespondWithError(w, http.StatusServiceUnavailable, "Could not verify credentials")
					return
				}
				api.RespondWithUnauthorized(w, err)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/admin/") && !userDb.IsAdmin && !authCfg.IsAdmin(userDb.Username) {
				logger.Warn("admin route refused", zap.String("username", userDb.Username))
				api.RespondWithForbidden(w)
				return
			}

			ctx := auth.WithUser(r.Context(), userDb)
			ctx = logx.WithLogger(ctx, logger.With(zap.String("username", userDb.Username)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate returns an auth sentinel error for every client-side problem;
// any other error comes from the store.
func authenticate(r *http.Request, tokenSecret string, db mongodb.UserStore) (mongodb.UserDb, error) {
	tokenString, err := auth.BearerToken(r.Header)
	if err != nil {
		return mongodb.UserDb{}, err
	}

	userId, err := auth.ParseAccessToken(tokenString, tokenSecret)
	if err != nil {
		return mongodb.UserDb{}, err
	}

	userDb, err := db.GetUserById(r.Context(), userId)
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.UserDb{}, auth.ErrInvalidCredentials
		}
		return mongodb.UserDb{}, err
	}
	if !userDb.IsActive {
		return mongodb.UserDb{}, auth.ErrInvalidCredentials
	}

	return userDb, nil
}

// routePattern is the ServeMux pattern r will be dispatched to, "" when none
// matches.
func routePattern(mux *http.ServeMux, r *http.Request) string {
	_, pattern := mux.Handler(r)
	return pattern
}
