package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lealre/moviereviews/internal/api"
	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/memstore"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/services/movies"
	"github.com/lealre/moviereviews/internal/services/notifications"
	"github.com/lealre/moviereviews/internal/services/reviews"
	"github.com/lealre/moviereviews/internal/services/users"
	"github.com/lealre/moviereviews/internal/services/watchlists"
	"github.com/lealre/moviereviews/internal/worker"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *memstore.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.New()
	pool, err := worker.NewPool("test-server", 4)
	require.NoError(t, err)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			TokenSecret: "test-secret",
			TokenTTL:    time.Hour,
			AdminUsers:  []string{"admin"},
		},
	}

	srv := httptest.NewServer(NewServer(store, pool, cfg))
	t.Cleanup(func() {
		srv.Close()
		pool.Shutdown(time.Second)
	})

	return &testEnv{store: store, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// addUser registers username and returns a token for it.
func (e *testEnv) addUser(t *testing.T, username string) string {
	t.Helper()

	password := username + "-password"
	resp := e.do(t, http.MethodPost, "/auth/register", "", users.NewUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{
		Username: username,
		Password: password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login := decode[auth.LoginResponse](t, resp)
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func TestAuthRoutes(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Registering twice conflicts", func(t *testing.T) {
		env.addUser(t, "alice")

		resp := env.do(t, http.MethodPost, "/auth/register", "", users.NewUserRequest{
			Username: "alice",
			Email:    "other@example.com",
			Password: "another-password",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{
			Username: "alice",
			Password: "wrong-password",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Configured admins log in as admin", func(t *testing.T) {
		env.addUser(t, "admin")

		resp := env.do(t, http.MethodPost, "/auth/login", "", auth.LoginRequest{
			Username: "admin",
			Password: "admin-password",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[auth.LoginResponse](t, resp).IsAdmin)
	})

	t.Run("Protected routes need a token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/notifications", "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/notifications", "not-a-jwt", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Admin routes refuse regular users", func(t *testing.T) {
		token := env.addUser(t, "bob")

		resp := env.do(t, http.MethodGet, "/admin/dashboard", token, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Unknown routes are not found", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/nowhere", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.addUser(t, "admin")
	aliceToken := env.addUser(t, "alice")
	carolToken := env.addUser(t, "carol")

	resp := env.do(t, http.MethodPost, "/admin/movies", adminToken, movies.CreateMovieRequest{
		Title:    "Inception",
		Director: "Christopher Nolan",
		Year:     2010,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	movie := decode[movies.Movie](t, resp)
	require.Equal(t, "inception", movie.Slug)

	t.Run("Movie pages are public", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/movies", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, decode[movies.AllMoviesResponse](t, resp).Movies, 1)

		resp = env.do(t, http.MethodGet, "/movies/inception", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.False(t, decode[movies.MovieDetail](t, resp).InWatchlist)

		resp = env.do(t, http.MethodGet, "/movies/missing", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Watchlist toggle shows on the movie page", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/movies/inception/watchlist", carolToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, watchlists.ActionAdded, decode[watchlists.ToggleResponse](t, resp).Action)

		resp = env.do(t, http.MethodGet, "/movies/inception", carolToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[movies.MovieDetail](t, resp).InWatchlist)
	})

	t.Run("Explicit add and remove", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/movies/inception/watchlist", aliceToken, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.Equal(t, "Inception", decode[watchlists.WatchlistEntry](t, resp).MovieTitle)

		resp = env.do(t, http.MethodPut, "/movies/inception/watchlist", aliceToken, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		resp = env.do(t, http.MethodPut, "/movies/missing/watchlist", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = env.do(t, http.MethodDelete, "/movies/inception/watchlist", aliceToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = env.do(t, http.MethodDelete, "/movies/inception/watchlist", aliceToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("High review updates the aggregate and notifies the watchlist", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/movies/inception/reviews", aliceToken, map[string]any{
			"rating": 5,
			"title":  "Mind bending",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		review := decode[reviews.Review](t, resp)
		require.Equal(t, "alice", review.Username)

		resp = env.do(t, http.MethodGet, "/movies/inception", "", nil)
		detail := decode[movies.MovieDetail](t, resp)
		require.Equal(t, 5.0, detail.AvgRating)
		require.Equal(t, 1, detail.ReviewCount)

		resp = env.do(t, http.MethodGet, "/notifications?unread=true", carolToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decode[notifications.NotificationsResponse](t, resp)
		require.Equal(t, 1, list.UnreadCount)
		require.Len(t, list.Notifications, 1)
		require.Equal(t, "inception", list.Notifications[0].MovieSlug)

		resp = env.do(t, http.MethodPost, "/notifications/read", carolToken, notifications.MarkReadRequest{
			Kind: notifications.KindMovie,
			Key:  "inception",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, decode[notifications.MarkReadResponse](t, resp).Updated)
	})

	t.Run("Out of range rating is rejected", func(t *testing.T) {
		resp := env.do(t, http.MethodPut, "/movies/inception/reviews", aliceToken, map[string]any{"rating": 6})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Reviews are listed publicly", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/movies/inception/reviews", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.store.SetFault(func(op, key string) error {
		if op == "Ping" {
			return mongodb.ErrStoreUnavailable
		}
		return nil
	})
	resp = env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestUnavailableStoreOnAuthenticatedRoute(t *testing.T) {
	env := newTestEnv(t)
	token := env.addUser(t, "alice")

	env.store.SetFault(func(op, key string) error {
		if op == "GetUserById" {
			return mongodb.ErrStoreUnavailable
		}
		return nil
	})

	resp := env.do(t, http.MethodGet, "/watchlist", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[api.ErrorResponse](t, resp)
	require.Equal(t, http.StatusServiceUnavailable, body.StatusCode)

	// Public routes still answer anonymously.
	resp = env.do(t, http.MethodGet, "/movies", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
