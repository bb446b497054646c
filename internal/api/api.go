package api

import (
	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
)

// API holds what the handlers share: the store, the fanout pool and the
// auth settings used to issue tokens.
type API struct {
	Db   mongodb.Store
	Pool *worker.Pool
	Auth config.AuthConfig
}

func NewAPI(db mongodb.Store, pool *worker.Pool, authCfg config.AuthConfig) *API {
	return &API{Db: db, Pool: pool, Auth: authCfg}
}

// PublicPaths are the route patterns reachable without a token. A valid
// token on them still identifies the user.
var PublicPaths = map[string]bool{
	"POST /auth/register":        true,
	"POST /auth/login":           true,
	"GET /movies":                true,
	"GET /movies/{slug}":         true,
	"GET /movies/{slug}/reviews": true,
	"GET /healthz":               true,
	"GET /metrics":               true,
}

type ErrorResponse struct {
	StatusCode   int    `json:"statusCode"`
	ErrorMessage string `json:"errorMessage"`
}
