package server

import (
	"net/http"

	"github.com/lealre/moviereviews/internal/api"
	"github.com/lealre/moviereviews/internal/config"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"github.com/lealre/moviereviews/internal/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewServer wires the routes and middleware around db and returns the root
// handler. The pool runs notification fanouts and must outlive the handler.
func NewServer(db mongodb.Store, pool *worker.Pool, cfg *config.Config) http.Handler {
	apiCfg := api.NewAPI(db, pool, cfg.Auth)
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", apiCfg.RegisterHandler)
	mux.HandleFunc("POST /auth/login", apiCfg.LoginHandler)

	mux.HandleFunc("GET /movies", apiCfg.GetMovies)
	mux.HandleFunc("GET /movies/{slug}", apiCfg.GetMovie)
	mux.HandleFunc("GET /movies/{slug}/reviews", apiCfg.GetMovieReviews)
	mux.HandleFunc("PUT /movies/{slug}/reviews", apiCfg.SubmitReview)
	mux.HandleFunc("DELETE /movies/{slug}/reviews", apiCfg.DeleteReview)
	mux.HandleFunc("POST /movies/{slug}/watchlist", apiCfg.ToggleWatchlist)
	mux.HandleFunc("PUT /movies/{slug}/watchlist", apiCfg.AddToWatchlist)
	mux.HandleFunc("DELETE /movies/{slug}/watchlist", apiCfg.RemoveFromWatchlist)

	mux.HandleFunc("GET /watchlist", apiCfg.GetWatchlist)
	mux.HandleFunc("GET /history", apiCfg.GetViewHistory)

	mux.HandleFunc("GET /notifications", apiCfg.GetNotifications)
	mux.HandleFunc("POST /notifications/read", apiCfg.MarkNotificationsRead)

	mux.HandleFunc("POST /tickets", apiCfg.CreateTicket)
	mux.HandleFunc("GET /tickets", apiCfg.GetUserTickets)

	mux.HandleFunc("POST /admin/movies", apiCfg.CreateMovie)
	mux.HandleFunc("PATCH /admin/movies/{slug}", apiCfg.UpdateMovie)
	mux.HandleFunc("DELETE /admin/movies/{slug}", apiCfg.DeleteMovie)
	mux.HandleFunc("GET /admin/tickets", apiCfg.GetTickets)
	mux.HandleFunc("GET /admin/tickets/{id}", apiCfg.GetTicket)
	mux.HandleFunc("POST /admin/tickets/{id}/responses", apiCfg.RespondToTicket)
	mux.HandleFunc("POST /admin/tickets/{id}/close", apiCfg.CloseTicket)
	mux.HandleFunc("POST /admin/tickets/{id}/resolve", apiCfg.ResolveTicket)
	mux.HandleFunc("POST /admin/announcements", apiCfg.Broadcast)
	mux.HandleFunc("GET /admin/dashboard", apiCfg.GetDashboard)

	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = AuthMiddleware(mux, cfg.Auth, db)(handler)
	handler = MetricsMiddleware(mux)(handler)
	handler = RequestIdMiddleware(handler)

	return handler
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

func healthHandler(db mongodb.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logx.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
			api.RespondWithJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Store: "unavailable"})
			return
		}
		api.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "ok"})
	}
}
