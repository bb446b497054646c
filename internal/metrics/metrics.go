package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the application metrics
type Metrics struct {
	// HTTP request metrics
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Review metrics, outcome is created or updated
	ReviewsSubmitted *prometheus.CounterVec

	// Notification metrics, status is sent or failed
	NotificationsTotal *prometheus.CounterVec
	FanoutDuration     *prometheus.HistogramVec

	// Ticket status transitions
	TicketTransitions *prometheus.CounterVec

	AggregateRecomputes *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsMutex  sync.Mutex
)

// NewMetrics returns the process-wide Metrics, creating and registering it
// with the default registry on first use.
func NewMetrics() *Metrics {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ReviewsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviews_submitted_total",
			Help: "Total number of review submissions",
		}, []string{"outcome"}),

		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification writes",
		}, []string{"type", "status"}),

		FanoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_fanout_duration_seconds",
			Help:    "Time spent delivering one notification batch",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),

		TicketTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "support_ticket_transitions_total",
			Help: "Total number of support ticket status changes",
		}, []string{"status"}),

		AggregateRecomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "movie_aggregate_recomputes_total",
			Help: "Total number of movie rating aggregate recomputes",
		}, []string{"status"}),
	}

	m.HTTPRequestTotal = registerOrGet(m.HTTPRequestTotal).(*prometheus.CounterVec)
	m.HTTPRequestDuration = registerOrGet(m.HTTPRequestDuration).(*prometheus.HistogramVec)
	m.ReviewsSubmitted = registerOrGet(m.ReviewsSubmitted).(*prometheus.CounterVec)
	m.NotificationsTotal = registerOrGet(m.NotificationsTotal).(*prometheus.CounterVec)
	m.FanoutDuration = registerOrGet(m.FanoutDuration).(*prometheus.HistogramVec)
	m.TicketTransitions = registerOrGet(m.TicketTransitions).(*prometheus.CounterVec)
	m.AggregateRecomputes = registerOrGet(m.AggregateRecomputes).(*prometheus.CounterVec)

	globalMetrics = m
	return m
}

// registerOrGet tries to register a metric, returns the existing one if already registered
func registerOrGet(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}
