// Package metrics exposes portal counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ItemsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_items_reported_total",
		Help: "Reports submitted, by kind.",
	}, []string{"kind"})

	ClaimsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lostfound_claims_submitted_total",
		Help: "Claims submitted.",
	})

	ClaimDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_claim_decisions_total",
		Help: "Admin claim decisions, by resulting status.",
	}, []string{"status"})

	ItemsExpired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_items_expired_total",
		Help: "Reports expired by the expiry sweep, by kind.",
	}, []string{"kind"})

	BulkActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_bulk_action_items_total",
		Help: "Reports affected by admin bulk actions, by action.",
	}, []string{"action"})

	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_logins_total",
		Help: "Login attempts, by result.",
	}, []string{"result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lostfound_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lostfound_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Login results.
const (
	LoginSuccess   = "success"
	LoginFailed    = "failed"
	LoginBanned    = "banned"
	LoginThrottled = "throttled"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
