package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	challengeTransitions *prometheus.CounterVec
	sessionsIssuedTotal  prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		challengeTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "challenge_transitions_total",
			Help: "Challenge lifecycle transitions grouped by action.",
		}, []string{"action"})

		sessionsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sessions_issued_total",
			Help: "Number of bearer sessions issued by login.",
		})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, challengeTransitions, sessionsIssuedTotal)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ChallengeTransitions counts created/updated/deleted/assigned/solved/reviewed transitions.
func ChallengeTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return challengeTransitions
}

// SessionsIssued counts successful logins.
func SessionsIssued() prometheus.Counter {
	RegisterMetrics()
	return sessionsIssuedTotal
}
