// Package metrics exposes Prometheus instrumentation for the assistant.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collaborator labels.
const (
	CollaboratorLLM      = "llm"
	CollaboratorCalendar = "calendar"
	CollaboratorRecords  = "records"
	CollaboratorTurn     = "turn"
)

// Recorder owns a private registry. All methods are safe on a nil
// *Recorder and do nothing.
type Recorder struct {
	registry *prometheus.Registry

	turns           *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	failures        *prometheus.CounterVec
	llmTokens       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
	socketsActive   prometheus.Gauge
}

// New creates a Recorder with Go runtime and process collectors attached.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apptagent_turns_total",
			Help: "Conversation turns processed, by resulting stage",
		}, []string{"stage"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apptagent_bookings_total",
			Help: "Booking attempts, by outcome",
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apptagent_collaborator_failures_total",
			Help: "Absorbed failures, by collaborator",
		}, []string{"collaborator"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apptagent_llm_tokens_total",
			Help: "Text-generation tokens, by provider and direction",
		}, []string{"provider", "direction"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apptagent_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apptagent_active_sessions",
			Help: "Sessions held in the session store",
		}),
		socketsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "apptagent_websocket_connections_active",
			Help: "Open chat websocket connections",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.turns, r.bookings, r.failures, r.llmTokens,
		r.requestDuration, r.activeSessions, r.socketsActive,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Turn counts one completed turn ending in stage.
func (r *Recorder) Turn(stage string) {
	if r == nil {
		return
	}
	r.turns.WithLabelValues(stage).Inc()
}

// Booking counts a booking attempt; outcome is "success" or "failure".
func (r *Recorder) Booking(outcome string) {
	if r == nil {
		return
	}
	r.bookings.WithLabelValues(outcome).Inc()
}

// Failure counts an absorbed collaborator failure.
func (r *Recorder) Failure(collaborator string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(collaborator).Inc()
}

// Tokens adds text-generation usage for provider.
func (r *Recorder) Tokens(provider string, in, out int) {
	if r == nil {
		return
	}
	r.llmTokens.WithLabelValues(provider, "in").Add(float64(in))
	r.llmTokens.WithLabelValues(provider, "out").Add(float64(out))
}

// Request observes one HTTP request.
func (r *Recorder) Request(method, route, status string, seconds float64) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// SetActiveSessions sets the session gauge.
func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.activeSessions.Set(float64(n))
}

// SocketOpened and SocketClosed track live chat sockets.
func (r *Recorder) SocketOpened() {
	if r == nil {
		return
	}
	r.socketsActive.Inc()
}

func (r *Recorder) SocketClosed() {
	if r == nil {
		return
	}
	r.socketsActive.Dec()
}
