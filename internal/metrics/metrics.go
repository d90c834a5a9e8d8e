package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the relay
type Metrics struct {
	registry *prometheus.Registry

	// Message metrics
	MessagesReceivedTotal *prometheus.CounterVec
	RepliesSentTotal      prometheus.Counter
	ChunksSentTotal       prometheus.Counter

	// Generation metrics
	GenerationsTotal      *prometheus.CounterVec
	GenerationDuration    prometheus.Histogram
	GenerationErrorsTotal prometheus.Counter

	// Session metrics
	SessionsActive prometheus.Gauge

	// Lifecycle metrics
	FatalFailuresTotal prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		MessagesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mira_messages_received_total",
				Help: "Total number of inbound messages by kind",
			},
			[]string{"kind"},
		),
		RepliesSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mira_replies_sent_total",
				Help: "Total number of replies delivered",
			},
		),
		ChunksSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mira_chunks_sent_total",
				Help: "Total number of reply segments sent to the transport",
			},
		),

		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mira_generations_total",
				Help: "Total number of completion calls by status",
			},
			[]string{"status"},
		),
		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mira_generation_duration_seconds",
				Help:    "Duration of completion calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		GenerationErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mira_generation_errors_total",
				Help: "Total number of failed completion calls",
			},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mira_sessions_active",
				Help: "Number of user sessions currently in memory",
			},
		),

		FatalFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mira_fatal_failures_total",
				Help: "Total number of fatal failures that ended a daemon lifetime",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.MessagesReceivedTotal)
	m.registry.MustRegister(m.RepliesSentTotal)
	m.registry.MustRegister(m.ChunksSentTotal)

	m.registry.MustRegister(m.GenerationsTotal)
	m.registry.MustRegister(m.GenerationDuration)
	m.registry.MustRegister(m.GenerationErrorsTotal)

	m.registry.MustRegister(m.SessionsActive)
	m.registry.MustRegister(m.FatalFailuresTotal)
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
