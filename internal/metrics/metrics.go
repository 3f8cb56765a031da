// Package metrics exposes the service's Prometheus instruments on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcbaptista/space-chatbot/model"
)

const namespace = "space_chatbot"

// Metrics holds every instrument. A nil *Metrics is valid and records nothing,
// so collaborators can be built without a registry in tests.
type Metrics struct {
	registry *prometheus.Registry

	ChatRequestsTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec
	StageDuration       *prometheus.HistogramVec
	CacheLookupsTotal   *prometheus.CounterVec
	RateLimitDecisions  *prometheus.CounterVec
	ProviderFailures    *prometheus.CounterVec
	SweepRemovedTotal   *prometheus.CounterVec
	SweepRunsTotal      *prometheus.CounterVec
}

// New registers all instruments on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "requests_total",
				Help:      "Chat requests by reply method and cache outcome",
			},
			[]string{"method", "from_cache", "success"},
		),
		ChatDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "duration_seconds",
				Help:      "End-to-end chat pipeline latency",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Latency of each pipeline stage",
				Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5, 20},
			},
			[]string{"stage"},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Response cache lookups by result",
			},
			[]string{"result"},
		),
		RateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ratelimit",
				Name:      "decisions_total",
				Help:      "Rate limiter decisions by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		ProviderFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "failures_total",
				Help:      "Failed calls to external data providers",
			},
			[]string{"provider"},
		),
		SweepRemovedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "sweep_removed_total",
				Help:      "Entries removed by background sweeps",
			},
			[]string{"job"},
		),
		SweepRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "sweep_runs_total",
				Help:      "Background sweep runs by status",
			},
			[]string{"job", "status"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveChat records one completed chat request.
func (m *Metrics) ObserveChat(method model.Method, fromCache, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(string(method), strconv.FormatBool(fromCache), strconv.FormatBool(success)).Inc()
	m.ChatDurationSeconds.WithLabelValues(string(method)).Observe(d.Seconds())
}

// ObserveStage records the latency of one pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveRateLimit records a limiter decision. outcome is "allowed" or the denial reason.
func (m *Metrics) ObserveRateLimit(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.RateLimitDecisions.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveProviderFailure matches providers.FailureObserver.
func (m *Metrics) ObserveProviderFailure(provider string, _ error) {
	if m == nil {
		return
	}
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

// ObserveSweep matches jobs.RunObserver.
func (m *Metrics) ObserveSweep(jobType model.JobType, _ time.Duration, removed int, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "failed"
	}
	m.SweepRunsTotal.WithLabelValues(string(jobType), status).Inc()
	m.SweepRemovedTotal.WithLabelValues(string(jobType)).Add(float64(removed))
}
