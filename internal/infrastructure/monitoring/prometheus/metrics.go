// Package prometheus centralizes metric registration for the OncoPurpose
// platform.  All counters, histograms, and gauges live on a single Metrics
// struct created once at startup and injected into the components that
// observe them.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the platform exposes.  Use New for
// production (shared default registry semantics via a private registry plus
// Handler) and NewForTesting where metric state must be isolated per test.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP surface.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	// Search engine.
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	SearchResultSize prometheus.Histogram

	// Cache layer.
	CacheOpsTotal *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	// External fetchers.
	FetcherRequestsTotal *prometheus.CounterVec
	FetcherDuration      *prometheus.HistogramVec
	FetcherDegradedTotal *prometheus.CounterVec

	// Rate limiter.
	RateLimitDecisions *prometheus.CounterVec

	// Analysis store.
	ArtifactsPersisted *prometheus.CounterVec

	// Corpus.
	CorpusDrugsLoaded prometheus.Gauge
	CorpusHeroCases   prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return newWithRegistry(reg)
}

// NewForTesting creates a Metrics instance on an isolated registry without
// the process and Go runtime collectors.
func NewForTesting() *Metrics {
	return newWithRegistry(prometheus.NewRegistry())
}

func newWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed, by method, route, and status class.",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oncopurpose",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oncopurpose",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),

		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Total search queries executed, by outcome (hit, miss, error).",
		}, []string{"outcome"}),

		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oncopurpose",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "End-to-end search execution latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}),

		SearchResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "oncopurpose",
			Subsystem: "search",
			Name:      "result_size",
			Help:      "Number of matches returned per search query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 200},
		}),

		CacheOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total cache operations, by operation and result.",
		}, []string{"operation", "result"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits, by key namespace.",
		}, []string{"namespace"}),

		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses, by key namespace.",
		}, []string{"namespace"}),

		FetcherRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "fetcher",
			Name:      "requests_total",
			Help:      "Total outbound data-source requests, by source and outcome.",
		}, []string{"source", "outcome"}),

		FetcherDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "oncopurpose",
			Subsystem: "fetcher",
			Name:      "request_duration_seconds",
			Help:      "Outbound data-source request latency in seconds, by source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),

		FetcherDegradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "fetcher",
			Name:      "degraded_total",
			Help:      "Total degraded (partial or empty) data-source results, by source and reason.",
		}, []string{"source", "reason"}),

		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Rate limiter decisions, by tier and decision (allow, deny, fail_open).",
		}, []string{"tier", "decision"}),

		ArtifactsPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oncopurpose",
			Subsystem: "store",
			Name:      "artifacts_persisted_total",
			Help:      "Total analysis artifacts persisted, by backend (postgres, ephemeral).",
		}, []string{"backend"}),

		CorpusDrugsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oncopurpose",
			Subsystem: "corpus",
			Name:      "drugs_loaded",
			Help:      "Number of drugs currently loaded in the corpus.",
		}),

		CorpusHeroCases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oncopurpose",
			Subsystem: "corpus",
			Name:      "hero_cases_loaded",
			Help:      "Number of curated repurposing cases currently loaded.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPInFlight,
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchResultSize,
		m.CacheOpsTotal,
		m.CacheHits,
		m.CacheMisses,
		m.FetcherRequestsTotal,
		m.FetcherDuration,
		m.FetcherDegradedTotal,
		m.RateLimitDecisions,
		m.ArtifactsPersisted,
		m.CorpusDrugsLoaded,
		m.CorpusHeroCases,
	)
	return m
}

// Handler returns the HTTP handler that serves the /metrics endpoint for this
// Metrics instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests that need to gather
// metric families directly.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records a completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSearch records a completed search query.
func (m *Metrics) ObserveSearch(outcome string, resultSize int, elapsed time.Duration) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(elapsed.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
}

// ObserveFetch records a completed outbound data-source request.
func (m *Metrics) ObserveFetch(source, outcome string, elapsed time.Duration) {
	m.FetcherRequestsTotal.WithLabelValues(source, outcome).Inc()
	m.FetcherDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}
