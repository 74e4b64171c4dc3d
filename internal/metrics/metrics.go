package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AnalysisLatency *prometheus.HistogramVec
	AnalysisErrors  *prometheus.CounterVec
	QuoteFetches    *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	LastPrice       *prometheus.GaugeVec
	JobRuns         *prometheus.CounterVec
	HTTPRequests    *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AnalysisLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "miningpulse",
				Subsystem: "analysis",
				Name:      "latency_seconds",
				Help:      "Latency of analysis operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		AnalysisErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miningpulse",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Analysis failures by operation",
			},
			[]string{"operation"},
		),
		QuoteFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miningpulse",
				Subsystem: "quotes",
				Name:      "fetches_total",
				Help:      "Live quote fetches by source and outcome",
			},
			[]string{"source", "status"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miningpulse",
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		LastPrice: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "miningpulse",
				Subsystem: "quotes",
				Name:      "last_price",
				Help:      "Most recent live price per symbol",
			},
			[]string{"symbol"},
		),
		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "miningpulse",
				Subsystem: "scheduler",
				Name:      "runs_total",
				Help:      "Scheduled job runs by job and outcome",
			},
			[]string{"job", "status"},
		),
		HTTPRequests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "miningpulse",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration by route template",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method", "status"},
		),
	}
	m.registry.MustRegister(
		m.AnalysisLatency, m.AnalysisErrors, m.QuoteFetches,
		m.CacheLookups, m.LastPrice, m.JobRuns, m.HTTPRequests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAnalysis records the latency of op since start and counts it as failed when err is set.
func (m *Metrics) ObserveAnalysis(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.AnalysisLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.AnalysisErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) QuoteFetched(source string, err error, symbol string, price float64) {
	if m == nil {
		return
	}
	if err != nil {
		m.QuoteFetches.WithLabelValues(source, "error").Inc()
		return
	}
	m.QuoteFetches.WithLabelValues(source, "ok").Inc()
	m.LastPrice.WithLabelValues(symbol).Set(price)
}

func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) JobRan(job string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.JobRuns.WithLabelValues(job, status).Inc()
}

// ObserveHTTP records one request. route should be the route template, not the raw path.
func (m *Metrics) ObserveHTTP(route, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
