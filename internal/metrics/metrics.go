// Package metrics holds the Prometheus collectors for partner scoring. All
// recording methods are safe on a nil *Metrics so callers and tests can run
// without a registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partner_scoring"

// Write labels for PersistFailure.
const (
	WriteScoring = "scoring_record"
	WritePartner = "partner_summary"
)

// Metrics groups every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	results         *prometheus.CounterVec
	cacheHits       prometheus.Counter
	aiFallbacks     *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	batchPartners   prometheus.Counter
	eventFailures   prometheus.Counter
	batchDuration   prometheus.Histogram
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Scoring results computed, by provenance and risk level.",
		}, []string{"provenance", "risk_level"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Single-partner requests answered from the latest stored record.",
		}),
		aiFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_fallbacks_total",
			Help:      "AI scoring attempts that fell back to the rule-based result.",
		}, []string{"reason"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed writes, by which write failed.",
		}, []string{"write"}),
		batchPartners: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_partners_total",
			Help:      "Partners processed by batch scoring.",
		}),
		eventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "PartnerScored events that could not be published.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one batch scoring run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.results,
		m.cacheHits,
		m.aiFallbacks,
		m.persistFailures,
		m.batchPartners,
		m.eventFailures,
		m.batchDuration,
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ScoringResult(provenance, riskLevel string) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(provenance, riskLevel).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// AIFallback implements ai.Recorder.
func (m *Metrics) AIFallback(reason string) {
	if m == nil {
		return
	}
	m.aiFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) PersistFailure(write string) {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues(write).Inc()
}

func (m *Metrics) BatchPartner() {
	if m == nil {
		return
	}
	m.batchPartners.Inc()
}

func (m *Metrics) EventFailure() {
	if m == nil {
		return
	}
	m.eventFailures.Inc()
}

func (m *Metrics) ObserveBatch(seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
}
