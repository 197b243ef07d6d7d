package crawl

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl scheduler.
type Metrics struct {
	Registry      *prometheus.Registry
	RequestsTotal prometheus.Counter
	FetchDuration prometheus.Histogram
	OutcomesTotal *prometheus.CounterVec
	BatchesTotal  prometheus.Counter
	SkippedTotal  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_requests_total",
			Help: "Total HTTP requests issued by the crawl scheduler.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawl_fetch_duration_seconds",
			Help:    "HTTP fetch latency per URL.",
			Buckets: prometheus.DefBuckets,
		},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_outcomes_total",
			Help: "Total crawl outcomes by kind.",
		},
		[]string{"outcome"},
	)
	batches := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_batches_total",
			Help: "Total batches dispatched.",
		},
	)
	skipped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_urls_skipped_total",
			Help: "URLs not fetched because of the max-URL cap.",
		},
	)

	registry.MustRegister(requests, fetchDuration, outcomes, batches, skipped)

	return &Metrics{
		Registry:      registry,
		RequestsTotal: requests,
		FetchDuration: fetchDuration,
		OutcomesTotal: outcomes,
		BatchesTotal:  batches,
		SkippedTotal:  skipped,
	}
}

// IncRequest increments the issued-request counter.
func (m *Metrics) IncRequest() {
	if m == nil {
		return
	}
	m.RequestsTotal.Inc()
}

// ObserveDuration records one fetch duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncOutcome increments the outcome counter for a kind label.
func (m *Metrics) IncOutcome(kind string) {
	if m == nil {
		return
	}
	m.OutcomesTotal.WithLabelValues(kind).Inc()
}

// IncBatch increments the batch counter.
func (m *Metrics) IncBatch() {
	if m == nil {
		return
	}
	m.BatchesTotal.Inc()
}

// AddSkipped adds cap-skipped URLs to the skip counter.
func (m *Metrics) AddSkipped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SkippedTotal.Add(float64(n))
}
