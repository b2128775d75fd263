// Package observability holds the Prometheus metrics for search, resolve and dataset loading.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "schoolfinder"

// Metrics holds the Prometheus counters, histograms, and gauges for the search service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Searches      *prometheus.CounterVec // labels: match_type
	SearchResults prometheus.Histogram
	Resolves      *prometheus.CounterVec // labels: outcome={found,not_found}

	// Dataset metrics.
	DatasetRows         prometheus.Gauge
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
}

// NewMetrics creates all metrics and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid "already registered" panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches by the match type that produced the results.",
		}, []string{"match_type"}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of matching schools per search before the display limit.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		Resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolves_total",
			Help:      "School detail lookups by outcome.",
		}, []string{"outcome"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows in the dataset currently in service.",
		}),
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete dataset read and normalization.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Searches,
			m.SearchResults,
			m.Resolves,
			m.DatasetRows,
			m.DatasetLoads,
			m.DatasetLoadDuration,
		)
	}
	return m
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(matchType string, total int) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(matchType).Inc()
	m.SearchResults.Observe(float64(total))
}

// ObserveResolve records one detail lookup.
func (m *Metrics) ObserveResolve(found bool) {
	if m == nil {
		return
	}
	outcome := "found"
	if !found {
		outcome = "not_found"
	}
	m.Resolves.WithLabelValues(outcome).Inc()
}

// ObserveLoad records a dataset load. rows is ignored when err is non-nil.
func (m *Metrics) ObserveLoad(rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.DatasetLoadDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.DatasetLoads.WithLabelValues("error").Inc()
		return
	}
	m.DatasetLoads.WithLabelValues("success").Inc()
	m.DatasetRows.Set(float64(rows))
}
