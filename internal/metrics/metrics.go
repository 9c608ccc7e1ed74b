// Package metrics exposes the run counters of the collector to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of one collector process.
type Metrics struct {
	// Fetch metrics
	FetchAttempts    *prometheus.CounterVec
	FetchRetries     *prometheus.CounterVec
	FetchUnavailable *prometheus.CounterVec

	// Listing metrics
	PagesCompleted   *prometheus.CounterVec
	ExtractionLosses *prometheus.CounterVec
	BooksCollected   prometheus.Gauge

	// Enrichment metrics
	EnrichmentSucceeded *prometheus.CounterVec
	EnrichmentFailed    *prometheus.CounterVec

	// Output
	BooksWritten prometheus.Counter

	registry *prometheus.Registry
}

// New registers every metric on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lovelybooks"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		FetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "HTTP attempts issued per endpoint",
			},
			[]string{"endpoint"},
		),
		FetchRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_retries_total",
				Help:      "Failed attempts followed by a backoff wait",
			},
			[]string{"endpoint"},
		),
		FetchUnavailable: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_unavailable_total",
				Help:      "Addresses that exhausted their retry budget",
			},
			[]string{"endpoint"},
		),
		PagesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_completed_total",
				Help:      "Listing pages processed, by outcome",
			},
			[]string{"category", "outcome"},
		),
		ExtractionLosses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_losses_total",
				Help:      "Listing entries dropped because they could not be extracted",
			},
			[]string{"category"},
		),
		BooksCollected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "books_collected",
				Help:      "Unique books in the record set",
			},
		),
		EnrichmentSucceeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichment_succeeded_total",
				Help:      "Books enriched successfully, by stage",
			},
			[]string{"stage"},
		),
		EnrichmentFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "enrichment_failed_total",
				Help:      "Books left unchanged by a stage, by stage",
			},
			[]string{"stage"},
		),
		BooksWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "books_written_total",
				Help:      "Books serialized into the output document",
			},
		),
		registry: registry,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
