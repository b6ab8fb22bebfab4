// Package metrics holds the Prometheus collectors of the rate service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics is the set of collectors shared by the HTTP layer and the usecases.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Pricing
	QuotesTotal    *prometheus.CounterVec
	QuoteDuration  *prometheus.HistogramVec
	QuotesReturned prometheus.Histogram

	// Catalog snapshot
	CatalogLoadsTotal   *prometheus.CounterVec
	CatalogLoadDuration prometheus.Histogram
	CatalogCarriers     prometheus.Gauge

	// Import
	ImportsTotal    *prometheus.CounterVec
	ImportRowsTotal *prometheus.CounterVec
}

// New builds unregistered collectors under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "requests_total",
			Help:      "Pricing operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		QuoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "duration_seconds",
			Help:      "Time spent resolving prices, snapshot load included",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		QuotesReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "quotes_returned",
			Help:      "Number of quotes returned per comparison",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		CatalogLoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Catalog snapshot reads by source (cache or store)",
		}, []string{"source"}),
		CatalogLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "load_duration_seconds",
			Help:      "Time spent loading the catalog from the store",
			Buckets:   prometheus.DefBuckets,
		}),
		CatalogCarriers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "carriers",
			Help:      "Carriers in the last loaded snapshot",
		}),

		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Rate sheet imports by outcome",
		}, []string{"outcome"}),
		ImportRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rate sheet rows by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QuotesTotal,
		m.QuoteDuration,
		m.QuotesReturned,
		m.CatalogLoadsTotal,
		m.CatalogLoadDuration,
		m.CatalogCarriers,
		m.ImportsTotal,
		m.ImportRowsTotal,
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
