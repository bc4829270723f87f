// Package metrics defines the prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio_gains"

// Price lookup outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeUnavailable = "unavailable"
	OutcomeRejected    = "rejected" // circuit open or rate wait aborted
)

// Metrics groups every collector. Construct it once per registry.
type Metrics struct {
	registry *prometheus.Registry

	PriceLookups   *prometheus.CounterVec
	PriceLatency   *prometheus.HistogramVec
	RowsImported   prometheus.Counter
	RowsSkipped    prometheus.Counter
	RejectedSales  prometheus.Counter
	ReportDuration prometheus.Histogram
	ReportErrors   prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PriceLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_lookups_total",
			Help:      "Price lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		PriceLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_lookup_duration_seconds",
			Help:      "Latency of price lookups.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		RowsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_imported_total",
			Help:      "Rows turned into transactions by imports.",
		}),
		RowsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rows_skipped_total",
			Help:      "Import rows skipped as unrecognized or malformed.",
		}),
		RejectedSales: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejected_sales_total",
			Help:      "Sales rejected for exceeding the held shares.",
		}),
		ReportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time to build a full portfolio report.",
			Buckets:   prometheus.DefBuckets,
		}),
		ReportErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_symbol_errors_total",
			Help:      "Symbols reported as error rows.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
