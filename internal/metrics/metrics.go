// Package metrics owns the prometheus collectors exported at /metrics.
//
// All methods are safe on a nil *Metrics so components can be built without
// instrumentation (CLI one-shots, tests).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "precario"

// Metrics groups the collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	labelRenders  *prometheus.CounterVec
	products      *prometheus.GaugeVec
	importRecords *prometheus.CounterVec
	importFiles   *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		labelRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "labels",
			Name:      "rendered_total",
			Help:      "Labels rendered by label size and output format.",
		}, []string{"size", "format"}),
		products: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products in the catalog by print flag, as of the last listing.",
		}, []string{"print"}),
		importRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Imported records by collection and result (created, updated, failed).",
		}, []string{"collection", "result"}),
		importFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "files_total",
			Help:      "Inbox files processed by result (processed, failed).",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.labelRenders,
		m.products,
		m.importRecords,
		m.importFiles,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// LabelsRendered counts n labels of one size written in format (html, pdf).
func (m *Metrics) LabelsRendered(size, format string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.labelRenders.WithLabelValues(size, format).Add(float64(n))
}

// SetProductCounts publishes how many products are and are not flagged for
// printing.
func (m *Metrics) SetProductCounts(printable, total int) {
	if m == nil {
		return
	}
	m.products.WithLabelValues("true").Set(float64(printable))
	m.products.WithLabelValues("false").Set(float64(total - printable))
}

// ImportRecords adds the outcome of one import for a collection.
func (m *Metrics) ImportRecords(collection string, created, updated, failed int) {
	if m == nil {
		return
	}
	m.importRecords.WithLabelValues(collection, "created").Add(float64(created))
	m.importRecords.WithLabelValues(collection, "updated").Add(float64(updated))
	m.importRecords.WithLabelValues(collection, "failed").Add(float64(failed))
}

// ImportFile counts one inbox file by result.
func (m *Metrics) ImportFile(result string) {
	if m == nil {
		return
	}
	m.importFiles.WithLabelValues(result).Inc()
}
