// Package telemetry adapts Prometheus and OpenTelemetry to the db hook
// interfaces and the HTTP middleware.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tarun9121/project-lambok/db"
)

const namespace = "lambok"

// Collector records statement and request metrics. It implements
// db.MetricsCollector.
//
// Metrics (all namespaced with "lambok_"):
//
//	db_queries_total{operation,status}          counter
//	db_query_duration_seconds{operation}        histogram
//	http_requests_total{method,route,code}      counter
//	http_request_duration_seconds{method,route} histogram
type Collector struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ db.MetricsCollector = (*Collector)(nil)

// NewCollector registers the metrics on reg. A nil reg gets a fresh registry
// carrying the Go runtime and process collectors.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Statements executed, by SQL verb and outcome",
		}, []string{"operation", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Time spent in the database driver per statement",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"operation"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route template and status code",
		}, []string{"method", "route", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordQuery implements db.MetricsCollector.
func (c *Collector) RecordQuery(operation string, d time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	c.queries.WithLabelValues(operation, status).Inc()
	c.queryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordRequest observes one served request. route is the router template,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(method, route string, code int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
