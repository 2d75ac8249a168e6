// Package telemetry exposes Prometheus metrics, OpenTelemetry tracing and
// Pyroscope profiling for the order API.
package telemetry

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderdesk"

// Metrics owns a private registry and the application's collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	fulfillments        *prometheus.CounterVec
	fulfilledQuantity   *prometheus.CounterVec
	orderTransitions    *prometheus.CounterVec
	duplicateRequests   prometheus.Counter
	fulfillmentRejected *prometheus.CounterVec
}

// NewMetrics creates the registry with Go runtime and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		fulfillments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillments_total",
			Help:      "Recorded receipts and deliveries by order kind.",
		}, []string{"kind"}),
		fulfilledQuantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfilled_quantity_total",
			Help:      "Units received or delivered by order kind.",
		}, []string{"kind"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status changes by kind and target status.",
		}, []string{"kind", "status"}),
		duplicateRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_requests_total",
			Help:      "Mutations rejected because their idempotency key was already used.",
		}),
		fulfillmentRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fulfillment_rejections_total",
			Help:      "Fulfillment submissions rejected by the server, by error code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.fulfillments,
		m.fulfilledQuantity,
		m.orderTransitions,
		m.duplicateRequests,
		m.fulfillmentRejected,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB exports connection pool statistics of db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Register adds an extra collector
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

// RecordFulfillment counts one recorded receipt or delivery
func (m *Metrics) RecordFulfillment(kind string, quantity int64) {
	m.fulfillments.WithLabelValues(kind).Inc()
	m.fulfilledQuantity.WithLabelValues(kind).Add(float64(quantity))
}

// RecordTransition counts an order status change
func (m *Metrics) RecordTransition(kind, status string) {
	m.orderTransitions.WithLabelValues(kind, status).Inc()
}

// RecordDuplicate counts a rejected idempotent retry
func (m *Metrics) RecordDuplicate() {
	m.duplicateRequests.Inc()
}

// RecordRejection counts a fulfillment rejected with code
func (m *Metrics) RecordRejection(code string) {
	m.fulfillmentRejected.WithLabelValues(code).Inc()
}

// GinMiddleware records request count and latency by route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
