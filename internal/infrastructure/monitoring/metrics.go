package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the hub.
type Metrics struct {
	// Broker metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AuthDenials     *prometheus.CounterVec
	DroppedMessages prometheus.Counter

	// HTTP metrics (health/metrics surface, not the ws data path)
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	registry *prometheus.Registry
}

// Request outcomes recorded per broker request.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

// NewMetrics creates a metrics collector with its own registry, so
// multiple hub instances can coexist in one process.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		startTime: time.Now(),
		registry:  registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_requests_total",
				Help: "Total number of storage requests processed",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_request_duration_seconds",
				Help:    "Storage request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method"},
		),
		AuthDenials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_auth_denials_total",
				Help: "Total number of authorization denials",
			},
			[]string{"method"},
		),
		DroppedMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hub_dropped_messages_total",
				Help: "Total number of silently dropped transport messages",
			},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hub_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction"},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hub_uptime_seconds",
				Help: "Hub uptime in seconds",
			},
		),
	}
}

// RecordRequest records one broker request with its outcome and duration.
func (m *Metrics) RecordRequest(method, outcome string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordDenial records an authorization denial.
func (m *Metrics) RecordDenial(method string) {
	m.AuthDenials.WithLabelValues(method).Inc()
}

// RecordDrop records a silently dropped transport message.
func (m *Metrics) RecordDrop() {
	m.DroppedMessages.Inc()
}

// RecordHTTPRequest records an HTTP request on the non-ws surface.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ConnectionOpened increments the connection gauge.
func (m *Metrics) ConnectionOpened() {
	m.WSConnections.Inc()
}

// ConnectionClosed decrements the connection gauge.
func (m *Metrics) ConnectionClosed() {
	m.WSConnections.Dec()
}

// RecordWSMessage records a websocket message ("in" or "out").
func (m *Metrics) RecordWSMessage(direction string) {
	m.WSMessages.WithLabelValues(direction).Inc()
}

// Handler returns the Prometheus exposition handler for this collector.
// Uptime is refreshed on every scrape.
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
		inner.ServeHTTP(w, r)
	})
}
