package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the prometheus registry for the process.
type Collector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Count of handled HTTP requests.",
	}, []string{"method", "path", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Count of errors returned to clients, by error code.",
	}, []string{"code"})
	registry.MustRegister(requests, duration, errs)
	registry.MustRegister(collectors.NewGoCollector())
	return &Collector{registry: registry, requests: requests, duration: duration, errors: errs}
}

func (c *Collector) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	c.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveError(code string) {
	c.errors.WithLabelValues(code).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
