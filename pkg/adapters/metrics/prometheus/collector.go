package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records service metrics on its own registry
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	serverUp        *prometheus.GaugeVec
	healthChecks    *prometheus.CounterVec
	buildInfo       *prometheus.GaugeVec
}

// NewCollector creates a new Prometheus metrics collector.
// Each collector owns a fresh registry, so several can coexist in one process.
func NewCollector(version string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hello_http_requests_total",
				Help: "Total number of HTTP requests served by the public site",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hello_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		serverUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hello_server_up",
				Help: "Whether a listener is bound and serving (1) or stopped (0)",
			},
			[]string{"server"},
		),
		healthChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hello_health_checks_total",
				Help: "Total number of health checks by result",
			},
			[]string{"result"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hello_build_info",
				Help: "Build information, always 1",
			},
			[]string{"version"},
		),
	}

	c.buildInfo.WithLabelValues(version).Set(1)

	return c
}

// ObserveRequest records a finished HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetServerUp records whether the named listener is serving
func (c *Collector) SetServerUp(server string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	c.serverUp.WithLabelValues(server).Set(v)
}

// IncHealthChecks counts a health check
func (c *Collector) IncHealthChecks(healthy bool) {
	result := "healthy"
	if !healthy {
		result = "unhealthy"
	}
	c.healthChecks.WithLabelValues(result).Inc()
}

// Handler returns the exposition handler for this collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
