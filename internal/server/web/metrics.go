package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus instrumentation of the HTTP surface. It owns a
// private registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestDurations *prometheus.HistogramVec
	UploadedBytes    prometheus.Counter
	ServedBytes      prometheus.Counter
}

// NewMetrics registers the collectors. records, when non-nil, is sampled
// for the stored-records gauge.
func NewMetrics(records func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "filedrop",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "method", "status"}),
		UploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filedrop",
			Name:      "uploaded_bytes_total",
			Help:      "Payload bytes persisted by successful uploads.",
		}),
		ServedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "filedrop",
			Name:      "served_bytes_total",
			Help:      "Blob bytes sent to clients.",
		}),
	}

	m.registry.MustRegister(
		m.RequestDurations,
		m.UploadedBytes,
		m.ServedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if records != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "filedrop",
			Name:      "stored_records",
			Help:      "Metadata records currently held.",
		}, func() float64 { return float64(records()) }))
	}

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes request durations per operation.
func (m *Metrics) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else {
				status = http.StatusInternalServerError
			}
		}

		m.RequestDurations.
			WithLabelValues(operation(c.Path()), c.Request().Method, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// operation maps a route to a bounded label value.
func operation(route string) string {
	switch route {
	case "/upload":
		return "upload"
	case "/file/:key":
		return "file"
	case "/info/:key":
		return "info"
	case "/health":
		return "health"
	case "/metrics":
		return "metrics"
	case "/*":
		return "static"
	default:
		return "other"
	}
}
