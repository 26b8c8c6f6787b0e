package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded by fitness_entry_writes_total.
const (
	entryCreated  = "created"
	entryUpdated  = "updated"
	entryConflict = "conflict"
	entryRejected = "rejected"
)

// metrics owns its own registry so each Handler (and each test) starts clean.
type metrics struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	entryWrites  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitness",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "fitness",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),
		entryWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fitness",
				Subsystem: "entry",
				Name:      "writes_total",
				Help:      "Daily entry upserts by outcome.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.entryWrites,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *metrics) recordEntryWrite(outcome string) {
	m.entryWrites.WithLabelValues(outcome).Inc()
}

// instrument records request count and latency per route template.
func (m *metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// handler exposes the registry in the Prometheus text format.
func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
