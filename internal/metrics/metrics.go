// Package metrics holds the Prometheus collectors of the proxy. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "store_proxy"

type Metrics struct {
	registry *prometheus.Registry

	healthChecks    *prometheus.CounterVec
	backendHealthy  prometheus.Gauge
	upstreamLatency *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, so independent instances
// never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		healthChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "checks_total",
				Help:      "Backend health checks by outcome (ok, cached, status, timeout, network, misconfigured).",
			},
			[]string{"result"},
		),
		backendHealthy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backend_healthy",
				Help:      "1 when the last backend health check succeeded, 0 otherwise.",
			},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of calls to the remote store API.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation", "code"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests served by the proxy.",
			},
			[]string{"method", "route", "code"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Item cache lookups by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.healthChecks,
		m.backendHealthy,
		m.upstreamLatency,
		m.httpRequests,
		m.cacheLookups,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RecordHealthCheck(result string, healthy bool) {
	if m == nil {
		return
	}
	m.healthChecks.WithLabelValues(result).Inc()
	if healthy {
		m.backendHealthy.Set(1)
	} else {
		m.backendHealthy.Set(0)
	}
}

// ObserveUpstream records one outbound call. code 0 means no response.
func (m *Metrics) ObserveUpstream(operation string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(operation, strconv.Itoa(code)).Observe(duration.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, route string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}
