package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stacklane"

// Metrics implements every hook interface on top of a private Prometheus
// registry.
type Metrics struct {
	registry *prometheus.Registry

	layouts         *prometheus.CounterVec
	layoutDuration  prometheus.Histogram
	layoutLanes     prometheus.Histogram
	layoutIntervals prometheus.Histogram
	renders         *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	cacheEvents     *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewMetrics creates and registers all collectors, plus the Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total",
			Help: "Layouts computed, by result.",
		}, []string{"result"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Time to compute one layout.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		layoutLanes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_max_concurrency",
			Help:    "Lanes needed per layout.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		layoutIntervals: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_intervals",
			Help:    "Intervals per layout.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "renders_total",
			Help: "Render calls, by formats and result.",
		}, []string{"formats", "result"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Time to render all requested formats.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_events_total",
			Help: "Cache lookups and writes, by key type and event.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache, by key type.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "API requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_in_flight",
			Help: "API requests being served.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.layouts, m.layoutDuration, m.layoutLanes, m.layoutIntervals,
		m.renders, m.renderDuration,
		m.cacheEvents, m.cacheBytes,
		m.requests, m.requestDuration, m.inFlight,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, intervals, maxConcurrency int, d time.Duration, err error) {
	m.layouts.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	m.layoutDuration.Observe(d.Seconds())
	m.layoutLanes.Observe(float64(maxConcurrency))
	m.layoutIntervals.Observe(float64(intervals))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	m.renders.WithLabelValues(strings.Join(formats, ","), result(err)).Inc()
	if err == nil {
		m.renderDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
