package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks exports pipeline, cache and HTTP events as Prometheus
// metrics. It implements [PipelineHooks], [CacheHooks] and [HTTPHooks].
type PrometheusHooks struct {
	alignTotal     *prometheus.CounterVec
	alignDuration  *prometheus.HistogramVec
	latticeLinks   prometheus.Histogram
	searchTotal    prometheus.Counter
	searchDuration prometheus.Histogram
	searchPaths    prometheus.Histogram
	searchPops     prometheus.Counter
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpInFlight   prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks registers the pathlattice collectors with reg. Passing a
// private [prometheus.NewRegistry] keeps tests independent of the default
// registry. Registering twice with the same registry panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		alignTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathlattice_align_total",
			Help: "Lattices built, by result",
		}, []string{"result"}),
		alignDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathlattice_align_duration_seconds",
			Help:    "Time spent building a lattice",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"profile"}),
		latticeLinks: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathlattice_lattice_links",
			Help:    "Links allocated per lattice",
			Buckets: prometheus.ExponentialBuckets(16, 4, 10),
		}),
		searchTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "pathlattice_search_total",
			Help: "Top-K searches run",
		}),
		searchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathlattice_search_duration_seconds",
			Help:    "Time spent in top-K searches",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		searchPaths: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pathlattice_search_paths",
			Help:    "Paths returned per top-K search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		searchPops: f.NewCounter(prometheus.CounterOpts{
			Name: "pathlattice_search_pops_total",
			Help: "Search nodes popped from the priority queue",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathlattice_cache_events_total",
			Help: "Cache lookups and writes, by key type and event",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathlattice_cache_written_bytes_total",
			Help: "Bytes written to the cache, by key type",
		}, []string{"key_type"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "pathlattice_http_requests_in_flight",
			Help: "HTTP requests being served",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pathlattice_http_requests_total",
			Help: "HTTP requests served, by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pathlattice_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"method", "route"}),
	}
}

func (h *PrometheusHooks) OnAlignStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnAlignComplete(_ context.Context, profile string, links int, d time.Duration, err error) {
	if err != nil {
		h.alignTotal.WithLabelValues("error").Inc()
		return
	}
	h.alignTotal.WithLabelValues("ok").Inc()
	h.alignDuration.WithLabelValues(profile).Observe(d.Seconds())
	h.latticeLinks.Observe(float64(links))
}

func (h *PrometheusHooks) OnSearchStart(context.Context, int) {}

func (h *PrometheusHooks) OnSearchComplete(_ context.Context, _ int, found int, pops int64, d time.Duration) {
	h.searchTotal.Inc()
	h.searchDuration.Observe(d.Seconds())
	h.searchPaths.Observe(float64(found))
	h.searchPops.Add(float64(pops))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.httpInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.httpInFlight.Dec()
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
