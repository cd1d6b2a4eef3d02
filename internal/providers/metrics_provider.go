package providers

import (
	"dashgate/internal/structures"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncUpstreamTotal(endpoint string, status int)
	ObserveUpstreamDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSupersededPages()
	ObserveTabs(tabs TabCounter)
}

// TabCounter reports the number of live dashboard tabs.
type TabCounter interface {
	Len() int
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	supersededPages  prometheus.Counter

	tabsOnce sync.Once
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncUpstreamTotal counts backend calls; status 0 means the transport failed.
func (m *MetricsProvider) IncUpstreamTotal(endpoint string, status int) {
	bucket := "error"
	if status > 0 {
		bucket = httpStatusBucket(status)
	}
	m.upstreamTotal.WithLabelValues(endpoint, bucket).Inc()
}

func (m *MetricsProvider) ObserveUpstreamDuration(endpoint string, duration time.Duration) {
	m.upstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSupersededPages() {
	m.supersededPages.Inc()
}

// ObserveTabs exposes tabs.Len() as the open tabs gauge. Only the first
// counter is registered.
func (m *MetricsProvider) ObserveTabs(tabs TabCounter) {
	m.tabsOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dashgate_tabs_open",
			Help: "Current number of dashboard tabs holding state",
		}, func() float64 {
			return float64(tabs.Len())
		})
	})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dashgate_requests_total",
			Help: "Total number of HTTP requests served to dashboard pages",
		}, []string{"endpoint", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashgate_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		upstreamTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dashgate_upstream_requests_total",
			Help: "Total number of calls to the metrics backend",
		}, []string{"endpoint", "status"}),
		upstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashgate_upstream_duration_seconds",
			Help:    "Metrics backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dashgate_storage_hits_total",
			Help: "Total number of tab storage hits",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dashgate_storage_misses_total",
			Help: "Total number of tab storage misses",
		}),
		supersededPages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dashgate_superseded_pages_total",
			Help: "Page fetches discarded because a later page was requested",
		}),
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncUpstreamTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveUpstreamDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) IncSupersededPages()                               {}
func (n *noopMetrics) ObserveTabs(_ TabCounter)                          {}
