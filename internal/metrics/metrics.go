package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000}

var (
	ExploreRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_explore_requests_total",
		Help: "Total number of exploration queries",
	})
	ExploreEmptyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_explore_empty_total",
		Help: "Total number of exploration queries with no records",
	})
	ExploreDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "biodex_explore_duration_ms",
		Help:    "End-to-end exploration duration in milliseconds",
		Buckets: durationBuckets,
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biodex_provider_requests_total",
		Help: "Total outbound provider requests",
	}, []string{"provider"})
	ProviderFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biodex_provider_fail_total",
		Help: "Total outbound provider failures by kind",
	}, []string{"provider", "kind"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biodex_provider_duration_ms",
		Help:    "Outbound provider call duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"provider"})
	RecordsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biodex_records_rejected_total",
		Help: "Raw items dropped by the normalizer, by reason",
	}, []string{"reason"})
	RecordsDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_records_duplicate_total",
		Help: "Records dropped as duplicate display names",
	})
	ImageResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "biodex_image_resolutions_total",
		Help: "Image resolutions by the source that answered",
	}, []string{"source"})
	ImageCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_image_cache_hits_total",
		Help: "Image cache hits",
	})
	ImageCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_image_cache_misses_total",
		Help: "Image cache misses",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "biodex_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "biodex_ws_clients",
		Help: "Connected session event sockets",
	})
)

func init() {
	prometheus.MustRegister(ExploreRequestsTotal)
	prometheus.MustRegister(ExploreEmptyTotal)
	prometheus.MustRegister(ExploreDurationMs)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderFailTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(RecordsRejectedTotal)
	prometheus.MustRegister(RecordsDuplicateTotal)
	prometheus.MustRegister(ImageResolutionsTotal)
	prometheus.MustRegister(ImageCacheHitsTotal)
	prometheus.MustRegister(ImageCacheMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(WSClients)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
