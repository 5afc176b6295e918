// Package metrics defines the Prometheus metrics exported by the proxy.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamFetches counts provider fetches by endpoint and outcome
	UpstreamFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plutotv_upstream_fetches_total",
		Help: "Total number of provider fetches",
	}, []string{"endpoint", "outcome"})

	// UpstreamFetchDuration tracks provider fetch latency by endpoint
	UpstreamFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plutotv_upstream_fetch_duration_seconds",
		Help:    "Duration of provider fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// CatalogLoads counts channel catalog load attempts by outcome
	CatalogLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plutotv_catalog_loads_total",
		Help: "Total number of channel catalog load attempts",
	}, []string{"outcome"})

	// CatalogChannels is the number of channels in the loaded catalog
	CatalogChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "plutotv_catalog_channels",
		Help: "Number of channels in the loaded catalog",
	})

	// GuideCacheLookups counts schedule cache lookups by result (hit or miss)
	GuideCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plutotv_guide_cache_lookups_total",
		Help: "Total number of schedule cache lookups",
	}, []string{"result"})

	// GuideEntriesSkipped counts timeline items dropped because of bad timestamps
	GuideEntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plutotv_guide_entries_skipped_total",
		Help: "Total number of timeline items skipped while building guide entries",
	})

	// HTTPRequests counts served HTTP requests by route and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plutotv_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"route", "status"})
)

// RecordUpstreamFetch records one provider fetch
func RecordUpstreamFetch(endpoint, outcome string, d time.Duration) {
	UpstreamFetches.WithLabelValues(endpoint, outcome).Inc()
	UpstreamFetchDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordCatalogLoad records a catalog load attempt; channels is only applied on success
func RecordCatalogLoad(outcome string, channels int) {
	CatalogLoads.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		CatalogChannels.Set(float64(channels))
	}
}

// RecordGuideCache records a schedule cache lookup
func RecordGuideCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	GuideCacheLookups.WithLabelValues(result).Inc()
}

// RecordGuideEntrySkipped increments the skipped guide entry counter
func RecordGuideEntrySkipped() {
	GuideEntriesSkipped.Inc()
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route string, status int) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
