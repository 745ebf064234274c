package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voicecommerce"

// Fault kinds recorded at every point where an error is swallowed.
const (
	FaultUnconfigured = "unconfigured"
	FaultUpstream     = "upstream"
	FaultCacheRead    = "cache_read"
	FaultCacheWrite   = "cache_write"
	FaultPriceParse   = "price_parse"
	FaultSpeech       = "speech"
)

var (
	// cacheLookupsTotal counts result cache lookups by outcome.
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of result cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	// upstreamRequestsTotal counts scraping actor calls per payload candidate.
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of product search upstream calls",
		},
		[]string{"candidate", "status"}, // status: success, empty, error
	)

	// upstreamDuration is a histogram of scraping actor call duration.
	upstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Duration of product search upstream calls in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// faultsTotal counts non-fatal faults by kind.
	faultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Total number of recovered faults by kind",
		},
		[]string{"kind"},
	)

	registerOnce sync.Once
)

// RegisterMetrics registers all collectors with the given registerer.
// Safe to call more than once; only the first call registers.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			cacheLookupsTotal,
			upstreamRequestsTotal,
			upstreamDuration,
			faultsTotal,
		)
	})
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordUpstreamRequest records one payload candidate attempt.
func RecordUpstreamRequest(candidate, status string, seconds float64) {
	upstreamRequestsTotal.WithLabelValues(candidate, status).Inc()
	upstreamDuration.Observe(seconds)
}

// RecordFault records a recovered fault.
func RecordFault(kind string) {
	faultsTotal.WithLabelValues(kind).Inc()
}
