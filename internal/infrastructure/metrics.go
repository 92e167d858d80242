package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process metrics for the analysis engine. Registered once on the default
// registry; collaborators owning an HTTP surface can expose them however
// they like.
var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kpilens_analyses_total",
		Help: "Analyses performed, by terminal status.",
	}, []string{"status"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kpilens_analysis_duration_seconds",
		Help:    "Wall-clock duration of uncached analysis runs.",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kpilens_cache_hits_total",
		Help: "Analysis cache hits.",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kpilens_cache_misses_total",
		Help: "Analysis cache misses.",
	})

	mappingGapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kpilens_mapping_gaps_total",
		Help: "Mapping gaps recorded across all analyses.",
	})
)

// ObserveAnalysis records the outcome of one uncached analysis run
func ObserveAnalysis(status string, seconds float64, gaps int) {
	analysesTotal.WithLabelValues(status).Inc()
	analysisDuration.Observe(seconds)
	mappingGapsTotal.Add(float64(gaps))
}

// ObserveCache records whether a request was served from cache
func ObserveCache(hit bool) {
	if hit {
		cacheHitsTotal.Inc()
	} else {
		cacheMissesTotal.Inc()
	}
}
