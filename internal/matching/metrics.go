package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_requests_total",
			Help: "Total number of match ranking requests",
		},
	)

	candidatesScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored across ranking passes",
		},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of computed compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	rankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_ranking_duration_seconds",
			Help:    "Time spent ranking a candidate pool",
			Buckets: prometheus.DefBuckets,
		},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_cache_lookups_total",
			Help: "Cache lookups by concern and outcome",
		},
		[]string{"cache", "outcome"},
	)

	traitAssessmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_trait_assessments_total",
			Help: "Total number of personality trait inferences persisted",
		},
	)
)

func recordMatchRequest() {
	matchRequestsTotal.Inc()
}

func recordCandidatesScored(count int) {
	candidatesScoredTotal.Add(float64(count))
}

func recordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func recordRankingDuration(d time.Duration) {
	rankingDuration.Observe(d.Seconds())
}

func recordCacheHit(cache string) {
	cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func recordCacheMiss(cache string) {
	cacheLookups.WithLabelValues(cache, "miss").Inc()
}

func recordTraitAssessment() {
	traitAssessmentsTotal.Inc()
}
