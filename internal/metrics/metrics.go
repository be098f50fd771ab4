package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acfl_match_requests_total",
		Help: "Completed coach-match computations.",
	})

	MatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acfl_match_failures_total",
		Help: "Match requests rejected before ranking, by reason.",
	}, []string{"reason"})

	MatchCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acfl_match_candidates",
		Help:    "Candidate pool size per match request.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	CoachPoolCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acfl_coach_pool_cache_hits_total",
		Help: "Coach pool retrievals served from the cache.",
	})

	CoachPoolCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acfl_coach_pool_cache_misses_total",
		Help: "Coach pool retrievals that fell through to the database.",
	})
)
