package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/customadesign/ACFL/internal/matching"
	"github.com/customadesign/ACFL/internal/metrics"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
)

// scoreWorkers bounds the scoring fan-out. Candidates score independently of
// each other; results are written by index so the pool's input order reaches
// the stable sort intact.
const scoreWorkers = 8

type CoachPoolSource interface {
	ListAvailable(ctx context.Context, filter repository.CoachPoolFilter) ([]models.Coach, error)
}

// CoachPoolCache is an optional time-bounded cache for the unfiltered coach
// pool. A miss or a cache failure falls through to the source.
type CoachPoolCache interface {
	GetPool(ctx context.Context) ([]models.Coach, error)
	SetPool(ctx context.Context, coaches []models.Coach) error
}

// MatchOptions parameterizes the one scoring engine shared by the general
// match endpoint and the client coach-search endpoint.
type MatchOptions struct {
	// PreFilter narrows retrieval to coaches whose specialties and languages
	// overlap the preferences. It never changes score values.
	PreFilter bool
}

type MatchService struct {
	coachRepo CoachPoolSource
	cache     CoachPoolCache
}

func NewMatchService(coachRepo CoachPoolSource, cache CoachPoolCache) *MatchService {
	return &MatchService{coachRepo: coachRepo, cache: cache}
}

// Match runs the full pipeline: normalize, retrieve, score, rank, format.
// Invalid preferences fail fast with *matching.ValidationError before any
// retrieval happens; retrieval failures abort with ErrRetrieval and no
// partial results. An empty pool is a valid empty result, not an error.
func (s *MatchService) Match(
	ctx context.Context,
	raw matching.RawPreferences,
	opts MatchOptions,
) ([]matching.FormattedCoach, error) {
	prefs, err := matching.NormalizePreferences(raw)
	if err != nil {
		metrics.MatchFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	pool, err := s.retrievePool(ctx, prefs, opts)
	if err != nil {
		metrics.MatchFailures.WithLabelValues("retrieval").Inc()
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	candidates := scorePool(prefs, pool)
	matching.Rank(candidates)

	metrics.MatchRequests.Inc()
	metrics.MatchCandidates.Observe(float64(len(candidates)))

	return matching.Format(candidates), nil
}

func (s *MatchService) retrievePool(
	ctx context.Context,
	prefs matching.ClientPreferences,
	opts MatchOptions,
) ([]models.Coach, error) {
	filter := repository.CoachPoolFilter{}
	if opts.PreFilter {
		filter.Specialties = prefs.AreasOfConcern
		if prefs.Language != "" {
			filter.Languages = []string{prefs.Language}
		}
	}

	cacheable := s.cache != nil && len(filter.Specialties) == 0 && len(filter.Languages) == 0
	if cacheable {
		if pool, err := s.cache.GetPool(ctx); err == nil && pool != nil {
			metrics.CoachPoolCacheHits.Inc()
			return pool, nil
		}
		metrics.CoachPoolCacheMisses.Inc()
	}

	pool, err := s.coachRepo.ListAvailable(ctx, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		// Cache write failures are not the caller's problem.
		_ = s.cache.SetPool(ctx, pool)
	}
	return pool, nil
}

func scorePool(prefs matching.ClientPreferences, pool []models.Coach) []matching.ScoredCandidate {
	candidates := make([]matching.ScoredCandidate, len(pool))
	if len(pool) == 0 {
		return candidates
	}

	workers := scoreWorkers
	if len(pool) < workers {
		workers = len(pool)
	}

	var wg sync.WaitGroup
	indexes := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				candidates[i] = matching.ScoredCandidate{
					Coach:      pool[i],
					MatchScore: matching.Score(prefs, &pool[i]),
				}
			}
		}()
	}
	for i := range pool {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return candidates
}
