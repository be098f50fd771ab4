package matching

import (
	"math"

	"github.com/customadesign/ACFL/internal/models"
)

// Weights of the two preference dimensions that participate in scoring.
// Modalities, demographics, coach-preference fields, payment, and
// availability are retrieval filters or display data, not scoring inputs.
const (
	baseScore       = 50.0
	specialtyWeight = 30.0
	languageWeight  = 20.0

	minScore = 0
	maxScore = 100
)

// ScoredCandidate pairs a coach with the match score computed for one
// request. It lives only for the duration of that request.
type ScoredCandidate struct {
	Coach      models.Coach
	MatchScore int
}

// Score computes the 0-100 match score for one coach against normalized
// preferences. Pure and deterministic: identical inputs always produce the
// identical score.
//
// The base of 50 reflects structural uncertainty: a coach with no declared
// overlap is still a plausible match because not every preference has
// machine-checkable profile data.
func Score(prefs ClientPreferences, coach *models.Coach) int {
	total := baseScore
	total += specialtyWeight * overlapRatio(prefs.AreasOfConcern, coachTags(coach.Specialties))
	if prefs.Language != "" {
		total += languageWeight * overlapRatio([]string{prefs.Language}, coachTags(coach.Languages))
	}

	rounded := int(math.Round(total))
	if rounded < minScore {
		return minScore
	}
	if rounded > maxScore {
		return maxScore
	}
	return rounded
}

// overlapRatio returns |want ∩ have| / |want|, or 0 for an empty want set so
// the accumulation can never divide by zero.
func overlapRatio(want, have []string) float64 {
	if len(want) == 0 {
		return 0
	}
	haveSet := make(map[string]struct{}, len(have))
	for _, tag := range have {
		haveSet[tag] = struct{}{}
	}
	matched := 0
	for _, tag := range want {
		if _, ok := haveSet[tag]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

func coachTags(values *[]string) []string {
	if values == nil {
		return nil
	}
	return NormalizeTagSet(*values)
}
