package matching

import "sort"

// Quality bands group scores for display only.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
)

// Rank sorts candidates by match score descending, in place. The sort is
// stable: candidates with equal scores keep their relative input order, which
// is the only defined tie-break. No truncation happens here.
func Rank(candidates []ScoredCandidate) []ScoredCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	return candidates
}

// QualityBand classifies a match score: excellent at 90 and above, good from
// 75 up to 90, fair below 75.
func QualityBand(score int) string {
	switch {
	case score >= 90:
		return QualityExcellent
	case score >= 75:
		return QualityGood
	default:
		return QualityFair
	}
}
