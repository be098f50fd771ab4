package matching

import "fmt"

// Fallback labels for optional coach fields. The formatted output never
// carries nulls.
const (
	rateFallback       = "Rate not specified"
	experienceFallback = "Experience not specified"
)

// FormattedCoach is the external response shape of one match. Field names
// follow the wire contract of the client application (camelCase).
type FormattedCoach struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Specialties       []string `json:"specialties"`
	Languages         []string `json:"languages"`
	Bio               string   `json:"bio"`
	SessionRate       string   `json:"sessionRate"`
	Experience        string   `json:"experience"`
	Rating            float64  `json:"rating"`
	MatchScore        int      `json:"matchScore"`
	MatchQuality      string   `json:"matchQuality"`
	VirtualAvailable  bool     `json:"virtualAvailable"`
	InPersonAvailable bool     `json:"inPersonAvailable"`
	Email             string   `json:"email"`
}

// FormatCandidate projects one scored candidate into the response shape.
// Both session-format flags derive from the single availability boolean; the
// data model has no distinct virtual/in-person attribute.
func FormatCandidate(candidate ScoredCandidate) FormattedCoach {
	coach := candidate.Coach

	sessionRate := rateFallback
	if coach.HourlyRate != nil {
		sessionRate = fmt.Sprintf("$%v/session", *coach.HourlyRate)
	}
	experience := experienceFallback
	if coach.Experience != nil {
		experience = fmt.Sprintf("%d years", *coach.Experience)
	}
	rating := 0.0
	if coach.Rating != nil {
		rating = *coach.Rating
	}
	bio := ""
	if coach.Bio != nil {
		bio = *coach.Bio
	}

	return FormattedCoach{
		ID:                fmt.Sprintf("%d", coach.ID),
		Name:              coach.FirstName + " " + coach.LastName,
		Specialties:       stringSet(coach.Specialties),
		Languages:         stringSet(coach.Languages),
		Bio:               bio,
		SessionRate:       sessionRate,
		Experience:        experience,
		Rating:            rating,
		MatchScore:        candidate.MatchScore,
		MatchQuality:      QualityBand(candidate.MatchScore),
		VirtualAvailable:  coach.IsAvailable,
		InPersonAvailable: coach.IsAvailable,
		Email:             coach.Email,
	}
}

// Format projects a ranked candidate list. The result is never nil so an
// empty pool serializes as an empty JSON array, not null.
func Format(candidates []ScoredCandidate) []FormattedCoach {
	out := make([]FormattedCoach, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, FormatCandidate(candidate))
	}
	return out
}

func stringSet(values *[]string) []string {
	if values == nil {
		return []string{}
	}
	return *values
}
