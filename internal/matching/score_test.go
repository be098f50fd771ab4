package matching

import (
	"testing"

	"github.com/customadesign/ACFL/internal/models"
)

func buildCoach(id int64, specialties, languages []string) models.Coach {
	return models.Coach{
		ID:          id,
		FirstName:   "Test",
		LastName:    "Coach",
		Specialties: &specialties,
		Languages:   &languages,
		IsAvailable: true,
	}
}

func scoringPrefs(concerns []string, language string) ClientPreferences {
	prefs, err := NormalizePreferences(RawPreferences{
		AreasOfConcern:      concerns,
		Location:            "CA",
		Language:            language,
		GenderIdentity:      "woman",
		EthnicIdentity:      "prefer not to say",
		ReligiousBackground: "none",
		CoachGender:         "any",
		CoachEthnicity:      "any",
		CoachReligion:       "any",
		PaymentMethod:       "self-pay",
		Availability:        []string{"weekday_mornings"},
	})
	if err != nil {
		panic(err)
	}
	return prefs
}

func TestScorePartialSpecialtyAndFullLanguage(t *testing.T) {
	prefs := scoringPrefs([]string{"anxiety", "depression"}, "English")
	coach := buildCoach(1, []string{"anxiety"}, []string{"English"})

	// 50 + (1/2)*30 + (1/1)*20
	if got := Score(prefs, &coach); got != 85 {
		t.Fatalf("expected score 85, got %d", got)
	}
}

func TestScoreNoOverlapIsBase(t *testing.T) {
	prefs := scoringPrefs([]string{"anxiety", "depression"}, "English")
	coach := buildCoach(2, nil, []string{"Spanish"})

	if got := Score(prefs, &coach); got != 50 {
		t.Fatalf("expected base score 50, got %d", got)
	}
}

func TestScoreFullOverlapIsMax(t *testing.T) {
	prefs := scoringPrefs([]string{"anxiety", "depression"}, "English")
	coach := buildCoach(3, []string{"anxiety", "depression", "grief"}, []string{"English", "French"})

	if got := Score(prefs, &coach); got != 100 {
		t.Fatalf("expected score 100, got %d", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	prefs := scoringPrefs([]string{"anxiety", "grief", "stress"}, "German")
	coach := buildCoach(4, []string{"grief"}, []string{"German"})

	first := Score(prefs, &coach)
	for i := 0; i < 100; i++ {
		if got := Score(prefs, &coach); got != first {
			t.Fatalf("score changed between calls: %d then %d", first, got)
		}
	}
}

func TestScoreStaysInBounds(t *testing.T) {
	cases := []struct {
		concerns    []string
		language    string
		specialties []string
		languages   []string
	}{
		{[]string{"a"}, "en", nil, nil},
		{[]string{"a"}, "en", []string{"a"}, []string{"en"}},
		{[]string{"a", "b", "c"}, "en", []string{"b"}, nil},
		{[]string{"a", "b", "c", "d", "e", "f", "g"}, "en", []string{"a", "c", "e"}, []string{"en"}},
	}
	for _, tc := range cases {
		prefs := scoringPrefs(tc.concerns, tc.language)
		coach := buildCoach(5, tc.specialties, tc.languages)
		got := Score(prefs, &coach)
		if got < 0 || got > 100 {
			t.Fatalf("score %d out of bounds for %+v", got, tc)
		}
	}
}

func TestScoreMonotonicInMatchingSpecialties(t *testing.T) {
	prefs := scoringPrefs([]string{"anxiety", "depression", "grief"}, "English")

	previous := -1
	specialties := []string{}
	for _, added := range []string{"anxiety", "depression", "grief"} {
		specialties = append(specialties, added)
		coach := buildCoach(6, specialties, nil)
		got := Score(prefs, &coach)
		if got < previous {
			t.Fatalf("score decreased from %d to %d after adding %q", previous, got, added)
		}
		previous = got
	}
}

func TestScoreComparesTagsCaseInsensitively(t *testing.T) {
	prefs := scoringPrefs([]string{"Anxiety "}, " ENGLISH")
	coach := buildCoach(7, []string{"ANXIETY"}, []string{"english"})

	if got := Score(prefs, &coach); got != 100 {
		t.Fatalf("expected normalized tags to match fully, got %d", got)
	}
}

func TestScoreRoundsHalfAwayFromZero(t *testing.T) {
	// 50 + (1/3)*30 = 60, 50 + (2/3)*30 = 70: exact. One of seven matching
	// gives 50 + 30/7 = 54.29 -> 54; four of seven gives 67.14 -> 67.
	prefs := scoringPrefs([]string{"a", "b", "c", "d", "e", "f", "g"}, "en")
	coach := buildCoach(8, []string{"a"}, nil)
	if got := Score(prefs, &coach); got != 54 {
		t.Fatalf("expected 54, got %d", got)
	}
	coach = buildCoach(8, []string{"a", "b", "c", "d"}, nil)
	if got := Score(prefs, &coach); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}
