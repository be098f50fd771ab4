package matching

import (
	"errors"
	"reflect"
	"testing"
)

func validRaw() RawPreferences {
	return RawPreferences{
		AreasOfConcern:      []string{"Anxiety", "anxiety ", "Depression"},
		TreatmentModalities: []string{" ACT "},
		Location:            " CA ",
		Language:            " English",
		GenderIdentity:      "woman",
		EthnicIdentity:      "hispanic",
		ReligiousBackground: "none",
		CoachGender:         "any",
		CoachEthnicity:      "any",
		CoachReligion:       "any",
		PaymentMethod:       "insurance",
		Availability:        []string{"Weekday Mornings", "weekday mornings"},
	}
}

func TestNormalizePreferencesCanonicalizesTags(t *testing.T) {
	prefs, err := NormalizePreferences(validRaw())
	if err != nil {
		t.Fatalf("NormalizePreferences: %v", err)
	}

	if want := []string{"anxiety", "depression"}; !reflect.DeepEqual(prefs.AreasOfConcern, want) {
		t.Fatalf("expected concerns %v, got %v", want, prefs.AreasOfConcern)
	}
	if want := []string{"act"}; !reflect.DeepEqual(prefs.TreatmentModalities, want) {
		t.Fatalf("expected modalities %v, got %v", want, prefs.TreatmentModalities)
	}
	if want := []string{"weekday mornings"}; !reflect.DeepEqual(prefs.Availability, want) {
		t.Fatalf("expected availability %v, got %v", want, prefs.Availability)
	}
	if prefs.Language != "english" {
		t.Fatalf("expected language %q, got %q", "english", prefs.Language)
	}
	if prefs.Location != "CA" {
		t.Fatalf("expected location trimmed, got %q", prefs.Location)
	}
}

func TestNormalizePreferencesIsIdempotent(t *testing.T) {
	first, err := NormalizePreferences(validRaw())
	if err != nil {
		t.Fatalf("NormalizePreferences: %v", err)
	}

	second, err := NormalizePreferences(RawPreferences(first))
	if err != nil {
		t.Fatalf("NormalizePreferences (second pass): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalization is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNormalizePreferencesRejectsMissingRequiredFields(t *testing.T) {
	raw := validRaw()
	raw.AreasOfConcern = nil
	raw.Language = "   "
	raw.PaymentMethod = ""

	_, err := NormalizePreferences(raw)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	want := map[string]bool{"areasOfConcern": true, "language": true, "paymentMethod": true}
	if len(verr.Fields) != len(want) {
		t.Fatalf("expected fields %v, got %v", want, verr.Fields)
	}
	for _, field := range verr.Fields {
		if !want[field] {
			t.Fatalf("unexpected invalid field %q in %v", field, verr.Fields)
		}
	}
}

func TestNormalizePreferencesRejectsBlankOnlySets(t *testing.T) {
	raw := validRaw()
	raw.Availability = []string{"  ", ""}

	_, err := NormalizePreferences(raw)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestNormalizePreferencesKeepsUnknownTags(t *testing.T) {
	raw := validRaw()
	raw.AreasOfConcern = []string{"some-future-concern"}

	prefs, err := NormalizePreferences(raw)
	if err != nil {
		t.Fatalf("NormalizePreferences: %v", err)
	}
	if want := []string{"some-future-concern"}; !reflect.DeepEqual(prefs.AreasOfConcern, want) {
		t.Fatalf("expected unknown tag kept, got %v", prefs.AreasOfConcern)
	}
}

func TestNormalizePreferencesOptionalModalitiesMayBeEmpty(t *testing.T) {
	raw := validRaw()
	raw.TreatmentModalities = nil

	prefs, err := NormalizePreferences(raw)
	if err != nil {
		t.Fatalf("NormalizePreferences: %v", err)
	}
	if prefs.TreatmentModalities != nil {
		t.Fatalf("expected nil modalities, got %v", prefs.TreatmentModalities)
	}
}
