package matching

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RawPreferences is the questionnaire payload exactly as submitted by the
// intake form.
type RawPreferences struct {
	AreasOfConcern           []string `json:"areasOfConcern" validate:"required,min=1"`
	TreatmentModalities      []string `json:"treatmentModalities"`
	Location                 string   `json:"location" validate:"required"`
	Language                 string   `json:"language" validate:"required"`
	GenderIdentity           string   `json:"genderIdentity" validate:"required"`
	GenderIdentityOther      string   `json:"genderIdentityOther"`
	EthnicIdentity           string   `json:"ethnicIdentity" validate:"required"`
	EthnicIdentityOther      string   `json:"ethnicIdentityOther"`
	ReligiousBackground      string   `json:"religiousBackground" validate:"required"`
	ReligiousBackgroundOther string   `json:"religiousBackgroundOther"`
	CoachGender              string   `json:"coachGender" validate:"required"`
	CoachEthnicity           string   `json:"coachEthnicity" validate:"required"`
	CoachReligion            string   `json:"coachReligion" validate:"required"`
	PaymentMethod            string   `json:"paymentMethod" validate:"required"`
	Availability             []string `json:"availability" validate:"required,min=1"`
}

// ClientPreferences is the canonical form the scoring engine consumes. Tag
// sets are trimmed, lower-cased, and de-duplicated; single-valued fields are
// trimmed. A value of "any" in the coach preference fields means no
// preference.
type ClientPreferences struct {
	AreasOfConcern           []string
	TreatmentModalities      []string
	Location                 string
	Language                 string
	GenderIdentity           string
	GenderIdentityOther      string
	EthnicIdentity           string
	EthnicIdentityOther      string
	ReligiousBackground      string
	ReligiousBackgroundOther string
	CoachGender              string
	CoachEthnicity           string
	CoachReligion            string
	PaymentMethod            string
	Availability             []string
}

// ValidationError names the preference fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid preferences: " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NormalizePreferences canonicalizes a raw questionnaire payload. It rejects
// payloads with missing required fields before any retrieval or scoring can
// run. Unknown tag values are kept; they simply never match a coach.
// Normalizing an already-normalized payload is a no-op.
func NormalizePreferences(raw RawPreferences) (ClientPreferences, error) {
	canonical := RawPreferences{
		AreasOfConcern:           NormalizeTagSet(raw.AreasOfConcern),
		TreatmentModalities:      NormalizeTagSet(raw.TreatmentModalities),
		Location:                 strings.TrimSpace(raw.Location),
		Language:                 NormalizeTag(raw.Language),
		GenderIdentity:           strings.TrimSpace(raw.GenderIdentity),
		GenderIdentityOther:      strings.TrimSpace(raw.GenderIdentityOther),
		EthnicIdentity:           strings.TrimSpace(raw.EthnicIdentity),
		EthnicIdentityOther:      strings.TrimSpace(raw.EthnicIdentityOther),
		ReligiousBackground:      strings.TrimSpace(raw.ReligiousBackground),
		ReligiousBackgroundOther: strings.TrimSpace(raw.ReligiousBackgroundOther),
		CoachGender:              strings.TrimSpace(raw.CoachGender),
		CoachEthnicity:           strings.TrimSpace(raw.CoachEthnicity),
		CoachReligion:            strings.TrimSpace(raw.CoachReligion),
		PaymentMethod:            strings.TrimSpace(raw.PaymentMethod),
		Availability:             NormalizeTagSet(raw.Availability),
	}

	if err := validate.Struct(canonical); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return ClientPreferences{}, err
		}
		invalid := make([]string, 0, len(fieldErrs))
		seen := make(map[string]struct{}, len(fieldErrs))
		for _, fieldErr := range fieldErrs {
			name := fieldErr.Field()
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			invalid = append(invalid, name)
		}
		return ClientPreferences{}, &ValidationError{Fields: invalid}
	}

	return ClientPreferences(canonical), nil
}

// NormalizeTag trims and lower-cases a tag value. Tags are compared
// case-insensitively and must match exactly once normalized.
func NormalizeTag(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeTagSet canonicalizes each tag, drops blanks, and de-duplicates
// while preserving first-seen order.
func NormalizeTagSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		tag := NormalizeTag(value)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
