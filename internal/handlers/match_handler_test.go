package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/customadesign/ACFL/internal/matching"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/services"
)

type stubMatchService struct {
	result   []matching.FormattedCoach
	err      error
	lastRaw  matching.RawPreferences
	lastOpts services.MatchOptions
	calls    int
}

func (s *stubMatchService) Match(_ context.Context, raw matching.RawPreferences, opts services.MatchOptions) ([]matching.FormattedCoach, error) {
	s.calls++
	s.lastRaw = raw
	s.lastOpts = opts
	return s.result, s.err
}

type stubPreferenceStore struct {
	client    *models.Client
	clientErr error
	saved     []byte
	saveCalls int
}

func (s *stubPreferenceStore) GetByUserID(_ context.Context, _ int64) (*models.Client, error) {
	return s.client, s.clientErr
}

func (s *stubPreferenceStore) SavePreferences(_ context.Context, _ int64, preferences []byte) error {
	s.saveCalls++
	s.saved = preferences
	return nil
}

const rawPreferencesJSON = `{
	"areasOfConcern": ["Anxiety", "Depression"],
	"location": "CA",
	"language": "English",
	"genderIdentity": "woman",
	"ethnicIdentity": "prefer not to say",
	"religiousBackground": "none",
	"coachGender": "any",
	"coachEthnicity": "any",
	"coachReligion": "any",
	"paymentMethod": "self-pay",
	"availability": ["weekday mornings"]
}`

func newMatchTestApp(handler *MatchHandler, authed bool) *fiber.App {
	app := fiber.New()
	if authed {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_id", "42")
			c.Locals("role", models.RoleClient)
			return c.Next()
		})
	}
	app.Post("/api/v1/match", handler.Match)
	app.Post("/api/v1/clients/search-coaches", handler.SearchCoaches)
	return app
}

func TestMatchReturnsRankedMatches(t *testing.T) {
	service := &stubMatchService{result: []matching.FormattedCoach{
		{ID: "2", Name: "Best Coach", MatchScore: 100, MatchQuality: "excellent"},
		{ID: "1", Name: "Good Coach", MatchScore: 85, MatchQuality: "good"},
	}}
	handler := &MatchHandler{service: service, clientRepo: &stubPreferenceStore{}}
	app := newMatchTestApp(handler, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(rawPreferencesJSON))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastOpts.PreFilter {
		t.Fatal("expected no pre-filter on the general match endpoint")
	}
	if service.lastRaw.AreasOfConcern[0] != "Anxiety" {
		t.Fatalf("expected raw preferences forwarded, got %v", service.lastRaw.AreasOfConcern)
	}

	var body struct {
		Matches []matching.FormattedCoach `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Matches) != 2 || body.Matches[0].MatchScore != 100 {
		t.Fatalf("expected two ranked matches, got %+v", body.Matches)
	}
}

func TestMatchEmptyPoolReturnsEmptyArray(t *testing.T) {
	service := &stubMatchService{result: []matching.FormattedCoach{}}
	handler := &MatchHandler{service: service, clientRepo: &stubPreferenceStore{}}
	app := newMatchTestApp(handler, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(rawPreferencesJSON))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(raw), `"matches":[]`) {
		t.Fatalf("expected empty matches array, got %s", raw)
	}
}

func TestMatchValidationErrorReturnsFieldList(t *testing.T) {
	service := &stubMatchService{err: &matching.ValidationError{Fields: []string{"areasOfConcern", "language"}}}
	handler := &MatchHandler{service: service, clientRepo: &stubPreferenceStore{}}
	app := newMatchTestApp(handler, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var body struct {
		Fields []string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields[0] != "areasOfConcern" {
		t.Fatalf("expected missing field list, got %v", body.Fields)
	}
}

func TestMatchRetrievalFailureReturns500(t *testing.T) {
	service := &stubMatchService{err: services.ErrRetrieval}
	handler := &MatchHandler{service: service, clientRepo: &stubPreferenceStore{}}
	app := newMatchTestApp(handler, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/match", strings.NewReader(rawPreferencesJSON))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestSearchCoachesUsesPreFilterAndEnvelope(t *testing.T) {
	service := &stubMatchService{result: []matching.FormattedCoach{
		{ID: "3", Name: "Filtered Coach", MatchScore: 85},
	}}
	store := &stubPreferenceStore{client: &models.Client{ID: 9, UserID: 42}}
	handler := &MatchHandler{service: service, clientRepo: store}
	app := newMatchTestApp(handler, true)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/clients/search-coaches",
		strings.NewReader(`{"preferences": `+rawPreferencesJSON+`}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !service.lastOpts.PreFilter {
		t.Fatal("expected pre-filter on the search endpoint")
	}
	if store.saveCalls != 1 {
		t.Fatalf("expected preferences persisted once, got %d", store.saveCalls)
	}

	var body struct {
		Success bool                      `json:"success"`
		Data    []matching.FormattedCoach `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || len(body.Data) != 1 {
		t.Fatalf("expected success envelope with one match, got %+v", body)
	}
}

func TestSearchCoachesPersistFailureDoesNotLoseResult(t *testing.T) {
	service := &stubMatchService{result: []matching.FormattedCoach{}}
	store := &stubPreferenceStore{clientErr: errors.New("no profile")}
	handler := &MatchHandler{service: service, clientRepo: store}
	app := newMatchTestApp(handler, true)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/clients/search-coaches",
		strings.NewReader(`{"preferences": `+rawPreferencesJSON+`}`),
	)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.saveCalls != 0 {
		t.Fatalf("expected no save without a profile, got %d", store.saveCalls)
	}
}
