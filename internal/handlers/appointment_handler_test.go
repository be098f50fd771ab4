package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/services"
)

type stubAppointmentService struct {
	bookResult    *models.Session
	bookErr       error
	listResult    []models.SessionDetail
	listErr       error
	updateResult  *models.Session
	updateErr     error
	lastUserID    int64
	lastRole      string
	lastFilter    string
	lastSessionID int64
	lastStatus    string
	lastBookInput services.BookAppointmentInput
}

func (s *stubAppointmentService) Book(_ context.Context, clientUserID int64, input services.BookAppointmentInput) (*models.Session, error) {
	s.lastUserID = clientUserID
	s.lastBookInput = input
	return s.bookResult, s.bookErr
}

func (s *stubAppointmentService) List(_ context.Context, userID int64, role string, filter string) ([]models.SessionDetail, error) {
	s.lastUserID = userID
	s.lastRole = role
	s.lastFilter = filter
	return s.listResult, s.listErr
}

func (s *stubAppointmentService) UpdateStatus(_ context.Context, userID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error) {
	s.lastUserID = userID
	s.lastRole = role
	s.lastSessionID = sessionID
	s.lastStatus = requestedStatus
	return s.updateResult, s.updateErr
}

func newAppointmentTestApp(handler *AppointmentHandler, role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		c.Locals("role", role)
		return c.Next()
	})
	app.Post("/api/v1/clients/appointments", handler.Book)
	app.Get("/api/v1/clients/appointments", handler.List)
	app.Put("/api/v1/coaches/appointments/:id", handler.UpdateStatus)
	return app
}

func TestBookAppointmentReturnsCreated(t *testing.T) {
	service := &stubAppointmentService{
		bookResult: &models.Session{ID: 91, ClientID: 9, CoachID: 7, Status: models.SessionScheduled},
	}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleClient)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/appointments", strings.NewReader(`{
		"coachId": 7,
		"scheduledAt": "2030-03-15T09:00:00Z",
		"durationMinutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user id 42, got %d", service.lastUserID)
	}
	if service.lastBookInput.CoachID != 7 || service.lastBookInput.DurationMinutes != 60 {
		t.Fatalf("unexpected book input %+v", service.lastBookInput)
	}
}

func TestBookAppointmentRejectsBadTimestamp(t *testing.T) {
	service := &stubAppointmentService{}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleClient)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/appointments", strings.NewReader(`{
		"coachId": 7,
		"scheduledAt": "tomorrow",
		"durationMinutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBookAppointmentMapsConflict(t *testing.T) {
	service := &stubAppointmentService{bookErr: services.ErrConflict}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleClient)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/appointments", strings.NewReader(`{
		"coachId": 7,
		"scheduledAt": "2030-03-15T09:00:00Z",
		"durationMinutes": 60
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestListAppointmentsForwardsFilter(t *testing.T) {
	service := &stubAppointmentService{listResult: []models.SessionDetail{}}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleClient)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/appointments?filter=upcoming", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter != "upcoming" || service.lastRole != models.RoleClient {
		t.Fatalf("expected upcoming filter for client, got %q role %q", service.lastFilter, service.lastRole)
	}
}

func TestListAppointmentsRejectsUnknownFilter(t *testing.T) {
	service := &stubAppointmentService{}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleClient)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/appointments?filter=someday", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateAppointmentStatusMapsTransitionError(t *testing.T) {
	service := &stubAppointmentService{updateErr: services.ErrInvalidStateTransition}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleCoach)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/coaches/appointments/91", strings.NewReader(`{
		"status": "completed"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if service.lastSessionID != 91 || service.lastStatus != "completed" {
		t.Fatalf("expected session 91 -> completed, got %d %q", service.lastSessionID, service.lastStatus)
	}
}

func TestUpdateAppointmentStatusSucceeds(t *testing.T) {
	service := &stubAppointmentService{
		updateResult: &models.Session{ID: 91, Status: models.SessionConfirmed},
	}
	handler := &AppointmentHandler{service: service}
	app := newAppointmentTestApp(handler, models.RoleCoach)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/coaches/appointments/91", strings.NewReader(`{
		"status": "confirmed"
	}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastRole != models.RoleCoach {
		t.Fatalf("expected coach role forwarded, got %q", service.lastRole)
	}
}
