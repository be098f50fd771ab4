package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/customadesign/ACFL/internal/matching"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
	"github.com/customadesign/ACFL/internal/services"
)

type coachApplicationService interface {
	Profile(ctx context.Context, userID int64) (*models.Coach, error)
	UpdateProfile(ctx context.Context, userID int64, input repository.UpdateCoachInput) (*models.Coach, error)
	Dashboard(ctx context.Context, userID int64) (*services.CoachDashboard, error)
	Stats(ctx context.Context, userID int64) (*services.CoachProfileStats, error)
	Roster(ctx context.Context, userID int64) ([]services.RosterEntry, error)
}

type coachLookup interface {
	GetByID(ctx context.Context, coachID int64) (*models.Coach, error)
}

type CoachHandler struct {
	service   coachApplicationService
	coachRepo coachLookup
}

func NewCoachHandler(service *services.CoachService, coachRepo *repository.CoachRepository) *CoachHandler {
	return &CoachHandler{service: service, coachRepo: coachRepo}
}

type updateCoachProfileRequest struct {
	FirstName      *string   `json:"firstName"`
	LastName       *string   `json:"lastName"`
	Phone          *string   `json:"phone"`
	Bio            *string   `json:"bio"`
	Specialties    *[]string `json:"specialties"`
	Modalities     *[]string `json:"modalities"`
	Languages      *[]string `json:"languages"`
	Qualifications *[]string `json:"qualifications"`
	Experience     *int      `json:"experience"`
	HourlyRate     *float64  `json:"hourlyRate"`
	IsAvailable    *bool     `json:"isAvailable"`
}

func (h *CoachHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := authUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	coach, err := h.service.Profile(c.Context(), userID)
	if err != nil {
		return mapCoachError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coach,
	})
}

func (h *CoachHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := authUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateCoachProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	coach, err := h.service.UpdateProfile(c.Context(), userID, repository.UpdateCoachInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Bio:            req.Bio,
		Specialties:    req.Specialties,
		Modalities:     req.Modalities,
		Languages:      req.Languages,
		Qualifications: req.Qualifications,
		Experience:     req.Experience,
		HourlyRate:     req.HourlyRate,
		IsAvailable:    req.IsAvailable,
	})
	if err != nil {
		return mapCoachError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coach,
	})
}

func (h *CoachHandler) Dashboard(c *fiber.Ctx) error {
	userID, ok := authUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	dashboard, err := h.service.Dashboard(c.Context(), userID)
	if err != nil {
		return mapCoachError(c, err)
	}

	appointments := make([]fiber.Map, 0, len(dashboard.TodayAppointments))
	for _, appointment := range dashboard.TodayAppointments {
		appointments = append(appointments, fiber.Map{
			"id":              appointment.SessionID,
			"clientName":      appointment.ClientName,
			"scheduledAt":     appointment.ScheduledAt.UTC().Format(time.RFC3339),
			"durationMinutes": appointment.DurationMinutes,
			"status":          appointment.Status,
		})
	}

	recentClients := make([]fiber.Map, 0, len(dashboard.RecentClients))
	for _, client := range dashboard.RecentClients {
		recentClients = append(recentClients, fiber.Map{
			"id":          client.ClientID,
			"name":        client.Name,
			"lastSession": client.LastSession.UTC().Format(time.RFC3339),
		})
	}

	rating := 0.0
	if dashboard.Rating != nil {
		rating = *dashboard.Rating
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stats": fiber.Map{
				"todayAppointments": dashboard.Stats.TodayAppointments,
				"weekSessions":      dashboard.Stats.WeekSessions,
				"activeClients":     dashboard.Stats.ActiveClients,
				"rating":            rating,
			},
			"todayAppointments": appointments,
			"recentClients":     recentClients,
		},
	})
}

func (h *CoachHandler) Stats(c *fiber.Ctx) error {
	userID, ok := authUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	stats, err := h.service.Stats(c.Context(), userID)
	if err != nil {
		return mapCoachError(c, err)
	}

	averageRating := 0.0
	if stats.AverageRating != nil {
		averageRating = *stats.AverageRating
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"totalClients":   stats.TotalClients,
			"totalSessions":  stats.TotalSessions,
			"averageRating":  averageRating,
			"completionRate": stats.CompletionRate,
		},
	})
}

func (h *CoachHandler) Clients(c *fiber.Ctx) error {
	userID, ok := authUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	roster, err := h.service.Roster(c.Context(), userID)
	if err != nil {
		return mapCoachError(c, err)
	}

	entries := make([]fiber.Map, 0, len(roster))
	for _, entry := range roster {
		phone := ""
		if entry.Phone != nil {
			phone = *entry.Phone
		}
		var lastSession, nextSession *string
		if entry.LastSession != nil {
			formatted := entry.LastSession.UTC().Format(time.RFC3339)
			lastSession = &formatted
		}
		if entry.NextSession != nil {
			formatted := entry.NextSession.UTC().Format(time.RFC3339)
			nextSession = &formatted
		}
		entries = append(entries, fiber.Map{
			"id":            entry.ClientID,
			"name":          entry.Name,
			"email":         entry.Email,
			"phone":         phone,
			"totalSessions": entry.TotalSessions,
			"lastSession":   lastSession,
			"nextSession":   nextSession,
			"status":        entry.Status,
			"startDate":     entry.StartDate.UTC().Format(time.RFC3339),
			"concerns":      entry.Concerns,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

// PublicProfile exposes one coach to unauthenticated visitors in the match
// response shape, without a score.
func (h *CoachHandler) PublicProfile(c *fiber.Ctx) error {
	coachID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	coach, err := h.coachRepo.GetByID(c.Context(), coachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup coach"})
	}

	formatted := matching.FormatCandidate(matching.ScoredCandidate{Coach: *coach})
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":                formatted.ID,
			"name":              formatted.Name,
			"specialties":       formatted.Specialties,
			"languages":         formatted.Languages,
			"bio":               formatted.Bio,
			"sessionRate":       formatted.SessionRate,
			"experience":        formatted.Experience,
			"rating":            formatted.Rating,
			"virtualAvailable":  formatted.VirtualAvailable,
			"inPersonAvailable": formatted.InPersonAvailable,
			"email":             formatted.Email,
		},
	})
}

func mapCoachError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process coach request"})
	}
}
