package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/customadesign/ACFL/internal/matching"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/services"
)

type matchApplicationService interface {
	Match(ctx context.Context, raw matching.RawPreferences, opts services.MatchOptions) ([]matching.FormattedCoach, error)
}

type preferenceStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Client, error)
	SavePreferences(ctx context.Context, clientID int64, preferences []byte) error
}

type MatchHandler struct {
	service    matchApplicationService
	clientRepo preferenceStore
}

func NewMatchHandler(service *services.MatchService, clientRepo preferenceStore) *MatchHandler {
	return &MatchHandler{service: service, clientRepo: clientRepo}
}

type searchCoachesRequest struct {
	Preferences matching.RawPreferences `json:"preferences"`
}

// Match scores every available coach against the submitted preferences.
func (h *MatchHandler) Match(c *fiber.Ctx) error {
	var raw matching.RawPreferences
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	matches, err := h.service.Match(c.Context(), raw, services.MatchOptions{})
	if err != nil {
		return mapMatchError(c, err)
	}

	return c.JSON(fiber.Map{"matches": matches})
}

// SearchCoaches is the client-facing search. It narrows the candidate pool
// in the database before scoring.
func (h *MatchHandler) SearchCoaches(c *fiber.Ctx) error {
	var req searchCoachesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	matches, err := h.service.Match(c.Context(), req.Preferences, services.MatchOptions{PreFilter: true})
	if err != nil {
		return mapMatchError(c, err)
	}

	// Remember the questionnaire so the coach side can surface the client's
	// concerns later. A persistence failure must not lose the search result.
	if userID, ok := authUserID(c); ok {
		if client, err := h.clientRepo.GetByUserID(c.Context(), userID); err == nil {
			if payload, err := json.Marshal(req.Preferences); err == nil {
				_ = h.clientRepo.SavePreferences(c.Context(), client.ID, payload)
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    matches,
	})
}

func mapMatchError(c *fiber.Ctx, err error) error {
	var validationErr *matching.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Invalid preferences",
			"fields": validationErr.Fields,
		})
	}
	if errors.Is(err, services.ErrRetrieval) {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load coaches"})
	}
	return c.Status(fiber.StatusInternalServerError).
		JSON(fiber.Map{"error": "Failed to process match request"})
}
