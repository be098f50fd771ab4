package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/customadesign/ACFL/internal/matching"
	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
)

type SavedCoachHandler struct {
	clientRepo     *repository.ClientRepository
	coachRepo      *repository.CoachRepository
	savedCoachRepo *repository.SavedCoachRepository
}

func NewSavedCoachHandler(
	clientRepo *repository.ClientRepository,
	coachRepo *repository.CoachRepository,
	savedCoachRepo *repository.SavedCoachRepository,
) *SavedCoachHandler {
	return &SavedCoachHandler{
		clientRepo:     clientRepo,
		coachRepo:      coachRepo,
		savedCoachRepo: savedCoachRepo,
	}
}

type saveCoachRequest struct {
	CoachID int64 `json:"coachId"`
}

// savedCoachEntry mirrors the match response shape, minus the score fields,
// plus the date the client saved the coach.
type savedCoachEntry struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Specialties       []string `json:"specialties"`
	Languages         []string `json:"languages"`
	Bio               string   `json:"bio"`
	SessionRate       string   `json:"sessionRate"`
	Experience        string   `json:"experience"`
	Rating            float64  `json:"rating"`
	VirtualAvailable  bool     `json:"virtualAvailable"`
	InPersonAvailable bool     `json:"inPersonAvailable"`
	Email             string   `json:"email"`
	SavedDate         string   `json:"savedDate"`
}

func (h *SavedCoachHandler) List(c *fiber.Ctx) error {
	client, err := h.resolveClient(c)
	if err != nil {
		return mapSavedCoachError(c, err)
	}

	coaches, saves, err := h.savedCoachRepo.ListForClient(c.Context(), client.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to load saved coaches"})
	}

	entries := make([]savedCoachEntry, 0, len(coaches))
	for i, coach := range coaches {
		formatted := matching.FormatCandidate(matching.ScoredCandidate{Coach: coach})
		entries = append(entries, savedCoachEntry{
			ID:                formatted.ID,
			Name:              formatted.Name,
			Specialties:       formatted.Specialties,
			Languages:         formatted.Languages,
			Bio:               formatted.Bio,
			SessionRate:       formatted.SessionRate,
			Experience:        formatted.Experience,
			Rating:            formatted.Rating,
			VirtualAvailable:  formatted.VirtualAvailable,
			InPersonAvailable: formatted.InPersonAvailable,
			Email:             formatted.Email,
			SavedDate:         saves[i].CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

func (h *SavedCoachHandler) Save(c *fiber.Ctx) error {
	client, err := h.resolveClient(c)
	if err != nil {
		return mapSavedCoachError(c, err)
	}

	var req saveCoachRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.CoachID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	if _, err := h.coachRepo.GetByID(c.Context(), req.CoachID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Coach not found"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup coach"})
	}

	saved, err := h.savedCoachRepo.Save(c.Context(), client.ID, req.CoachID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Coach already saved"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to save coach"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    saved,
	})
}

func (h *SavedCoachHandler) Remove(c *fiber.Ctx) error {
	client, err := h.resolveClient(c)
	if err != nil {
		return mapSavedCoachError(c, err)
	}

	coachID, err := parseIDParam(c, "coachId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid coach id"})
	}

	exists, err := h.savedCoachRepo.Exists(c.Context(), client.ID, coachID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to lookup saved coach"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Saved coach not found"})
	}

	if err := h.savedCoachRepo.Remove(c.Context(), client.ID, coachID); err != nil {
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to remove saved coach"})
	}

	return c.JSON(fiber.Map{"success": true})
}

var errUnauthorized = errors.New("unauthorized")

func (h *SavedCoachHandler) resolveClient(c *fiber.Ctx) (*models.Client, error) {
	userID, ok := authUserID(c)
	if !ok {
		return nil, errUnauthorized
	}
	return h.clientRepo.GetByUserID(c.Context(), userID)
}

func mapSavedCoachError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"error": "Failed to process request"})
	}
}
