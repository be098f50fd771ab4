package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrCoachNotFound          = errors.New("coach not found")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrRetrieval              = errors.New("coach pool unavailable")
)

type clientReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Client, error)
}

type coachReader interface {
	GetByID(ctx context.Context, coachID int64) (*models.Coach, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Coach, error)
}

type AppointmentService struct {
	db          *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	clientRepo  clientReader
	coachRepo   coachReader
}

func NewAppointmentService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	clientRepo clientReader,
	coachRepo coachReader,
) *AppointmentService {
	return &AppointmentService{
		db:          db,
		sessionRepo: sessionRepo,
		clientRepo:  clientRepo,
		coachRepo:   coachRepo,
	}
}

type BookAppointmentInput struct {
	CoachID         int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

// Book creates an appointment for the authenticated client. The coach's
// calendar is guarded with an advisory lock so two clients cannot book the
// same slot concurrently.
func (s *AppointmentService) Book(
	ctx context.Context,
	clientUserID int64,
	input BookAppointmentInput,
) (*models.Session, error) {
	if input.CoachID <= 0 || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}

	client, err := s.clientRepo.GetByUserID(ctx, clientUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	coach, err := s.coachRepo.GetByID(ctx, input.CoachID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	if !coach.IsAvailable {
		return nil, ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", coach.ID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflict(ctx, coach.ID, input.ScheduledAt.UTC(), input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		ClientID:        client.ID,
		CoachID:         coach.ID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

// List returns the actor's appointments, resolved through their profile.
func (s *AppointmentService) List(
	ctx context.Context,
	userID int64,
	role string,
	filter string,
) ([]models.SessionDetail, error) {
	actorID, err := s.resolveProfileID(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID: actorID,
		Role:    role,
		Filter:  filter,
	})
}

// UpdateStatus lets the owning coach move an appointment through its
// lifecycle, and the owning client cancel one.
func (s *AppointmentService) UpdateStatus(
	ctx context.Context,
	userID int64,
	role string,
	sessionID int64,
	requestedStatus string,
) (*models.Session, error) {
	actorID, err := s.resolveProfileID(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	nextStatus := strings.ToLower(strings.TrimSpace(requestedStatus))
	switch nextStatus {
	case models.SessionScheduled, models.SessionConfirmed, models.SessionCancelled, models.SessionCompleted:
	default:
		return nil, ErrInvalidStatus
	}
	if err := validateStatusTransition(role, session.Status, nextStatus); err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(ctx, sessionID, session.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *AppointmentService) resolveProfileID(ctx context.Context, userID int64, role string) (int64, error) {
	switch role {
	case models.RoleClient:
		client, err := s.clientRepo.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrProfileNotFound
			}
			return 0, err
		}
		return client.ID, nil
	case models.RoleCoach:
		coach, err := s.coachRepo.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrProfileNotFound
			}
			return 0, err
		}
		return coach.ID, nil
	default:
		return 0, ErrForbidden
	}
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	if role == models.RoleClient {
		return session.ClientID == actorID
	}
	if role == models.RoleCoach {
		return session.CoachID == actorID
	}
	return false
}

func validateStatusTransition(role, current, next string) error {
	if current == next {
		return ErrInvalidStateTransition
	}

	if role == models.RoleClient {
		// Clients may only cancel an appointment that has not finished.
		if next != models.SessionCancelled {
			return ErrForbidden
		}
		if current == models.SessionCompleted || current == models.SessionCancelled {
			return ErrInvalidStateTransition
		}
		return nil
	}

	switch current {
	case models.SessionScheduled:
		if next == models.SessionConfirmed || next == models.SessionCancelled {
			return nil
		}
	case models.SessionConfirmed:
		if next == models.SessionCompleted || next == models.SessionCancelled {
			return nil
		}
	}
	return ErrInvalidStateTransition
}
