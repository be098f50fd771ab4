package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/customadesign/ACFL/internal/models"
)

type CreateSessionInput struct {
	ClientID        int64
	CoachID         int64
	ScheduledAt     time.Time
	DurationMinutes int
	Notes           *string
}

// SessionListFilter selects appointments for one side of the marketplace.
// Filter values mirror the appointment tabs: upcoming, past, pending.
type SessionListFilter struct {
	ActorID int64
	Role    string
	Filter  string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := `
		INSERT INTO sessions (client_id, coach_id, scheduled_at, duration_min, status, notes)
		VALUES ($1, $2, $3, $4, 'scheduled', $5)
		RETURNING id, client_id, coach_id, scheduled_at, duration_min, status, notes, created_at, updated_at
	`
	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.CoachID,
		input.ScheduledAt,
		input.DurationMinutes,
		input.Notes,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := `
		SELECT id, client_id, coach_id, scheduled_at, duration_min, status, notes, created_at, updated_at
		FROM sessions
		WHERE id = $1
	`
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

// List returns appointments for a client or coach with the counterpart's
// display name and email joined in, ordered by schedule time.
func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.SessionDetail, error) {
	actorColumn := "s.client_id"
	if filter.Role == models.RoleCoach {
		actorColumn = "s.coach_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	switch strings.TrimSpace(filter.Filter) {
	case "upcoming":
		whereParts = append(whereParts, "s.scheduled_at >= NOW()", "s.status IN ('scheduled', 'confirmed')")
	case "past":
		whereParts = append(whereParts, "(s.scheduled_at < NOW() OR s.status = 'completed')")
	case "pending":
		whereParts = append(whereParts, "s.status = 'scheduled'")
	}

	query := fmt.Sprintf(`
		SELECT
			s.id, s.client_id, s.coach_id, s.scheduled_at, s.duration_min,
			s.status, s.notes, s.created_at, s.updated_at,
			co.first_name || ' ' || co.last_name,
			cl.first_name || ' ' || cl.last_name,
			CASE WHEN %s = s.client_id THEN cou.email ELSE clu.email END
		FROM sessions s
		JOIN coaches co ON co.id = s.coach_id
		JOIN users cou ON cou.id = co.user_id
		JOIN clients cl ON cl.id = s.client_id
		JOIN users clu ON clu.id = cl.user_id
		WHERE %s
		ORDER BY s.scheduled_at ASC, s.id ASC
	`, actorColumn, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.SessionDetail, 0)
	for rows.Next() {
		var detail models.SessionDetail
		if err := rows.Scan(
			&detail.ID,
			&detail.ClientID,
			&detail.CoachID,
			&detail.ScheduledAt,
			&detail.DurationMinutes,
			&detail.Status,
			&detail.Notes,
			&detail.CreatedAt,
			&detail.UpdatedAt,
			&detail.CoachName,
			&detail.ClientName,
			&detail.Email,
		); err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus string,
	nextStatus string,
) (*models.Session, error) {
	query := `
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id, client_id, coach_id, scheduled_at, duration_min, status, notes, created_at, updated_at
	`
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

func (r *SessionRepository) HasConflict(
	ctx context.Context,
	coachID int64,
	requestedTime time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE coach_id = $1
			  AND status <> 'cancelled'
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, coachID, requestedTime, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

// CoachStats aggregates the numbers behind the coach dashboard and the
// profile stats card.
type CoachStats struct {
	TodayAppointments int
	WeekSessions      int
	ActiveClients     int
	TotalClients      int
	TotalSessions     int
	CompletedSessions int
	TotalScheduled    int
}

func (r *SessionRepository) StatsForCoach(ctx context.Context, coachID int64) (*CoachStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (
				WHERE scheduled_at::date = NOW()::date
				  AND status IN ('scheduled', 'confirmed')
			),
			COUNT(*) FILTER (
				WHERE scheduled_at >= date_trunc('week', NOW())
				  AND status IN ('scheduled', 'confirmed', 'completed')
			),
			COUNT(DISTINCT client_id) FILTER (
				WHERE status = 'completed'
				  AND created_at >= NOW() - INTERVAL '30 days'
			),
			COUNT(DISTINCT client_id),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*)
		FROM sessions
		WHERE coach_id = $1
	`
	var stats CoachStats
	err := r.db.QueryRow(ctx, query, coachID).Scan(
		&stats.TodayAppointments,
		&stats.WeekSessions,
		&stats.ActiveClients,
		&stats.TotalClients,
		&stats.CompletedSessions,
		&stats.TotalScheduled,
	)
	if err != nil {
		return nil, err
	}
	stats.TotalSessions = stats.CompletedSessions
	return &stats, nil
}

// ClientSessionRow pairs one appointment with its client's identity, used to
// build the coach's client roster.
type ClientSessionRow struct {
	Session     models.Session
	ClientName  string
	ClientPhone *string
	ClientEmail string
	ClientSince time.Time
	Preferences []byte
}

func (r *SessionRepository) ListWithClientsForCoach(ctx context.Context, coachID int64) ([]ClientSessionRow, error) {
	query := `
		SELECT
			s.id, s.client_id, s.coach_id, s.scheduled_at, s.duration_min,
			s.status, s.notes, s.created_at, s.updated_at,
			cl.first_name || ' ' || cl.last_name,
			cl.phone,
			u.email,
			cl.created_at,
			cl.preferences
		FROM sessions s
		JOIN clients cl ON cl.id = s.client_id
		JOIN users u ON u.id = cl.user_id
		WHERE s.coach_id = $1
		ORDER BY s.scheduled_at DESC, s.id DESC
	`
	rows, err := r.db.Query(ctx, query, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ClientSessionRow, 0)
	for rows.Next() {
		var row ClientSessionRow
		if err := rows.Scan(
			&row.Session.ID,
			&row.Session.ClientID,
			&row.Session.CoachID,
			&row.Session.ScheduledAt,
			&row.Session.DurationMinutes,
			&row.Session.Status,
			&row.Session.Notes,
			&row.Session.CreatedAt,
			&row.Session.UpdatedAt,
			&row.ClientName,
			&row.ClientPhone,
			&row.ClientEmail,
			&row.ClientSince,
			&row.Preferences,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ClientID,
		&session.CoachID,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.Status,
		&session.Notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
