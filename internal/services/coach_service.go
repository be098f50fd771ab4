package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
)

// activeClientWindow is how far back a completed session may be for the
// client to still count as active on the roster.
const activeClientWindow = 30 * 24 * time.Hour

type coachSessionSource interface {
	StatsForCoach(ctx context.Context, coachID int64) (*repository.CoachStats, error)
	ListWithClientsForCoach(ctx context.Context, coachID int64) ([]repository.ClientSessionRow, error)
}

type coachProfileSource interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Coach, error)
	UpdatePartial(ctx context.Context, userID int64, input repository.UpdateCoachInput) (*models.Coach, error)
}

type CoachService struct {
	coachRepo   coachProfileSource
	sessionRepo coachSessionSource
}

func NewCoachService(coachRepo coachProfileSource, sessionRepo coachSessionSource) *CoachService {
	return &CoachService{coachRepo: coachRepo, sessionRepo: sessionRepo}
}

func (s *CoachService) Profile(ctx context.Context, userID int64) (*models.Coach, error) {
	coach, err := s.coachRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return coach, nil
}

func (s *CoachService) UpdateProfile(
	ctx context.Context,
	userID int64,
	input repository.UpdateCoachInput,
) (*models.Coach, error) {
	if input.HourlyRate != nil && *input.HourlyRate < 0 {
		return nil, ErrInvalidInput
	}
	if input.Experience != nil && *input.Experience < 0 {
		return nil, ErrInvalidInput
	}

	coach, err := s.coachRepo.UpdatePartial(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return coach, nil
}

// DashboardAppointment is one of today's sessions on the coach dashboard.
type DashboardAppointment struct {
	SessionID       int64
	ClientName      string
	ScheduledAt     time.Time
	DurationMinutes int
	Status          string
}

// RecentClient is a client the coach recently completed a session with.
type RecentClient struct {
	ClientID    int64
	Name        string
	LastSession time.Time
}

type CoachDashboard struct {
	Stats             repository.CoachStats
	Rating            *float64
	TodayAppointments []DashboardAppointment
	RecentClients     []RecentClient
}

func (s *CoachService) Dashboard(ctx context.Context, userID int64) (*CoachDashboard, error) {
	coach, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.sessionRepo.StatsForCoach(ctx, coach.ID)
	if err != nil {
		return nil, err
	}

	rows, err := s.sessionRepo.ListWithClientsForCoach(ctx, coach.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	today := now.Format("2006-01-02")

	todayAppointments := make([]DashboardAppointment, 0)
	recent := make([]RecentClient, 0)
	seenClients := make(map[int64]bool)

	for _, row := range rows {
		session := row.Session
		if session.ScheduledAt.Format("2006-01-02") == today &&
			(session.Status == models.SessionScheduled || session.Status == models.SessionConfirmed) {
			todayAppointments = append(todayAppointments, DashboardAppointment{
				SessionID:       session.ID,
				ClientName:      row.ClientName,
				ScheduledAt:     session.ScheduledAt,
				DurationMinutes: session.DurationMinutes,
				Status:          session.Status,
			})
		}

		// Rows arrive newest first, so the first completed session per
		// client is that client's latest.
		if session.Status == models.SessionCompleted && !seenClients[session.ClientID] && len(recent) < 5 {
			seenClients[session.ClientID] = true
			recent = append(recent, RecentClient{
				ClientID:    session.ClientID,
				Name:        row.ClientName,
				LastSession: session.ScheduledAt,
			})
		}
	}

	// Today's list reads in chronological order.
	for i, j := 0, len(todayAppointments)-1; i < j; i, j = i+1, j-1 {
		todayAppointments[i], todayAppointments[j] = todayAppointments[j], todayAppointments[i]
	}

	return &CoachDashboard{
		Stats:             *stats,
		Rating:            coach.Rating,
		TodayAppointments: todayAppointments,
		RecentClients:     recent,
	}, nil
}

type CoachProfileStats struct {
	TotalClients   int
	TotalSessions  int
	AverageRating  *float64
	CompletionRate float64
}

func (s *CoachService) Stats(ctx context.Context, userID int64) (*CoachProfileStats, error) {
	coach, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.sessionRepo.StatsForCoach(ctx, coach.ID)
	if err != nil {
		return nil, err
	}

	completionRate := 0.0
	if stats.TotalScheduled > 0 {
		completionRate = float64(stats.CompletedSessions) / float64(stats.TotalScheduled) * 100
	}

	return &CoachProfileStats{
		TotalClients:   stats.TotalClients,
		TotalSessions:  stats.TotalSessions,
		AverageRating:  coach.Rating,
		CompletionRate: completionRate,
	}, nil
}

// RosterEntry summarizes one client's history with the coach.
type RosterEntry struct {
	ClientID      int64
	Name          string
	Email         string
	Phone         *string
	TotalSessions int
	LastSession   *time.Time
	NextSession   *time.Time
	Status        string
	StartDate     time.Time
	Concerns      []string
}

// Roster aggregates the coach's sessions into one entry per client.
func (s *CoachService) Roster(ctx context.Context, userID int64) ([]RosterEntry, error) {
	coach, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.sessionRepo.ListWithClientsForCoach(ctx, coach.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := make([]int64, 0)
	entries := make(map[int64]*RosterEntry)

	for _, row := range rows {
		session := row.Session
		entry, ok := entries[session.ClientID]
		if !ok {
			entry = &RosterEntry{
				ClientID:  session.ClientID,
				Name:      row.ClientName,
				Email:     row.ClientEmail,
				Phone:     row.ClientPhone,
				StartDate: row.ClientSince,
				Concerns:  concernsFromPreferences(row.Preferences),
			}
			entries[session.ClientID] = entry
			order = append(order, session.ClientID)
		}

		switch session.Status {
		case models.SessionCompleted:
			entry.TotalSessions++
			if entry.LastSession == nil || session.ScheduledAt.After(*entry.LastSession) {
				at := session.ScheduledAt
				entry.LastSession = &at
			}
		case models.SessionScheduled, models.SessionConfirmed:
			if session.ScheduledAt.After(now) {
				if entry.NextSession == nil || session.ScheduledAt.Before(*entry.NextSession) {
					at := session.ScheduledAt
					entry.NextSession = &at
				}
			}
		}
	}

	out := make([]RosterEntry, 0, len(order))
	for _, clientID := range order {
		entry := entries[clientID]
		entry.Status = "inactive"
		if entry.NextSession != nil ||
			(entry.LastSession != nil && now.Sub(*entry.LastSession) <= activeClientWindow) {
			entry.Status = "active"
		}
		out = append(out, *entry)
	}
	return out, nil
}

func concernsFromPreferences(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var prefs struct {
		AreasOfConcern []string `json:"areasOfConcern"`
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return []string{}
	}
	if prefs.AreasOfConcern == nil {
		return []string{}
	}
	return prefs.AreasOfConcern
}
