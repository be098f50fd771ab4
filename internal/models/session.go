package models

import "time"

const (
	SessionScheduled = "scheduled"
	SessionConfirmed = "confirmed"
	SessionCancelled = "cancelled"
	SessionCompleted = "completed"
)

// Session is a booked appointment between a client and a coach.
type Session struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	CoachID         int64     `json:"coach_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SessionDetail joins an appointment with the counterpart's display fields.
type SessionDetail struct {
	Session
	CoachName  string `json:"coach_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Email      string `json:"email,omitempty"`
}
