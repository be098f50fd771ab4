package models

import "time"

type Client struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Phone       *string    `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Preferences []byte     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SavedCoach struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	CoachID   int64     `json:"coach_id"`
	CreatedAt time.Time `json:"created_at"`
}
