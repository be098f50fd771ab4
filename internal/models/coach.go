package models

import "time"

// Coach is the public matching profile sourced fresh per request. The
// matching engine treats it as read-only.
type Coach struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          *string   `json:"phone"`
	Bio            *string   `json:"bio"`
	Specialties    *[]string `json:"specialties"`
	Modalities     *[]string `json:"modalities"`
	Languages      *[]string `json:"languages"`
	Qualifications *[]string `json:"qualifications"`
	Experience     *int      `json:"experience"`
	HourlyRate     *float64  `json:"hourly_rate"`
	Rating         *float64  `json:"rating"`
	IsAvailable    bool      `json:"is_available"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
