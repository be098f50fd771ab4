package repository

import (
	"context"
	"fmt"

	"github.com/customadesign/ACFL/internal/models"
)

type SavedCoachRepository struct {
	db DBTX
}

func NewSavedCoachRepository(db DBTX) *SavedCoachRepository {
	return &SavedCoachRepository{db: db}
}

func (r *SavedCoachRepository) Save(ctx context.Context, clientID, coachID int64) (*models.SavedCoach, error) {
	query := `
		INSERT INTO saved_coaches (client_id, coach_id)
		VALUES ($1, $2)
		RETURNING id, client_id, coach_id, created_at
	`
	var saved models.SavedCoach
	err := r.db.QueryRow(ctx, query, clientID, coachID).Scan(
		&saved.ID,
		&saved.ClientID,
		&saved.CoachID,
		&saved.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *SavedCoachRepository) Exists(ctx context.Context, clientID, coachID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM saved_coaches WHERE client_id = $1 AND coach_id = $2
		)
	`, clientID, coachID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SavedCoachRepository) Remove(ctx context.Context, clientID, coachID int64) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM saved_coaches
		WHERE client_id = $1 AND coach_id = $2
	`, clientID, coachID)
	return err
}

// ListForClient returns the saved coaches with their full matching profiles
// plus the moment each was saved.
func (r *SavedCoachRepository) ListForClient(ctx context.Context, clientID int64) ([]models.Coach, []models.SavedCoach, error) {
	query := fmt.Sprintf(`
		SELECT sc.id, sc.client_id, sc.coach_id, sc.created_at, %s
		FROM saved_coaches sc
		JOIN coaches c ON c.id = sc.coach_id
		JOIN users u ON u.id = c.user_id
		WHERE sc.client_id = $1
		ORDER BY sc.created_at DESC, sc.id DESC
	`, coachColumns)

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	records := make([]models.SavedCoach, 0)
	for rows.Next() {
		var saved models.SavedCoach
		var coach models.Coach
		if err := rows.Scan(
			&saved.ID,
			&saved.ClientID,
			&saved.CoachID,
			&saved.CreatedAt,
			&coach.ID,
			&coach.UserID,
			&coach.FirstName,
			&coach.LastName,
			&coach.Phone,
			&coach.Bio,
			&coach.Specialties,
			&coach.Modalities,
			&coach.Languages,
			&coach.Qualifications,
			&coach.Experience,
			&coach.HourlyRate,
			&coach.Rating,
			&coach.IsAvailable,
			&coach.Email,
			&coach.CreatedAt,
			&coach.UpdatedAt,
		); err != nil {
			return nil, nil, err
		}
		coaches = append(coaches, coach)
		records = append(records, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return coaches, records, nil
}
