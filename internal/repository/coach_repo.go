package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/customadesign/ACFL/internal/models"
)

// CoachPoolFilter narrows the candidate pool at retrieval time. Overlap
// filters pass any coach whose tag array intersects the requested set; they
// never change computed match scores.
type CoachPoolFilter struct {
	Specialties []string
	Languages   []string
}

type CoachRepository struct {
	db DBTX
}

func NewCoachRepository(db DBTX) *CoachRepository {
	return &CoachRepository{db: db}
}

const coachColumns = `
	c.id, c.user_id, c.first_name, c.last_name, c.phone, c.bio,
	c.specialties, c.modalities, c.languages, c.qualifications,
	c.experience, c.hourly_rate, c.rating, c.is_available,
	u.email, c.created_at, c.updated_at
`

// ListAvailable returns every coach currently flagged available, optionally
// narrowed by tag-overlap pre-filters. Rows come back ordered by id so a
// given pool always enters scoring in the same sequence.
func (r *CoachRepository) ListAvailable(ctx context.Context, filter CoachPoolFilter) ([]models.Coach, error) {
	args := []any{}
	whereParts := []string{"c.is_available = TRUE"}

	if len(filter.Specialties) > 0 {
		args = append(args, filter.Specialties)
		whereParts = append(whereParts, fmt.Sprintf("c.specialties && $%d", len(args)))
	}
	if len(filter.Languages) > 0 {
		args = append(args, filter.Languages)
		whereParts = append(whereParts, fmt.Sprintf("c.languages && $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE %s
		ORDER BY c.id ASC
	`, coachColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]models.Coach, 0)
	for rows.Next() {
		coach, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, *coach)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return coaches, nil
}

func (r *CoachRepository) GetByID(ctx context.Context, coachID int64) (*models.Coach, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`, coachColumns)
	return scanCoach(r.db.QueryRow(ctx, query, coachID))
}

func (r *CoachRepository) GetByUserID(ctx context.Context, userID int64) (*models.Coach, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM coaches c
		JOIN users u ON u.id = c.user_id
		WHERE c.user_id = $1
	`, coachColumns)
	return scanCoach(r.db.QueryRow(ctx, query, userID))
}

func (r *CoachRepository) Create(ctx context.Context, userID int64, firstName, lastName string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO coaches (user_id, first_name, last_name)
		VALUES ($1, $2, $3)
	`, userID, firstName, lastName)
	return err
}

type UpdateCoachInput struct {
	FirstName      *string
	LastName       *string
	Phone          *string
	Bio            *string
	Specialties    *[]string
	Modalities     *[]string
	Languages      *[]string
	Qualifications *[]string
	Experience     *int
	HourlyRate     *float64
	IsAvailable    *bool
}

func (r *CoachRepository) UpdatePartial(ctx context.Context, userID int64, input UpdateCoachInput) (*models.Coach, error) {
	query := `
		UPDATE coaches
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			phone = COALESCE($3, phone),
			bio = COALESCE($4, bio),
			specialties = COALESCE($5, specialties),
			modalities = COALESCE($6, modalities),
			languages = COALESCE($7, languages),
			qualifications = COALESCE($8, qualifications),
			experience = COALESCE($9, experience),
			hourly_rate = COALESCE($10, hourly_rate),
			is_available = COALESCE($11, is_available),
			updated_at = NOW()
		WHERE user_id = $12
		RETURNING id
	`
	var coachID int64
	err := r.db.QueryRow(ctx, query,
		input.FirstName,
		input.LastName,
		input.Phone,
		input.Bio,
		input.Specialties,
		input.Modalities,
		input.Languages,
		input.Qualifications,
		input.Experience,
		input.HourlyRate,
		input.IsAvailable,
		userID,
	).Scan(&coachID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, coachID)
}

func scanCoach(row interface{ Scan(dest ...any) error }) (*models.Coach, error) {
	var coach models.Coach
	err := row.Scan(
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
	)
	if err != nil {
		return nil, err
	}
	return &coach, nil
}
