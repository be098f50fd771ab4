package repository

import (
	"context"

	"github.com/customadesign/ACFL/internal/models"
)

type ClientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, userID int64, firstName, lastName string) (*models.Client, error) {
	query := `
		INSERT INTO clients (user_id, first_name, last_name)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, first_name, last_name, phone, date_of_birth, preferences, created_at, updated_at
	`
	return r.scanClient(r.db.QueryRow(ctx, query, userID, firstName, lastName))
}

func (r *ClientRepository) GetByUserID(ctx context.Context, userID int64) (*models.Client, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, date_of_birth, preferences, created_at, updated_at
		FROM clients
		WHERE user_id = $1
	`
	return r.scanClient(r.db.QueryRow(ctx, query, userID))
}

func (r *ClientRepository) GetByID(ctx context.Context, clientID int64) (*models.Client, error) {
	query := `
		SELECT id, user_id, first_name, last_name, phone, date_of_birth, preferences, created_at, updated_at
		FROM clients
		WHERE id = $1
	`
	return r.scanClient(r.db.QueryRow(ctx, query, clientID))
}

// SavePreferences stores the client's latest questionnaire payload for reuse
// across searches.
func (r *ClientRepository) SavePreferences(ctx context.Context, clientID int64, preferences []byte) error {
	_, err := r.db.Exec(ctx, `
		UPDATE clients
		SET preferences = $2, updated_at = NOW()
		WHERE id = $1
	`, clientID, preferences)
	return err
}

func (r *ClientRepository) scanClient(row interface{ Scan(dest ...any) error }) (*models.Client, error) {
	var client models.Client
	err := row.Scan(
		&client.ID,
		&client.UserID,
		&client.FirstName,
		&client.LastName,
		&client.Phone,
		&client.DateOfBirth,
		&client.Preferences,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
