package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/customadesign/ACFL/internal/models"
	"github.com/customadesign/ACFL/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func TestAppointmentBookAndListFlow(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationAppointmentService(pool)

	clientUserID := createTestAccount(t, ctx, pool, models.RoleClient)
	coachUserID := createTestAccount(t, ctx, pool, models.RoleCoach)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientUserID, coachUserID) })

	coach, err := repository.NewCoachRepository(pool).GetByUserID(ctx, coachUserID)
	if err != nil {
		t.Fatalf("GetByUserID coach: %v", err)
	}

	scheduledAt := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	session, err := service.Book(ctx, clientUserID, BookAppointmentInput{
		CoachID:         coach.ID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if session.Status != models.SessionScheduled {
		t.Fatalf("expected scheduled session, got %q", session.Status)
	}

	clientList, err := service.List(ctx, clientUserID, models.RoleClient, "upcoming")
	if err != nil {
		t.Fatalf("List client: %v", err)
	}
	if len(clientList) != 1 || clientList[0].ID != session.ID {
		t.Fatalf("expected client to see session %d, got %+v", session.ID, clientList)
	}

	coachList, err := service.List(ctx, coachUserID, models.RoleCoach, "pending")
	if err != nil {
		t.Fatalf("List coach: %v", err)
	}
	if len(coachList) != 1 || coachList[0].ID != session.ID {
		t.Fatalf("expected coach to see session %d, got %+v", session.ID, coachList)
	}
}

func TestAppointmentRejectsOverlappingBookings(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationAppointmentService(pool)

	firstClientID := createTestAccount(t, ctx, pool, models.RoleClient)
	secondClientID := createTestAccount(t, ctx, pool, models.RoleClient)
	coachUserID := createTestAccount(t, ctx, pool, models.RoleCoach)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, firstClientID, secondClientID, coachUserID) })

	coach, err := repository.NewCoachRepository(pool).GetByUserID(ctx, coachUserID)
	if err != nil {
		t.Fatalf("GetByUserID coach: %v", err)
	}

	scheduledAt := time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := service.Book(ctx, firstClientID, BookAppointmentInput{
		CoachID:         coach.ID,
		ScheduledAt:     scheduledAt,
		DurationMinutes: 60,
	}); err != nil {
		t.Fatalf("first Book: %v", err)
	}

	_, err = service.Book(ctx, secondClientID, BookAppointmentInput{
		CoachID:         coach.ID,
		ScheduledAt:     scheduledAt.Add(30 * time.Minute),
		DurationMinutes: 45,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAppointmentStatusTransitions(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	service := newIntegrationAppointmentService(pool)

	clientUserID := createTestAccount(t, ctx, pool, models.RoleClient)
	coachUserID := createTestAccount(t, ctx, pool, models.RoleCoach)
	otherCoachID := createTestAccount(t, ctx, pool, models.RoleCoach)
	t.Cleanup(func() { cleanupTestUsers(t, ctx, pool, clientUserID, coachUserID, otherCoachID) })

	coach, err := repository.NewCoachRepository(pool).GetByUserID(ctx, coachUserID)
	if err != nil {
		t.Fatalf("GetByUserID coach: %v", err)
	}

	session, err := service.Book(ctx, clientUserID, BookAppointmentInput{
		CoachID:         coach.ID,
		ScheduledAt:     time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if _, err := service.UpdateStatus(ctx, clientUserID, models.RoleClient, session.ID, models.SessionCompleted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for client completing, got %v", err)
	}
	if _, err := service.UpdateStatus(ctx, otherCoachID, models.RoleCoach, session.ID, models.SessionConfirmed); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another coach, got %v", err)
	}
	if _, err := service.UpdateStatus(ctx, coachUserID, models.RoleCoach, session.ID, models.SessionCompleted); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition for scheduled->completed, got %v", err)
	}

	confirmed, err := service.UpdateStatus(ctx, coachUserID, models.RoleCoach, session.ID, models.SessionConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus confirm: %v", err)
	}
	if confirmed.Status != models.SessionConfirmed {
		t.Fatalf("expected confirmed, got %q", confirmed.Status)
	}

	cancelled, err := service.UpdateStatus(ctx, clientUserID, models.RoleClient, session.ID, models.SessionCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus cancel: %v", err)
	}
	if cancelled.Status != models.SessionCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	if _, err := service.UpdateStatus(ctx, clientUserID, models.RoleClient, session.ID, models.SessionCancelled); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition cancelling twice, got %v", err)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationAppointmentService(pool *pgxpool.Pool) *AppointmentService {
	return NewAppointmentService(
		pool,
		repository.NewSessionRepository(pool),
		repository.NewClientRepository(pool),
		repository.NewCoachRepository(pool),
	)
}

func createTestAccount(t *testing.T, ctx context.Context, pool *pgxpool.Pool, role string) int64 {
	t.Helper()

	user := &models.User{
		Email:        fmt.Sprintf("appointment-test-%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Role:         role,
	}
	if err := repository.NewUserRepository(pool).CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser(%s): %v", role, err)
	}

	if role == models.RoleClient {
		if _, err := repository.NewClientRepository(pool).Create(ctx, user.ID, "Test", "Client"); err != nil {
			t.Fatalf("Create client profile: %v", err)
		}
		return user.ID
	}

	coachRepo := repository.NewCoachRepository(pool)
	if err := coachRepo.Create(ctx, user.ID, "Test", "Coach"); err != nil {
		t.Fatalf("Create coach profile: %v", err)
	}
	available := true
	rate := 80.0
	if _, err := coachRepo.UpdatePartial(ctx, user.ID, repository.UpdateCoachInput{
		IsAvailable: &available,
		HourlyRate:  &rate,
	}); err != nil {
		t.Fatalf("UpdatePartial coach profile: %v", err)
	}

	return user.ID
}

func cleanupTestUsers(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userIDs ...int64) {
	t.Helper()

	if len(userIDs) == 0 {
		return
	}

	queries := []string{
		`DELETE FROM messages WHERE conversation_id IN (
			SELECT id FROM conversations WHERE client_id = ANY($1) OR coach_id = ANY($1)
		)`,
		`DELETE FROM conversations WHERE client_id = ANY($1) OR coach_id = ANY($1)`,
		`DELETE FROM sessions WHERE client_id IN (SELECT id FROM clients WHERE user_id = ANY($1))
			OR coach_id IN (SELECT id FROM coaches WHERE user_id = ANY($1))`,
		`DELETE FROM saved_coaches WHERE client_id IN (SELECT id FROM clients WHERE user_id = ANY($1))
			OR coach_id IN (SELECT id FROM coaches WHERE user_id = ANY($1))`,
		`DELETE FROM clients WHERE user_id = ANY($1)`,
		`DELETE FROM coaches WHERE user_id = ANY($1)`,
		`DELETE FROM users WHERE id = ANY($1)`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query, userIDs); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}
