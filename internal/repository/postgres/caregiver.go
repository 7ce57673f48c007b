package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
)

type caregiverRepository struct {
	db *sqlx.DB
}

func NewCaregiverRepository(db *sqlx.DB) repository.CaregiverRepository {
	return &caregiverRepository{db: db}
}

func (r *caregiverRepository) Create(ctx context.Context, caregiver *model.Caregiver) error {
	query := `
		INSERT INTO caregivers (id, email, password_hash, first_name, last_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	caregiver.CreatedAt = time.Now()
	caregiver.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		caregiver.ID,
		caregiver.Email,
		caregiver.PasswordHash,
		caregiver.FirstName,
		caregiver.LastName,
		caregiver.Status,
		caregiver.CreatedAt,
		caregiver.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create caregiver: %w", err)
	}
	return nil
}

func (r *caregiverRepository) Get(ctx context.Context, id uuid.UUID) (*model.Caregiver, error) {
	query := `SELECT * FROM caregivers WHERE id = $1`
	var caregiver model.Caregiver
	err := r.db.GetContext(ctx, &caregiver, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get caregiver: %w", err)
	}
	return &caregiver, nil
}

func (r *caregiverRepository) GetByEmail(ctx context.Context, email string) (*model.Caregiver, error) {
	query := `SELECT * FROM caregivers WHERE email = $1`
	var caregiver model.Caregiver
	err := r.db.GetContext(ctx, &caregiver, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get caregiver by email: %w", err)
	}
	return &caregiver, nil
}

func (r *caregiverRepository) ListActive(ctx context.Context) ([]*model.Caregiver, error) {
	query := `SELECT * FROM caregivers WHERE status = $1 ORDER BY created_at`
	var caregivers []*model.Caregiver
	err := r.db.SelectContext(ctx, &caregivers, query, model.CaregiverStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list caregivers: %w", err)
	}
	return caregivers, nil
}

func (r *caregiverRepository) Update(ctx context.Context, caregiver *model.Caregiver) error {
	query := `
		UPDATE caregivers
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4,
			status = $5, login_attempts = $6, last_login_attempt = $7, last_login_at = $8, updated_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		caregiver.Email,
		caregiver.PasswordHash,
		caregiver.FirstName,
		caregiver.LastName,
		caregiver.Status,
		caregiver.LoginAttempts,
		caregiver.LastLoginAttempt,
		caregiver.LastLoginAt,
		time.Now(),
		caregiver.ID,
	)
	return err
}
