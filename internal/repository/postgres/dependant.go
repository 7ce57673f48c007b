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

type dependantRepository struct {
	db *sqlx.DB
}

func NewDependantRepository(db *sqlx.DB) repository.DependantRepository {
	return &dependantRepository{db: db}
}

func (r *dependantRepository) Create(ctx context.Context, dependant *model.Dependant) error {
	query := `
		INSERT INTO dependants (id, caregiver_id, first_name, last_name, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	dependant.CreatedAt = time.Now()
	dependant.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		dependant.ID,
		dependant.CaregiverID,
		dependant.FirstName,
		dependant.LastName,
		dependant.Notes,
		dependant.CreatedAt,
		dependant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dependant: %w", err)
	}
	return nil
}

func (r *dependantRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dependant, error) {
	query := `SELECT * FROM dependants WHERE id = $1`
	var dependant model.Dependant
	err := r.db.GetContext(ctx, &dependant, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependant: %w", err)
	}
	return &dependant, nil
}

func (r *dependantRepository) Update(ctx context.Context, dependant *model.Dependant) error {
	query := `UPDATE dependants SET first_name = $1, last_name = $2, notes = $3, updated_at = $4 WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query,
		dependant.FirstName,
		dependant.LastName,
		dependant.Notes,
		time.Now(),
		dependant.ID,
	)
	return err
}

func (r *dependantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM dependants WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *dependantRepository) List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error) {
	query := `SELECT * FROM dependants WHERE caregiver_id = $1 ORDER BY first_name, last_name`
	var dependants []*model.Dependant
	err := r.db.SelectContext(ctx, &dependants, query, caregiverID)
	return dependants, err
}
