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

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{db: db}
}

func (r *medicationRepository) Create(ctx context.Context, medication *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, dependant_id, name, start_date, end_date, start_time, end_time,
			doses_per_day, pills_per_dose, continuous, frequency, mode, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	medication.CreatedAt = time.Now()
	medication.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		medication.ID,
		medication.DependantID,
		medication.Name,
		medication.StartDate,
		medication.EndDate,
		medication.StartTime,
		medication.EndTime,
		medication.DosesPerDay,
		medication.PillsPerDose,
		medication.Continuous,
		medication.Frequency,
		medication.Mode,
		medication.CreatedAt,
		medication.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := `SELECT * FROM medications WHERE id = $1`
	var medication model.Medication
	err := r.db.GetContext(ctx, &medication, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return &medication, nil
}

func (r *medicationRepository) Update(ctx context.Context, medication *model.Medication) error {
	query := `
		UPDATE medications
		SET name = $1, start_date = $2, end_date = $3, start_time = $4, end_time = $5,
			doses_per_day = $6, pills_per_dose = $7, continuous = $8, frequency = $9, mode = $10, updated_at = $11
		WHERE id = $12
	`
	_, err := r.db.ExecContext(ctx, query,
		medication.Name,
		medication.StartDate,
		medication.EndDate,
		medication.StartTime,
		medication.EndTime,
		medication.DosesPerDay,
		medication.PillsPerDose,
		medication.Continuous,
		medication.Frequency,
		medication.Mode,
		time.Now(),
		medication.ID,
	)
	return err
}

// Delete removes a medication together with its schedule record and every
// completion record anchored on it, in one transaction.
func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE medication_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE medication_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	return tx.Commit()
}

func (r *medicationRepository) List(ctx context.Context, dependantID uuid.UUID) ([]*model.Medication, error) {
	query := `SELECT * FROM medications WHERE dependant_id = $1 ORDER BY name`
	var medications []*model.Medication
	err := r.db.SelectContext(ctx, &medications, query, dependantID)
	return medications, err
}

func (r *medicationRepository) DeleteByDependant(ctx context.Context, dependantID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const byDependant = `SELECT id FROM medications WHERE dependant_id = $1`
	if _, err := tx.ExecContext(ctx, `DELETE FROM completions WHERE medication_id IN (`+byDependant+`)`, dependantID); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules WHERE medication_id IN (`+byDependant+`)`, dependantID); err != nil {
		return fmt.Errorf("failed to delete schedules: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM medications WHERE dependant_id = $1`, dependantID); err != nil {
		return fmt.Errorf("failed to delete medications: %w", err)
	}

	return tx.Commit()
}
