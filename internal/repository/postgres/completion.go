package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
)

type completionRepository struct {
	db *sqlx.DB
}

func NewCompletionRepository(db *sqlx.DB) repository.CompletionRepository {
	return &completionRepository{db: db}
}

// SetCompletion is idempotent: re-marking an already completed dose rewrites
// the same record.
func (r *completionRepository) SetCompletion(ctx context.Context, record *model.CompletionRecord) error {
	query := `
		INSERT INTO completions (key, medication_id, dependant_id, medication_name, dose_time_label, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET completed_at = $6
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Key,
		record.MedicationID,
		record.DependantID,
		record.MedicationName,
		record.DoseTimeLabel,
		record.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set completion: %w", err)
	}
	return nil
}

// DeleteCompletion is idempotent: unmarking an absent record is a no-op.
func (r *completionRepository) DeleteCompletion(ctx context.Context, key string) error {
	query := `DELETE FROM completions WHERE key = $1`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return nil
}

func (r *completionRepository) ListKeysByDependant(ctx context.Context, dependantID uuid.UUID) ([]string, error) {
	query := `SELECT key FROM completions WHERE dependant_id = $1`
	var keys []string
	if err := r.db.SelectContext(ctx, &keys, query, dependantID); err != nil {
		return nil, fmt.Errorf("failed to list completion keys: %w", err)
	}
	return keys, nil
}

func (r *completionRepository) DeleteByMedication(ctx context.Context, medicationID uuid.UUID) error {
	query := `DELETE FROM completions WHERE medication_id = $1`
	if _, err := r.db.ExecContext(ctx, query, medicationID); err != nil {
		return fmt.Errorf("failed to delete completions for medication: %w", err)
	}
	return nil
}
