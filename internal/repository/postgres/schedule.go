package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
)

type scheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

// scheduleRow maps the schedules table; dose events live in a JSONB column.
type scheduleRow struct {
	MedicationID uuid.UUID       `db:"medication_id"`
	Events       json.RawMessage `db:"events"`
	GeneratedAt  time.Time       `db:"generated_at"`
}

func (row *scheduleRow) toRecord() (*model.ScheduleRecord, error) {
	record := &model.ScheduleRecord{
		MedicationID: row.MedicationID,
		GeneratedAt:  row.GeneratedAt,
	}
	if err := json.Unmarshal(row.Events, &record.Events); err != nil {
		return nil, fmt.Errorf("failed to decode schedule events: %w", err)
	}
	return record, nil
}

// SaveSchedule upserts: a descriptor change fully recomputes and overwrites
// the previous events.
func (r *scheduleRepository) SaveSchedule(ctx context.Context, record *model.ScheduleRecord) error {
	events, err := json.Marshal(record.Events)
	if err != nil {
		return fmt.Errorf("failed to encode schedule events: %w", err)
	}

	query := `
		INSERT INTO schedules (medication_id, events, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (medication_id) DO UPDATE SET events = $2, generated_at = $3
	`
	if _, err := r.db.ExecContext(ctx, query, record.MedicationID, events, record.GeneratedAt); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) GetSchedule(ctx context.Context, medicationID uuid.UUID) (*model.ScheduleRecord, error) {
	query := `SELECT medication_id, events, generated_at FROM schedules WHERE medication_id = $1`
	var row scheduleRow
	if err := r.db.GetContext(ctx, &row, query, medicationID); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return row.toRecord()
}

func (r *scheduleRepository) ListByDependant(ctx context.Context, dependantID uuid.UUID) ([]*model.ScheduleRecord, error) {
	query := `
		SELECT s.medication_id, s.events, s.generated_at
		FROM schedules s
		JOIN medications m ON m.id = s.medication_id
		WHERE m.dependant_id = $1
	`
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, dependantID); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	records := make([]*model.ScheduleRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
