package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/model"
)

// All repository interfaces in one file
type (
	// CaregiverRepository handles caregiver account operations
	CaregiverRepository interface {
		Create(ctx context.Context, caregiver *model.Caregiver) error
		Get(ctx context.Context, id uuid.UUID) (*model.Caregiver, error)
		GetByEmail(ctx context.Context, email string) (*model.Caregiver, error)
		ListActive(ctx context.Context) ([]*model.Caregiver, error)
		Update(ctx context.Context, caregiver *model.Caregiver) error
	}

	DependantRepository interface {
		Create(ctx context.Context, dependant *model.Dependant) error
		Get(ctx context.Context, id uuid.UUID) (*model.Dependant, error)
		Update(ctx context.Context, dependant *model.Dependant) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		// Delete cascades to the medication's schedule record and every
		// completion record anchored on its id.
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, dependantID uuid.UUID) ([]*model.Medication, error)
		DeleteByDependant(ctx context.Context, dependantID uuid.UUID) error
	}

	// ScheduleRepository persists the generated dose event sequences.
	// SaveSchedule overwrites any previous record for the medication.
	ScheduleRepository interface {
		SaveSchedule(ctx context.Context, record *model.ScheduleRecord) error
		GetSchedule(ctx context.Context, medicationID uuid.UUID) (*model.ScheduleRecord, error)
		ListByDependant(ctx context.Context, dependantID uuid.UUID) ([]*model.ScheduleRecord, error)
	}

	// CompletionRepository tracks which dose events were administered.
	// SetCompletion and DeleteCompletion are idempotent.
	CompletionRepository interface {
		SetCompletion(ctx context.Context, record *model.CompletionRecord) error
		DeleteCompletion(ctx context.Context, key string) error
		ListKeysByDependant(ctx context.Context, dependantID uuid.UUID) ([]string, error)
		DeleteByMedication(ctx context.Context, medicationID uuid.UUID) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
