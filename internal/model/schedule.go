package model

import (
	"time"

	"github.com/google/uuid"
)

// DoseEvent is one scheduled administration instant for a medication.
// Ordered by DoseTime ascending, ties broken by medication name.
type DoseEvent struct {
	DoseTime       time.Time `json:"dose_time"`
	MedicationName string    `json:"medication_name"`
}

// ScheduleRecord owns the ordered dose events for one medication. It is
// created with the medication, fully recomputed and overwritten on every
// descriptor change, and removed with the medication.
type ScheduleRecord struct {
	MedicationID uuid.UUID   `db:"medication_id" json:"medication_id"`
	Events       []DoseEvent `json:"events"`
	GeneratedAt  time.Time   `db:"generated_at" json:"generated_at"`
}
