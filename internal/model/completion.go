package model

import (
	"time"

	"github.com/google/uuid"
)

// doseTimeLabelFormat is the 12-hour clock form shown to users and embedded
// in completion keys, e.g. "08:00 AM". Hours and minutes are zero padded.
const doseTimeLabelFormat = "03:04 PM"

// FormatDoseTime renders a dose timestamp in the display form used for both
// task rows and completion keys.
func FormatDoseTime(t time.Time) string {
	return t.Format(doseTimeLabelFormat)
}

// CompletionKey identifies one dose of one medication within a day view.
// Completion state is keyed on it so that marking 08:00 AM done on Tuesday
// also reads as done for the same slot on other days of the same schedule,
// matching how the day view resets per selected date.
func CompletionKey(medicationID uuid.UUID, doseTime time.Time) string {
	return medicationID.String() + "-" + FormatDoseTime(doseTime)
}

// CompletionRequest toggles the done state of one dose event.
type CompletionRequest struct {
	DoseTime time.Time `json:"dose_time" binding:"required"`
}

// CompletionRecord is evidence that a specific dose event was administered.
// Created on mark-done, deleted on unmark, never mutated otherwise. The
// MedicationID column is the cascade anchor: deleting a medication removes
// all of its completions.
type CompletionRecord struct {
	Key            string    `db:"key" json:"key"`
	MedicationID   uuid.UUID `db:"medication_id" json:"medication_id"`
	DependantID    uuid.UUID `db:"dependant_id" json:"dependant_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	DoseTimeLabel  string    `db:"dose_time_label" json:"dose_time_label"`
	CompletedAt    time.Time `db:"completed_at" json:"completed_at"`
}
