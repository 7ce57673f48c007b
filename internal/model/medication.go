package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleMode selects the algorithm used to lay out dose times.
type ScheduleMode string

const (
	// ScheduleModeEvenSpacing spreads dosesPerDay evenly across the daily
	// awake window. Used by the current add-medication flow.
	ScheduleModeEvenSpacing ScheduleMode = "even_spacing"
	// ScheduleModeFixedInterval repeats a fixed hour interval from the start
	// time until the 22:00 cutoff. Legacy flow, kept for existing records.
	ScheduleModeFixedInterval ScheduleMode = "fixed_interval"
)

// MedicationDescriptor is the scheduling input for one medication. EndDate
// and EndTime are ignored when Continuous is set; the planning horizon is
// then capped at 90 days with an implicit 22:00 end time.
type MedicationDescriptor struct {
	Name         string       `db:"name" json:"name"`
	StartDate    time.Time    `db:"start_date" json:"start_date"`
	EndDate      time.Time    `db:"end_date" json:"end_date"`
	StartTime    string       `db:"start_time" json:"start_time"`
	EndTime      string       `db:"end_time" json:"end_time"`
	DosesPerDay  int          `db:"doses_per_day" json:"doses_per_day"`
	PillsPerDose int          `db:"pills_per_dose" json:"pills_per_dose"`
	Continuous   bool         `db:"continuous" json:"continuous"`
	Frequency    string       `db:"frequency" json:"frequency,omitempty"`
	Mode         ScheduleMode `db:"mode" json:"mode"`
}

type Medication struct {
	Base
	DependantID uuid.UUID `db:"dependant_id" json:"dependant_id"`
	MedicationDescriptor
}

type CreateMedicationRequest struct {
	Name         string `json:"name" binding:"required"`
	StartDate    string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    string `json:"start_time" binding:"required,timeofday"`
	EndTime      string `json:"end_time" binding:"omitempty,timeofday"`
	DosesPerDay  int    `json:"doses_per_day" binding:"required,min=1"`
	PillsPerDose int    `json:"pills_per_dose" binding:"omitempty,min=1"`
	Continuous   bool   `json:"continuous"`
	Frequency    string `json:"frequency"`
	Mode         string `json:"mode" binding:"omitempty,oneof=even_spacing fixed_interval"`
}

type UpdateMedicationRequest struct {
	Name         *string `json:"name"`
	StartDate    *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime    *string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime      *string `json:"end_time" binding:"omitempty,timeofday"`
	DosesPerDay  *int    `json:"doses_per_day" binding:"omitempty,min=1"`
	PillsPerDose *int    `json:"pills_per_dose" binding:"omitempty,min=1"`
	Continuous   *bool   `json:"continuous"`
	Frequency    *string `json:"frequency"`
}
