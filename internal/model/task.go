package model

import (
	"time"

	"github.com/google/uuid"
)

// Task is a dose event joined with its dependant identity and completion
// state, restricted to a day window. Derived on each view request, never
// persisted.
type Task struct {
	DependantID    uuid.UUID `json:"dependant_id"`
	DependantName  string    `json:"dependant_name"`
	MedicationID   uuid.UUID `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	DoseTime       time.Time `json:"dose_time"`
	TimeLabel      string    `json:"time_label"`
	PillsPerDose   int       `json:"pills_per_dose"`
	Completed      bool      `json:"completed"`
	DueLabel       string    `json:"due_label"`
	Overdue        bool      `json:"overdue"`
	DueNow         bool      `json:"due_now"`
}

// DayWindow is a half-open interval [Start, End) of absolute time.
type DayWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DayWindowFor returns the window covering the calendar day of t in t's
// location.
func DayWindowFor(t time.Time) DayWindow {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return DayWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether ts falls inside the window.
func (w DayWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// CalendarMode selects the presentation shape of a projected schedule.
type CalendarMode string

const (
	CalendarModeGrid CalendarMode = "grid"
	CalendarModeList CalendarMode = "list"
)

// DateBucket holds the tasks of one calendar date, optionally grouped per
// dependant in caretaker views.
type DateBucket struct {
	Date   string             `json:"date"`
	Tasks  []Task             `json:"tasks,omitempty"`
	Groups map[string][]Task  `json:"groups,omitempty"`
}

// CalendarProjection is the renderer-facing output of projecting tasks onto
// dates. Grid mode fills Buckets keyed by date; list mode fills a single
// day's bucket.
type CalendarProjection struct {
	Mode    CalendarMode          `json:"mode"`
	Buckets map[string]DateBucket `json:"buckets,omitempty"`
	Day     *DateBucket           `json:"day,omitempty"`
}
