// Package schedule turns medication descriptors into ordered dose event
// sequences. Generation is pure and deterministic: the same descriptor
// always yields the same events, with no clock or store access.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/pkg/errors"
)

const (
	// Continuous medications have no end date; planning is capped at a
	// 90-day horizon with an implicit 22:00 end of the awake window.
	continuousHorizonDays = 90
	continuousEndTime     = "22:00"

	// Fixed-interval dosing stops once the next dose would land at or
	// after this hour.
	fixedIntervalCutoffHour = 22

	timeOfDayLayout = "15:04"
)

// Strategy lays out the dose times of one medication across its date range.
type Strategy interface {
	Name() model.ScheduleMode
	Generate(desc model.MedicationDescriptor) ([]model.DoseEvent, error)
}

// ForMode returns the strategy for a descriptor's schedule mode. An empty
// mode falls back to even spacing, matching the current add-medication flow.
func ForMode(mode model.ScheduleMode) (Strategy, error) {
	switch mode {
	case model.ScheduleModeEvenSpacing, "":
		return EvenSpacingStrategy{}, nil
	case model.ScheduleModeFixedInterval:
		return FixedIntervalStrategy{}, nil
	default:
		return nil, errors.NewInvalidDescriptor(fmt.Sprintf("unknown schedule mode %q", mode), nil)
	}
}

// Generate dispatches to the strategy selected by the descriptor.
func Generate(desc model.MedicationDescriptor) ([]model.DoseEvent, error) {
	strategy, err := ForMode(desc.Mode)
	if err != nil {
		return nil, err
	}
	return strategy.Generate(desc)
}

// effectiveRange resolves [D0, D1]: the end date collapses to start+90d for
// continuous medications.
func effectiveRange(desc model.MedicationDescriptor) (time.Time, time.Time) {
	d0 := truncateToDay(desc.StartDate)
	if desc.Continuous {
		return d0, d0.AddDate(0, 0, continuousHorizonDays)
	}
	return d0, truncateToDay(desc.EndDate)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseTimeOfDay parses "HH:MM" into minutes since midnight.
func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func atMinutes(day time.Time, minutes int) time.Time {
	return day.Add(time.Duration(minutes) * time.Minute)
}

func validateCommon(desc model.MedicationDescriptor) (startMin int, err error) {
	if desc.Name == "" {
		return 0, errors.NewInvalidDescriptor("medication name is required", nil)
	}
	if desc.StartDate.IsZero() {
		return 0, errors.NewInvalidDescriptor("start date is required", nil)
	}
	startMin, perr := parseTimeOfDay(desc.StartTime)
	if perr != nil {
		return 0, errors.NewInvalidDescriptor("start time must be HH:MM", perr)
	}
	if !desc.Continuous {
		if desc.EndDate.IsZero() {
			return 0, errors.NewInvalidDescriptor("end date is required for non-continuous medications", nil)
		}
		if truncateToDay(desc.EndDate).Before(truncateToDay(desc.StartDate)) {
			return 0, errors.NewInvalidDescriptor("end date must not be before start date", nil)
		}
	}
	return startMin, nil
}

// SortDoseEvents orders events ascending by dose time, ties broken by
// medication name. The sort is stable so equal events keep insertion order.
func SortDoseEvents(events []model.DoseEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].DoseTime.Equal(events[j].DoseTime) {
			return events[i].MedicationName < events[j].MedicationName
		}
		return events[i].DoseTime.Before(events[j].DoseTime)
	})
}
