package schedule

import (
	"regexp"
	"strconv"
	"time"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/pkg/errors"
)

var frequencyHoursRe = regexp.MustCompile(`(\d+)`)

// FixedIntervalStrategy is the legacy dosing layout: starting at the start
// time, doses repeat every N hours (parsed from a free-form frequency
// string such as "every 6 hours") until the 22:00 cutoff. Doses are not
// re-spaced to fit the window.
type FixedIntervalStrategy struct{}

func (FixedIntervalStrategy) Name() model.ScheduleMode {
	return model.ScheduleModeFixedInterval
}

// ParseFrequencyHours extracts the hour interval from a frequency string.
// Accepts "every 6 hours", "6h", or a bare "6".
func ParseFrequencyHours(frequency string) (int, error) {
	match := frequencyHoursRe.FindString(frequency)
	if match == "" {
		return 0, errors.NewInvalidDescriptor("frequency must contain an hour interval", nil)
	}
	hours, err := strconv.Atoi(match)
	if err != nil || hours < 1 {
		return 0, errors.NewInvalidDescriptor("frequency interval must be a positive hour count", err)
	}
	return hours, nil
}

func (FixedIntervalStrategy) Generate(desc model.MedicationDescriptor) ([]model.DoseEvent, error) {
	startMin, err := validateCommon(desc)
	if err != nil {
		return nil, err
	}
	hours, err := ParseFrequencyHours(desc.Frequency)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(hours) * time.Hour
	d0, d1 := effectiveRange(desc)

	var events []model.DoseEvent
	for day := d0; !day.After(d1); day = day.AddDate(0, 0, 1) {
		// Stop at the cutoff hour and never spill into the next day:
		// 06:00 every 6h gives 06:00, 12:00, 18:00 and skips 24:00.
		for t := atMinutes(day, startMin); t.Before(day.AddDate(0, 0, 1)) && t.Hour() < fixedIntervalCutoffHour; t = t.Add(interval) {
			events = append(events, model.DoseEvent{
				DoseTime:       t,
				MedicationName: desc.Name,
			})
		}
	}
	return events, nil
}
