package schedule

import (
	"time"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/pkg/errors"
)

// EvenSpacingStrategy spreads dosesPerDay evenly across the daily awake
// window: the first dose at the start time, the last at the end time, and
// the rest at equal minute intervals between them. A single daily dose
// lands on the start time regardless of the end time.
type EvenSpacingStrategy struct{}

func (EvenSpacingStrategy) Name() model.ScheduleMode {
	return model.ScheduleModeEvenSpacing
}

func (EvenSpacingStrategy) Generate(desc model.MedicationDescriptor) ([]model.DoseEvent, error) {
	startMin, err := validateCommon(desc)
	if err != nil {
		return nil, err
	}
	if desc.DosesPerDay < 1 {
		return nil, errors.NewInvalidDescriptor("doses per day must be a positive integer", nil)
	}

	endTime := desc.EndTime
	if desc.Continuous {
		endTime = continuousEndTime
	}
	endMin, perr := parseTimeOfDay(endTime)
	if perr != nil {
		return nil, errors.NewInvalidDescriptor("end time must be HH:MM", perr)
	}

	// An inverted daily window would spread doses with a negative interval
	// and emit them out of order. A single daily dose never uses the end
	// time, so only multi-dose schedules reject it.
	if desc.DosesPerDay > 1 && endMin <= startMin {
		return nil, errors.NewInvalidDescriptor("end time must be after start time", nil)
	}

	d0, d1 := effectiveRange(desc)

	activeMinutes := endMin - startMin
	intervalMinutes := 0
	if desc.DosesPerDay > 1 {
		intervalMinutes = activeMinutes / (desc.DosesPerDay - 1)
	}

	// Days processed in order with monotonically increasing intra-day
	// offsets, so the result is already time ascending.
	events := make([]model.DoseEvent, 0, desc.DosesPerDay*(daysBetween(d0, d1)+1))
	for day := d0; !day.After(d1); day = day.AddDate(0, 0, 1) {
		for dose := 0; dose < desc.DosesPerDay; dose++ {
			events = append(events, model.DoseEvent{
				DoseTime:       atMinutes(day, startMin+dose*intervalMinutes),
				MedicationName: desc.Name,
			})
		}
	}
	return events, nil
}

func daysBetween(d0, d1 time.Time) int {
	return int(d1.Sub(d0).Hours() / 24)
}
