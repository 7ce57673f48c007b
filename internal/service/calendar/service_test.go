package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medremind/reminder-api/internal/model"
)

func task(dependant uuid.UUID, name string, doseTime time.Time) model.Task {
	return model.Task{
		DependantID:    dependant,
		DependantName:  name,
		MedicationID:   uuid.New(),
		MedicationName: "Metformin",
		DoseTime:       doseTime,
		TimeLabel:      model.FormatDoseTime(doseTime),
	}
}

func at(dayOfMonth, hour int) time.Time {
	return time.Date(2024, 3, dayOfMonth, hour, 0, 0, 0, time.UTC)
}

func TestProjectGridBucketsByDate(t *testing.T) {
	svc := NewService()
	d := uuid.New()
	tasks := []model.Task{
		task(d, "Amma", at(5, 8)),
		task(d, "Amma", at(5, 20)),
		task(d, "Amma", at(6, 8)),
	}

	projection := svc.Project(tasks, model.CalendarModeGrid, time.Time{})
	require.Equal(t, model.CalendarModeGrid, projection.Mode)
	require.Len(t, projection.Buckets, 2)

	assert.Len(t, projection.Buckets["2024-03-05"].Tasks, 2)
	assert.Len(t, projection.Buckets["2024-03-06"].Tasks, 1)
	assert.Nil(t, projection.Buckets["2024-03-05"].Groups)
}

func TestProjectGridGroupsMultipleDependants(t *testing.T) {
	svc := NewService()
	tasks := []model.Task{
		task(uuid.New(), "Amma", at(5, 8)),
		task(uuid.New(), "Thatha", at(5, 9)),
	}

	projection := svc.Project(tasks, model.CalendarModeGrid, time.Time{})
	bucket := projection.Buckets["2024-03-05"]
	require.NotNil(t, bucket.Groups)
	assert.Len(t, bucket.Groups["Amma"], 1)
	assert.Len(t, bucket.Groups["Thatha"], 1)
}

func TestProjectGridPreservesTaskOrder(t *testing.T) {
	svc := NewService()
	d := uuid.New()
	// Aggregator order, deliberately not re-sortable by this package.
	tasks := []model.Task{
		task(d, "Amma", at(5, 8)),
		task(d, "Amma", at(5, 12)),
		task(d, "Amma", at(5, 20)),
	}

	projection := svc.Project(tasks, model.CalendarModeGrid, time.Time{})
	bucket := projection.Buckets["2024-03-05"]
	require.Len(t, bucket.Tasks, 3)
	assert.Equal(t, tasks[0].DoseTime, bucket.Tasks[0].DoseTime)
	assert.Equal(t, tasks[1].DoseTime, bucket.Tasks[1].DoseTime)
	assert.Equal(t, tasks[2].DoseTime, bucket.Tasks[2].DoseTime)
}

func TestProjectListSingleDay(t *testing.T) {
	svc := NewService()
	d := uuid.New()
	tasks := []model.Task{
		task(d, "Amma", at(5, 8)),
		task(d, "Amma", at(5, 20)),
	}

	projection := svc.Project(tasks, model.CalendarModeList, at(5, 0))
	require.Equal(t, model.CalendarModeList, projection.Mode)
	require.NotNil(t, projection.Day)
	assert.Equal(t, "2024-03-05", projection.Day.Date)
	assert.Len(t, projection.Day.Tasks, 2)
	assert.Nil(t, projection.Day.Groups)
	assert.Nil(t, projection.Buckets)
}

// List mode renders exactly the selected date; tasks from the rest of a
// multi-day window must not leak into the bucket, and the bucket is
// labeled with the selected date rather than the first task's.
func TestProjectListFiltersToSelectedDate(t *testing.T) {
	svc := NewService()
	d := uuid.New()
	tasks := []model.Task{
		task(d, "Amma", at(5, 8)),
		task(d, "Amma", at(6, 8)),
		task(d, "Amma", at(6, 20)),
	}

	projection := svc.Project(tasks, model.CalendarModeList, at(6, 0))
	require.NotNil(t, projection.Day)
	assert.Equal(t, "2024-03-06", projection.Day.Date)
	require.Len(t, projection.Day.Tasks, 2)
	for _, tk := range projection.Day.Tasks {
		assert.Equal(t, 6, tk.DoseTime.Day())
	}
}

func TestProjectListGroupsMultipleDependants(t *testing.T) {
	svc := NewService()
	tasks := []model.Task{
		task(uuid.New(), "Amma", at(5, 8)),
		task(uuid.New(), "Thatha", at(5, 9)),
		task(uuid.New(), "Amma", at(6, 8)),
	}

	projection := svc.Project(tasks, model.CalendarModeList, at(5, 0))
	require.NotNil(t, projection.Day)
	require.NotNil(t, projection.Day.Groups)
	assert.Len(t, projection.Day.Groups["Amma"], 1)
	assert.Len(t, projection.Day.Groups["Thatha"], 1)
}

func TestProjectListEmpty(t *testing.T) {
	svc := NewService()
	projection := svc.Project([]model.Task{}, model.CalendarModeList, at(5, 0))
	require.NotNil(t, projection.Day)
	assert.Empty(t, projection.Day.Tasks)
	assert.Equal(t, "2024-03-05", projection.Day.Date)
	assert.Nil(t, projection.Day.Groups)
}
