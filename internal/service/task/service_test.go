package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/pkg/logger"
	"github.com/medremind/reminder-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "task")

type fakeDependantRepo struct {
	dependants map[uuid.UUID]*model.Dependant
	byCaregiver map[uuid.UUID][]*model.Dependant
}

func (f *fakeDependantRepo) Create(ctx context.Context, d *model.Dependant) error { return nil }
func (f *fakeDependantRepo) Get(ctx context.Context, id uuid.UUID) (*model.Dependant, error) {
	d, ok := f.dependants[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}
func (f *fakeDependantRepo) Update(ctx context.Context, d *model.Dependant) error { return nil }
func (f *fakeDependantRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (f *fakeDependantRepo) List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error) {
	return f.byCaregiver[caregiverID], nil
}

type fakeMedicationRepo struct {
	byDependant map[uuid.UUID][]*model.Medication
	failFor     map[uuid.UUID]bool
}

func (f *fakeMedicationRepo) Create(ctx context.Context, m *model.Medication) error { return nil }
func (f *fakeMedicationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakeMedicationRepo) Update(ctx context.Context, m *model.Medication) error { return nil }
func (f *fakeMedicationRepo) Delete(ctx context.Context, id uuid.UUID) error        { return nil }
func (f *fakeMedicationRepo) List(ctx context.Context, dependantID uuid.UUID) ([]*model.Medication, error) {
	if f.failFor[dependantID] {
		return nil, fmt.Errorf("connection refused")
	}
	return f.byDependant[dependantID], nil
}
func (f *fakeMedicationRepo) DeleteByDependant(ctx context.Context, dependantID uuid.UUID) error {
	return nil
}

type fakeScheduleRepo struct {
	byDependant map[uuid.UUID][]*model.ScheduleRecord
}

func (f *fakeScheduleRepo) SaveSchedule(ctx context.Context, r *model.ScheduleRecord) error {
	return nil
}
func (f *fakeScheduleRepo) GetSchedule(ctx context.Context, medicationID uuid.UUID) (*model.ScheduleRecord, error) {
	return nil, fmt.Errorf("not found")
}
func (f *fakeScheduleRepo) ListByDependant(ctx context.Context, dependantID uuid.UUID) ([]*model.ScheduleRecord, error) {
	return f.byDependant[dependantID], nil
}

type fakeCompletionRepo struct {
	keysByDependant map[uuid.UUID][]string
}

func (f *fakeCompletionRepo) SetCompletion(ctx context.Context, r *model.CompletionRecord) error {
	return nil
}
func (f *fakeCompletionRepo) DeleteCompletion(ctx context.Context, key string) error { return nil }
func (f *fakeCompletionRepo) ListKeysByDependant(ctx context.Context, dependantID uuid.UUID) ([]string, error) {
	return f.keysByDependant[dependantID], nil
}
func (f *fakeCompletionRepo) DeleteByMedication(ctx context.Context, medicationID uuid.UUID) error {
	return nil
}

type fixture struct {
	svc        *Service
	caregiver  uuid.UUID
	dependants *fakeDependantRepo
	meds       *fakeMedicationRepo
	schedules  *fakeScheduleRepo
	completion *fakeCompletionRepo
}

func newFixture() *fixture {
	f := &fixture{
		caregiver: uuid.New(),
		dependants: &fakeDependantRepo{
			dependants:  make(map[uuid.UUID]*model.Dependant),
			byCaregiver: make(map[uuid.UUID][]*model.Dependant),
		},
		meds:       &fakeMedicationRepo{byDependant: make(map[uuid.UUID][]*model.Medication), failFor: make(map[uuid.UUID]bool)},
		schedules:  &fakeScheduleRepo{byDependant: make(map[uuid.UUID][]*model.ScheduleRecord)},
		completion: &fakeCompletionRepo{keysByDependant: make(map[uuid.UUID][]string)},
	}
	f.svc = NewService(f.dependants, f.meds, f.schedules, f.completion,
		logger.NewLogger(nil), testMetrics, time.Second, time.Millisecond)
	return f
}

func (f *fixture) addDependant(name string) *model.Dependant {
	d := &model.Dependant{
		Base:        model.Base{ID: uuid.New()},
		CaregiverID: f.caregiver,
		FirstName:   name,
	}
	f.dependants.dependants[d.ID] = d
	f.dependants.byCaregiver[f.caregiver] = append(f.dependants.byCaregiver[f.caregiver], d)
	return d
}

func (f *fixture) addMedication(dependantID uuid.UUID, name string, doseTimes ...time.Time) *model.Medication {
	m := &model.Medication{
		Base:        model.Base{ID: uuid.New()},
		DependantID: dependantID,
		MedicationDescriptor: model.MedicationDescriptor{
			Name:         name,
			PillsPerDose: 1,
		},
	}
	f.meds.byDependant[dependantID] = append(f.meds.byDependant[dependantID], m)
	events := make([]model.DoseEvent, 0, len(doseTimes))
	for _, t := range doseTimes {
		events = append(events, model.DoseEvent{DoseTime: t, MedicationName: name})
	}
	f.schedules.byDependant[dependantID] = append(f.schedules.byDependant[dependantID], &model.ScheduleRecord{
		MedicationID: m.ID,
		Events:       events,
		GeneratedAt:  time.Now(),
	})
	return m
}

func day(hour, minute int) time.Time {
	return time.Date(2024, 3, 5, hour, minute, 0, 0, time.UTC)
}

func TestAggregateRequiresCaregiver(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Aggregate(context.Background(), uuid.Nil, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.Error(t, err)
}

func TestAggregateEmptyWithoutDependants(t *testing.T) {
	f := newFixture()
	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAggregateJoinsCompletionState(t *testing.T) {
	f := newFixture()
	d := f.addDependant("Amma")
	m := f.addMedication(d.ID, "Metformin", day(8, 0), day(20, 0))
	f.completion.keysByDependant[d.ID] = []string{model.CompletionKey(m.ID, day(8, 0))}

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "08:00 AM", tasks[0].TimeLabel)
	assert.False(t, tasks[1].Completed)
	assert.Equal(t, "08:00 PM", tasks[1].TimeLabel)
	assert.Equal(t, "Amma", tasks[0].DependantName)
	assert.Equal(t, "Metformin", tasks[0].MedicationName)
}

func TestAggregateFiltersToWindow(t *testing.T) {
	f := newFixture()
	d := f.addDependant("Amma")
	f.addMedication(d.ID, "Metformin",
		day(8, 0),
		day(8, 0).AddDate(0, 0, -1),
		day(8, 0).AddDate(0, 0, 1))

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, day(8, 0), tasks[0].DoseTime)
}

func TestAggregateSortsByTwelveHourClock(t *testing.T) {
	f := newFixture()
	d := f.addDependant("Amma")
	// Insert out of order, spanning the midnight and noon wraparounds.
	f.addMedication(d.ID, "Metformin", day(20, 0), day(0, 15), day(12, 30), day(9, 0))

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 4)

	labels := []string{tasks[0].TimeLabel, tasks[1].TimeLabel, tasks[2].TimeLabel, tasks[3].TimeLabel}
	assert.Equal(t, []string{"12:15 AM", "09:00 AM", "12:30 PM", "08:00 PM"}, labels)
}

func TestAggregateIsolatesFailedBranch(t *testing.T) {
	f := newFixture()
	healthy := f.addDependant("Amma")
	broken := f.addDependant("Thatha")
	f.addMedication(healthy.ID, "Metformin", day(8, 0))
	f.addMedication(broken.ID, "Aspirin", day(10, 0))
	f.meds.failFor[broken.ID] = true

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, healthy.ID, tasks[0].DependantID)
}

func TestAggregateSkipsMalformedEntries(t *testing.T) {
	f := newFixture()
	d := f.addDependant("Amma")
	f.addMedication(d.ID, "Metformin", day(8, 0), time.Time{})

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
}

func TestAggregateUnknownDependantName(t *testing.T) {
	f := newFixture()
	d := f.addDependant("")
	f.addMedication(d.ID, "Metformin", day(8, 0))

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Unknown", tasks[0].DependantName)
}

func TestDueLabelPhrasing(t *testing.T) {
	doseTime := day(9, 0)
	tests := []struct {
		name  string
		now   time.Time
		label string
	}{
		{"exactly at dose time", doseTime, "Due now"},
		{"one minute after", doseTime.Add(time.Minute), "Due now"},
		{"ninety minutes after", doseTime.Add(90 * time.Minute), "Due 1 hours and 30 minutes ago"},
		{"exactly sixty after resolves to hours", doseTime.Add(60 * time.Minute), "Due 1 hours and 0 minutes ago"},
		{"thirty minutes after", doseTime.Add(30 * time.Minute), "Overdue by 30 min"},
		{"thirty minutes before", doseTime.Add(-30 * time.Minute), "Due in 30 min"},
		{"sixty minutes before", doseTime.Add(-60 * time.Minute), "Due in 60 min"},
		{"two hours before", doseTime.Add(-125 * time.Minute), "Due in 2 hours and 5 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, dueLabelFor(doseTime, tt.now))
		})
	}
}

func TestDueTags(t *testing.T) {
	f := newFixture()
	d := f.addDependant("Amma")
	f.addMedication(d.ID, "Metformin", day(9, 0), day(8, 30), day(10, 0))

	tasks, err := f.svc.Aggregate(context.Background(), f.caregiver, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	// 08:30 is 30 minutes overdue, 09:00 is due now, 10:00 is upcoming.
	assert.True(t, tasks[0].Overdue)
	assert.False(t, tasks[0].DueNow)
	assert.True(t, tasks[1].DueNow)
	assert.False(t, tasks[1].Overdue)
	assert.False(t, tasks[2].Overdue)
	assert.False(t, tasks[2].DueNow)
}

func TestParseTimeLabel(t *testing.T) {
	tests := []struct {
		label   string
		minutes int
		wantErr bool
	}{
		{"12:00 AM", 0, false},
		{"12:00 PM", 720, false},
		{"01:05 AM", 65, false},
		{"11:59 PM", 1439, false},
		{"08:00 am", 480, false},
		{"13:00 PM", 0, true},
		{"08:00", 0, true},
		{"garbage", 0, true},
	}
	for _, tt := range tests {
		got, err := parseTimeLabel(tt.label)
		if tt.wantErr {
			assert.Error(t, err, tt.label)
			continue
		}
		assert.NoError(t, err, tt.label)
		assert.Equal(t, tt.minutes, got, tt.label)
	}
}

func TestAggregateForDependantChecksOwnership(t *testing.T) {
	f := newFixture()
	other := &model.Dependant{Base: model.Base{ID: uuid.New()}, CaregiverID: uuid.New(), FirstName: "Someone"}
	f.dependants.dependants[other.ID] = other

	_, err := f.svc.AggregateForDependant(context.Background(), f.caregiver, other.ID, model.DayWindowFor(day(9, 0)), day(9, 0))
	require.Error(t, err)
}
