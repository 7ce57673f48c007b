package medication

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/pkg/errors"
	"github.com/medremind/reminder-api/pkg/logger"
	"github.com/medremind/reminder-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "medication")

type memMedicationRepo struct {
	medications map[uuid.UUID]*model.Medication
}

func (m *memMedicationRepo) Create(ctx context.Context, medication *model.Medication) error {
	m.medications[medication.ID] = medication
	return nil
}
func (m *memMedicationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	medication, ok := m.medications[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return medication, nil
}
func (m *memMedicationRepo) Update(ctx context.Context, medication *model.Medication) error {
	m.medications[medication.ID] = medication
	return nil
}
func (m *memMedicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.medications, id)
	return nil
}
func (m *memMedicationRepo) List(ctx context.Context, dependantID uuid.UUID) ([]*model.Medication, error) {
	var out []*model.Medication
	for _, medication := range m.medications {
		if medication.DependantID == dependantID {
			out = append(out, medication)
		}
	}
	return out, nil
}
func (m *memMedicationRepo) DeleteByDependant(ctx context.Context, dependantID uuid.UUID) error {
	for id, medication := range m.medications {
		if medication.DependantID == dependantID {
			delete(m.medications, id)
		}
	}
	return nil
}

type memScheduleRepo struct {
	records map[uuid.UUID]*model.ScheduleRecord
	saves   int
}

func (m *memScheduleRepo) SaveSchedule(ctx context.Context, record *model.ScheduleRecord) error {
	m.records[record.MedicationID] = record
	m.saves++
	return nil
}
func (m *memScheduleRepo) GetSchedule(ctx context.Context, medicationID uuid.UUID) (*model.ScheduleRecord, error) {
	record, ok := m.records[medicationID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return record, nil
}
func (m *memScheduleRepo) ListByDependant(ctx context.Context, dependantID uuid.UUID) ([]*model.ScheduleRecord, error) {
	return nil, nil
}

type memCompletionRepo struct {
	records map[string]*model.CompletionRecord
}

func (m *memCompletionRepo) SetCompletion(ctx context.Context, record *model.CompletionRecord) error {
	m.records[record.Key] = record
	return nil
}
func (m *memCompletionRepo) DeleteCompletion(ctx context.Context, key string) error {
	delete(m.records, key)
	return nil
}
func (m *memCompletionRepo) ListKeysByDependant(ctx context.Context, dependantID uuid.UUID) ([]string, error) {
	var keys []string
	for key := range m.records {
		keys = append(keys, key)
	}
	return keys, nil
}
func (m *memCompletionRepo) DeleteByMedication(ctx context.Context, medicationID uuid.UUID) error {
	for key, record := range m.records {
		if record.MedicationID == medicationID {
			delete(m.records, key)
		}
	}
	return nil
}

type memDependantRepo struct {
	dependants map[uuid.UUID]*model.Dependant
}

func (m *memDependantRepo) Create(ctx context.Context, d *model.Dependant) error { return nil }
func (m *memDependantRepo) Get(ctx context.Context, id uuid.UUID) (*model.Dependant, error) {
	d, ok := m.dependants[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return d, nil
}
func (m *memDependantRepo) Update(ctx context.Context, d *model.Dependant) error { return nil }
func (m *memDependantRepo) Delete(ctx context.Context, id uuid.UUID) error       { return nil }
func (m *memDependantRepo) List(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error) {
	return nil, nil
}

type memOutboxRepo struct {
	events []*model.OutboxEvent
}

func (m *memOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	m.events = append(m.events, event)
	return nil
}
func (m *memOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (m *memOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string, retryAt *time.Time) error {
	return nil
}
func (m *memOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc         *Service
	caregiverID uuid.UUID
	dependantID uuid.UUID
	meds        *memMedicationRepo
	schedules   *memScheduleRepo
	completions *memCompletionRepo
	outbox      *memOutboxRepo
}

func newFixture() *fixture {
	caregiverID := uuid.New()
	dependantID := uuid.New()
	f := &fixture{
		caregiverID: caregiverID,
		dependantID: dependantID,
		meds:        &memMedicationRepo{medications: make(map[uuid.UUID]*model.Medication)},
		schedules:   &memScheduleRepo{records: make(map[uuid.UUID]*model.ScheduleRecord)},
		completions: &memCompletionRepo{records: make(map[string]*model.CompletionRecord)},
		outbox:      &memOutboxRepo{},
	}
	dependants := &memDependantRepo{dependants: map[uuid.UUID]*model.Dependant{
		dependantID: {Base: model.Base{ID: dependantID}, CaregiverID: caregiverID, FirstName: "Amma"},
	}}
	f.svc = NewService(f.meds, f.schedules, f.completions, dependants, f.outbox,
		logger.NewLogger(nil), testMetrics)
	return f
}

func createReq() *model.CreateMedicationRequest {
	return &model.CreateMedicationRequest{
		Name:        "Metformin",
		StartDate:   "2024-03-01",
		EndDate:     "2024-03-03",
		StartTime:   "08:00",
		EndTime:     "20:00",
		DosesPerDay: 3,
	}
}

func TestCreateMedicationGeneratesSchedule(t *testing.T) {
	f := newFixture()
	medication, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, createReq())
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleModeEvenSpacing, medication.Mode)
	assert.Equal(t, 1, medication.PillsPerDose)

	record, err := f.schedules.GetSchedule(context.Background(), medication.ID)
	require.NoError(t, err)
	// 3 days x 3 doses evenly spaced 08:00/14:00/20:00.
	require.Len(t, record.Events, 9)
	assert.Equal(t, 8, record.Events[0].DoseTime.Hour())
	assert.Equal(t, 14, record.Events[1].DoseTime.Hour())
	assert.Equal(t, 20, record.Events[2].DoseTime.Hour())

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventMedicationCreated, f.outbox.events[0].EventType)
}

func TestCreateMedicationRejectsInvalidDescriptor(t *testing.T) {
	f := newFixture()
	req := createReq()
	req.EndDate = ""
	_, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, req)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidDescriptor(err))
}

func TestCreateMedicationChecksOwnership(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateMedication(context.Background(), uuid.New(), f.dependantID, createReq())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateMedicationRecomputesSchedule(t *testing.T) {
	f := newFixture()
	medication, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, createReq())
	require.NoError(t, err)

	doses := 2
	_, err = f.svc.UpdateMedication(context.Background(), f.caregiverID, f.dependantID, medication.ID,
		&model.UpdateMedicationRequest{DosesPerDay: &doses})
	require.NoError(t, err)

	record, err := f.schedules.GetSchedule(context.Background(), medication.ID)
	require.NoError(t, err)
	// Overwritten, not appended: 3 days x 2 doses at 08:00/20:00.
	require.Len(t, record.Events, 6)
	assert.Equal(t, 2, f.schedules.saves)
}

func TestDeleteMedicationCascades(t *testing.T) {
	f := newFixture()
	medication, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, createReq())
	require.NoError(t, err)

	doseTime := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err = f.svc.SetCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMedication(context.Background(), f.caregiverID, f.dependantID, medication.ID))

	_, err = f.meds.Get(context.Background(), medication.ID)
	assert.Error(t, err)
	assert.Equal(t, model.EventMedicationDeleted, f.outbox.events[len(f.outbox.events)-1].EventType)
}

func TestSetCompletionIdempotent(t *testing.T) {
	f := newFixture()
	medication, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, createReq())
	require.NoError(t, err)

	doseTime := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	first, err := f.svc.SetCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime)
	require.NoError(t, err)
	second, err := f.svc.SetCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime)
	require.NoError(t, err)

	assert.Equal(t, first.Key, second.Key)
	assert.Equal(t, medication.ID.String()+"-08:00 AM", first.Key)
	assert.Len(t, f.completions.records, 1)
}

func TestDeleteCompletionIdempotent(t *testing.T) {
	f := newFixture()
	medication, err := f.svc.CreateMedication(context.Background(), f.caregiverID, f.dependantID, createReq())
	require.NoError(t, err)

	doseTime := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	_, err = f.svc.SetCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime))
	// Unmarking again is a no-op, not an error.
	require.NoError(t, f.svc.DeleteCompletion(context.Background(), f.caregiverID, f.dependantID, medication.ID, doseTime))
	assert.Empty(t, f.completions.records)
}
