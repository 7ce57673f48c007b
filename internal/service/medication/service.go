package medication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
	"github.com/medremind/reminder-api/internal/schedule"
	"github.com/medremind/reminder-api/pkg/errors"
	"github.com/medremind/reminder-api/pkg/logger"
	"github.com/medremind/reminder-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo           repository.MedicationRepository
	scheduleRepo   repository.ScheduleRepository
	completionRepo repository.CompletionRepository
	dependantRepo  repository.DependantRepository
	outboxRepo     repository.OutboxRepository
	logger         *logger.Logger
	metrics        *metrics.Metrics
}

func NewService(
	repo repository.MedicationRepository,
	scheduleRepo repository.ScheduleRepository,
	completionRepo repository.CompletionRepository,
	dependantRepo repository.DependantRepository,
	outboxRepo repository.OutboxRepository,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:           repo,
		scheduleRepo:   scheduleRepo,
		completionRepo: completionRepo,
		dependantRepo:  dependantRepo,
		outboxRepo:     outboxRepo,
		logger:         logger,
		metrics:        metrics,
	}
}

// CreateMedication validates the descriptor, generates the dose schedule and
// persists both. The schedule is the medication's single source of dose
// times until the descriptor changes again.
func (s *Service) CreateMedication(ctx context.Context, caregiverID, dependantID uuid.UUID, req *model.CreateMedicationRequest) (*model.Medication, error) {
	if err := s.checkOwnership(ctx, caregiverID, dependantID); err != nil {
		return nil, err
	}

	descriptor, err := descriptorFromCreate(req)
	if err != nil {
		return nil, err
	}

	events, err := schedule.Generate(descriptor)
	if err != nil {
		return nil, err
	}

	medication := &model.Medication{
		Base: model.Base{
			ID: uuid.New(),
		},
		DependantID:          dependantID,
		MedicationDescriptor: descriptor,
	}

	if err := s.repo.Create(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	if err := s.saveSchedule(ctx, medication.ID, events); err != nil {
		return nil, err
	}

	s.metrics.SchedulesGenerated.WithLabelValues(string(descriptor.Mode)).Inc()
	s.metrics.DoseEventsGenerated.Add(float64(len(events)))
	s.emitEvent(ctx, model.EventMedicationCreated, medication)

	return medication, nil
}

func (s *Service) GetMedication(ctx context.Context, caregiverID, dependantID, id uuid.UUID) (*model.Medication, error) {
	if err := s.checkOwnership(ctx, caregiverID, dependantID); err != nil {
		return nil, err
	}

	medication, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("medication", err)
	}
	if medication.DependantID != dependantID {
		return nil, errors.NewNotFound("medication", nil)
	}
	return medication, nil
}

func (s *Service) ListMedications(ctx context.Context, caregiverID, dependantID uuid.UUID) ([]*model.Medication, error) {
	if err := s.checkOwnership(ctx, caregiverID, dependantID); err != nil {
		return nil, err
	}

	medications, err := s.repo.List(ctx, dependantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, nil
}

// UpdateMedication applies the partial update and fully recomputes the
// schedule from the merged descriptor, overwriting the previous record.
func (s *Service) UpdateMedication(ctx context.Context, caregiverID, dependantID, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	medication, err := s.GetMedication(ctx, caregiverID, dependantID, id)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(&medication.MedicationDescriptor, req); err != nil {
		return nil, err
	}

	events, err := schedule.Generate(medication.MedicationDescriptor)
	if err != nil {
		return nil, err
	}

	medication.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, medication); err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}

	if err := s.saveSchedule(ctx, medication.ID, events); err != nil {
		return nil, err
	}

	s.metrics.SchedulesGenerated.WithLabelValues(string(medication.Mode)).Inc()
	s.metrics.DoseEventsGenerated.Add(float64(len(events)))
	s.emitEvent(ctx, model.EventMedicationUpdated, medication)

	return medication, nil
}

// DeleteMedication cascades: the schedule record and every completion record
// anchored on the medication id go with it.
func (s *Service) DeleteMedication(ctx context.Context, caregiverID, dependantID, id uuid.UUID) error {
	medication, err := s.GetMedication(ctx, caregiverID, dependantID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	s.emitEvent(ctx, model.EventMedicationDeleted, medication)
	return nil
}

// SetCompletion marks one dose done. Idempotent: marking the same dose
// twice leaves a single record.
func (s *Service) SetCompletion(ctx context.Context, caregiverID, dependantID, medicationID uuid.UUID, doseTime time.Time) (*model.CompletionRecord, error) {
	medication, err := s.GetMedication(ctx, caregiverID, dependantID, medicationID)
	if err != nil {
		return nil, err
	}

	record := &model.CompletionRecord{
		Key:            model.CompletionKey(medicationID, doseTime),
		MedicationID:   medicationID,
		DependantID:    dependantID,
		MedicationName: medication.Name,
		DoseTimeLabel:  model.FormatDoseTime(doseTime),
		CompletedAt:    time.Now(),
	}

	if err := s.completionRepo.SetCompletion(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to set completion: %w", err)
	}

	s.emitEvent(ctx, model.EventDoseCompleted, record)
	return record, nil
}

// DeleteCompletion unmarks a dose. Unmarking an already unmarked dose is a
// no-op, not an error.
func (s *Service) DeleteCompletion(ctx context.Context, caregiverID, dependantID, medicationID uuid.UUID, doseTime time.Time) error {
	if _, err := s.GetMedication(ctx, caregiverID, dependantID, medicationID); err != nil {
		return err
	}

	key := model.CompletionKey(medicationID, doseTime)
	if err := s.completionRepo.DeleteCompletion(ctx, key); err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}

	s.emitEvent(ctx, model.EventDoseUncompleted, map[string]string{"key": key})
	return nil
}

func (s *Service) checkOwnership(ctx context.Context, caregiverID, dependantID uuid.UUID) error {
	dependant, err := s.dependantRepo.Get(ctx, dependantID)
	if err != nil {
		return errors.NewNotFound("dependant", err)
	}
	if dependant.CaregiverID != caregiverID {
		return errors.NewNotFound("dependant", nil)
	}
	return nil
}

func (s *Service) saveSchedule(ctx context.Context, medicationID uuid.UUID, events []model.DoseEvent) error {
	record := &model.ScheduleRecord{
		MedicationID: medicationID,
		Events:       events,
		GeneratedAt:  time.Now(),
	}
	if err := s.scheduleRepo.SaveSchedule(ctx, record); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

// emitEvent writes an outbox row; a failure here is logged rather than
// failing the mutation the event describes.
func (s *Service) emitEvent(ctx context.Context, eventType string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}
	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   body,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to create outbox event", "event_type", eventType)
	}
}

func descriptorFromCreate(req *model.CreateMedicationRequest) (model.MedicationDescriptor, error) {
	descriptor := model.MedicationDescriptor{
		Name:         req.Name,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		DosesPerDay:  req.DosesPerDay,
		PillsPerDose: req.PillsPerDose,
		Continuous:   req.Continuous,
		Frequency:    req.Frequency,
		Mode:         model.ScheduleMode(req.Mode),
	}
	if descriptor.PillsPerDose == 0 {
		descriptor.PillsPerDose = 1
	}
	if descriptor.Mode == "" {
		descriptor.Mode = model.ScheduleModeEvenSpacing
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return descriptor, errors.NewInvalidDescriptor("start date must be YYYY-MM-DD", err)
	}
	descriptor.StartDate = start

	if req.EndDate != "" {
		end, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return descriptor, errors.NewInvalidDescriptor("end date must be YYYY-MM-DD", err)
		}
		descriptor.EndDate = end
	}
	return descriptor, nil
}

func applyUpdate(descriptor *model.MedicationDescriptor, req *model.UpdateMedicationRequest) error {
	if req.Name != nil {
		descriptor.Name = *req.Name
	}
	if req.StartDate != nil {
		start, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			return errors.NewInvalidDescriptor("start date must be YYYY-MM-DD", err)
		}
		descriptor.StartDate = start
	}
	if req.EndDate != nil {
		end, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return errors.NewInvalidDescriptor("end date must be YYYY-MM-DD", err)
		}
		descriptor.EndDate = end
	}
	if req.StartTime != nil {
		descriptor.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		descriptor.EndTime = *req.EndTime
	}
	if req.DosesPerDay != nil {
		descriptor.DosesPerDay = *req.DosesPerDay
	}
	if req.PillsPerDose != nil {
		descriptor.PillsPerDose = *req.PillsPerDose
	}
	if req.Continuous != nil {
		descriptor.Continuous = *req.Continuous
	}
	if req.Frequency != nil {
		descriptor.Frequency = *req.Frequency
	}
	return nil
}
