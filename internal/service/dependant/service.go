package dependant

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
	"github.com/medremind/reminder-api/pkg/errors"
	"github.com/medremind/reminder-api/pkg/security"
)

type Service struct {
	repo           repository.DependantRepository
	medicationRepo repository.MedicationRepository
	encryptor      security.Encryptor
}

// NewService builds the dependant service. encryptor may be nil, in which
// case care notes are stored as plaintext.
func NewService(repo repository.DependantRepository, medicationRepo repository.MedicationRepository, encryptor security.Encryptor) *Service {
	return &Service{
		repo:           repo,
		medicationRepo: medicationRepo,
		encryptor:      encryptor,
	}
}

func (s *Service) CreateDependant(ctx context.Context, caregiverID uuid.UUID, req *model.CreateDependantRequest) (*model.Dependant, error) {
	notes, err := s.sealNotes(req.Notes)
	if err != nil {
		return nil, err
	}

	dependant := &model.Dependant{
		Base: model.Base{
			ID: uuid.New(),
		},
		CaregiverID: caregiverID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Notes:       notes,
	}

	if err := s.repo.Create(ctx, dependant); err != nil {
		return nil, fmt.Errorf("failed to create dependant: %w", err)
	}

	dependant.Notes = req.Notes
	return dependant, nil
}

// GetDependant fetches one dependant and checks caregiver ownership.
func (s *Service) GetDependant(ctx context.Context, caregiverID, id uuid.UUID) (*model.Dependant, error) {
	dependant, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("dependant", err)
	}
	if dependant.CaregiverID != caregiverID {
		return nil, errors.NewNotFound("dependant", nil)
	}

	notes, err := s.openNotes(dependant.Notes)
	if err != nil {
		return nil, err
	}
	dependant.Notes = notes
	return dependant, nil
}

func (s *Service) UpdateDependant(ctx context.Context, caregiverID, id uuid.UUID, req *model.UpdateDependantRequest) (*model.Dependant, error) {
	dependant, err := s.GetDependant(ctx, caregiverID, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		dependant.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		dependant.LastName = *req.LastName
	}
	if req.Notes != nil {
		dependant.Notes = *req.Notes
	}
	dependant.UpdatedAt = time.Now()

	plainNotes := dependant.Notes
	dependant.Notes, err = s.sealNotes(plainNotes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, dependant); err != nil {
		return nil, fmt.Errorf("failed to update dependant: %w", err)
	}

	dependant.Notes = plainNotes
	return dependant, nil
}

// DeleteDependant removes the dependant together with its medications,
// schedules and completions.
func (s *Service) DeleteDependant(ctx context.Context, caregiverID, id uuid.UUID) error {
	if _, err := s.GetDependant(ctx, caregiverID, id); err != nil {
		return err
	}

	if err := s.medicationRepo.DeleteByDependant(ctx, id); err != nil {
		return fmt.Errorf("failed to delete dependant medications: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete dependant: %w", err)
	}
	return nil
}

func (s *Service) ListDependants(ctx context.Context, caregiverID uuid.UUID) ([]*model.Dependant, error) {
	dependants, err := s.repo.List(ctx, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependants: %w", err)
	}

	for _, dependant := range dependants {
		notes, err := s.openNotes(dependant.Notes)
		if err != nil {
			return nil, err
		}
		dependant.Notes = notes
	}
	return dependants, nil
}

// sealNotes encrypts care notes at rest. The ciphertext is base64 encoded
// so the column stays text.
func (s *Service) sealNotes(notes string) (string, error) {
	if s.encryptor == nil || notes == "" {
		return notes, nil
	}
	sealed, err := s.encryptor.Encrypt([]byte(notes))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt notes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *Service) openNotes(notes string) (string, error) {
	if s.encryptor == nil || notes == "" {
		return notes, nil
	}
	raw, err := base64.StdEncoding.DecodeString(notes)
	if err != nil {
		return "", fmt.Errorf("failed to decode notes: %w", err)
	}
	opened, err := s.encryptor.Decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt notes: %w", err)
	}
	return string(opened), nil
}
