package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medremind/reminder-api/internal/model"
	"github.com/medremind/reminder-api/internal/repository"
	"github.com/medremind/reminder-api/pkg/auth"
	"github.com/medremind/reminder-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

type Service struct {
	caregiverRepo repository.CaregiverRepository
	jwtSvc        auth.JWTService
	hasher        security.PasswordHasher
}

func NewService(caregiverRepo repository.CaregiverRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		caregiverRepo: caregiverRepo,
		jwtSvc:        jwtSvc,
		hasher:        security.NewBcryptHasher(bcryptCost),
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Caregiver, error) {
	existing, _ := s.caregiverRepo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	caregiver := &model.Caregiver{
		Base: model.Base{
			ID: uuid.New(),
		},
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Status:       model.CaregiverStatusActive,
	}

	if err := s.caregiverRepo.Create(ctx, caregiver); err != nil {
		return nil, fmt.Errorf("failed to create caregiver: %w", err)
	}

	return caregiver, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	caregiver, err := s.caregiverRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if caregiver.Status == model.CaregiverStatusLocked {
		if time.Since(caregiver.LastLoginAttempt) < lockoutDuration {
			return nil, fmt.Errorf("account is locked, please try again later")
		}
		caregiver.Status = model.CaregiverStatusActive
		caregiver.LoginAttempts = 0
	}

	if err := s.hasher.Compare(caregiver.PasswordHash, password); err != nil {
		caregiver.LoginAttempts++
		caregiver.LastLoginAttempt = time.Now()

		if caregiver.LoginAttempts >= maxLoginAttempts {
			caregiver.Status = model.CaregiverStatusLocked
		}

		if err := s.caregiverRepo.Update(ctx, caregiver); err != nil {
			return nil, fmt.Errorf("failed to update login attempts: %w", err)
		}

		return nil, model.ErrInvalidCredentials
	}

	caregiver.LoginAttempts = 0
	now := time.Now()
	caregiver.LastLoginAt = &now
	if err := s.caregiverRepo.Update(ctx, caregiver); err != nil {
		return nil, fmt.Errorf("failed to update login timestamp: %w", err)
	}

	return s.generateTokens(caregiver)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.CaregiverID == uuid.Nil {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	caregiver, err := s.caregiverRepo.Get(ctx, claims.CaregiverID)
	if err != nil {
		return nil, fmt.Errorf("caregiver not found: %w", err)
	}

	return s.generateTokens(caregiver)
}

func (s *Service) generateTokens(caregiver *model.Caregiver) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(caregiver)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(caregiver)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
