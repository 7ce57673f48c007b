package model

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords so login failures do not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the JWT payload; CaregiverID is the sole tenant key for
// every protected route.
type TokenClaims struct {
	jwt.RegisteredClaims
	CaregiverID uuid.UUID `json:"caregiver_id"`
	Email       string    `json:"email"`
}
