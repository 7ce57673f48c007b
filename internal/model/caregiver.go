package model

import "time"

type CaregiverStatus string

const (
	CaregiverStatusActive CaregiverStatus = "active"
	CaregiverStatusLocked CaregiverStatus = "locked"
)

// Caregiver is the authenticated account managing one or more dependants.
type Caregiver struct {
	Base
	Email            string          `db:"email" json:"email"`
	PasswordHash     string          `db:"password_hash" json:"-"`
	FirstName        string          `db:"first_name" json:"first_name"`
	LastName         string          `db:"last_name" json:"last_name"`
	Status           CaregiverStatus `db:"status" json:"status"`
	LoginAttempts    int             `db:"login_attempts" json:"-"`
	LastLoginAttempt time.Time       `db:"last_login_attempt" json:"-"`
	LastLoginAt      *time.Time      `db:"last_login_at" json:"last_login_at,omitempty"`
}

func (c *Caregiver) FullName() string {
	return c.FirstName + " " + c.LastName
}
