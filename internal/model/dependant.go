package model

import "github.com/google/uuid"

// Dependant is the care recipient whose medications are tracked.
type Dependant struct {
	Base
	CaregiverID uuid.UUID `db:"caregiver_id" json:"caregiver_id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
}

// DisplayName returns the name used in grouped task views. Falls back to
// "Unknown" so a half-migrated record never breaks aggregation.
func (d *Dependant) DisplayName() string {
	if d.FirstName == "" && d.LastName == "" {
		return "Unknown"
	}
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

type CreateDependantRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Notes     string `json:"notes" binding:"max=1000"`
}

type UpdateDependantRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Notes     *string `json:"notes"`
}
