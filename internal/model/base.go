package model

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and bookkeeping columns shared by persisted
// entities. Deletes in this schema are hard deletes, so there is no
// tombstone column.
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
