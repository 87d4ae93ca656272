package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a user profile record in the profile store. The gateway only
// reads SubjectID, Email and Role; the rest belongs to the product's CRUD
// surface.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	SubjectID string    `json:"subject_id"`
	Email     *string   `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
