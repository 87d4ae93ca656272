package database

import (
	"context"

	"github.com/convoly/chat-api/internal/models"
)

// ProfileStore defines the interface for profile lookups.
// This interface enables better testability by allowing mock implementations.
type ProfileStore interface {
	GetBySubjectID(ctx context.Context, subjectID string) (*models.Profile, error)
}

// Ensure concrete types implement the interfaces
var _ ProfileStore = (*ProfileRepository)(nil)
