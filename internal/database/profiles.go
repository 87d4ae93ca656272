package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/convoly/chat-api/internal/models"
)

// ErrProfileNotFound is returned when no profile exists for a subject id.
// Callers must be able to distinguish this from a transient database failure:
// for a cryptographically verified token it indicates a data-integrity
// problem, not a bad credential.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetBySubjectID retrieves the profile for a token subject id.
// Returns ErrProfileNotFound when no row exists.
func (r *ProfileRepository) GetBySubjectID(ctx context.Context, subjectID string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `
		SELECT id, subject_id, email, role, created_at, updated_at
		FROM profiles
		WHERE subject_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, subjectID).Scan(
		&profile.ID,
		&profile.SubjectID,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile for subject %q: %w", subjectID, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Create inserts a new profile. Used by the signup webhook when the auth
// provider reports a new account.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.Role == "" {
		profile.Role = models.RoleUser
	}

	query := `
		INSERT INTO profiles (id, subject_id, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.SubjectID,
		profile.Email,
		profile.Role,
		now,
		now,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Conflict on subject_id: the profile already exists, treat as a no-op.
			return nil
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}
