package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/convoly/chat-api/internal/logger"
	"github.com/convoly/chat-api/internal/models"
)

// ProfileCreator is the slice of the profile store the webhook needs.
type ProfileCreator interface {
	Create(ctx context.Context, profile *models.Profile) error
}

// WebhookHandler receives account lifecycle notifications from the auth
// provider.
type WebhookHandler struct {
	profiles ProfileCreator
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(profiles ProfileCreator, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{profiles: profiles, logger: logger}
}

// SignupEvent is the payload of the signup webhook.
type SignupEvent struct {
	SubjectID string  `json:"subject_id"`
	Email     *string `json:"email,omitempty"`
}

// Signup handles POST /api/v1/webhooks/signup. It provisions a profile row
// for a newly created account so later token verifications can resolve a
// role. Replays are no-ops.
func (h *WebhookHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var event SignupEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if event.SubjectID == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "subject_id is required")
		return
	}

	profile := &models.Profile{
		SubjectID: event.SubjectID,
		Email:     event.Email,
		Role:      models.RoleUser,
	}
	if err := h.profiles.Create(r.Context(), profile); err != nil {
		h.logger.Error("signup_profile_create_failed",
			zap.String("subject", logpkg.SanitizeSubject(event.SubjectID)),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "failed to provision profile")
		return
	}

	h.logger.Info("signup_profile_created",
		zap.String("subject", logpkg.SanitizeSubject(event.SubjectID)),
	)
	respondJSON(w, http.StatusCreated, map[string]string{
		"subject_id": profile.SubjectID,
		"role":       string(profile.Role),
	})
}
