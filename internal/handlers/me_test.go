package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/convoly/chat-api/internal/middleware"
	"github.com/convoly/chat-api/internal/models"
	"github.com/convoly/chat-api/internal/request"
)

func TestGetMe(t *testing.T) {
	t.Parallel()

	email := "user@example.com"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(request.WithIdentity(req.Context(), models.Identity{
		ID:    "user-1",
		Email: &email,
		Role:  models.RoleUser,
	}))
	rec := httptest.NewRecorder()
	GetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var envelope struct {
		Data MeResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.ID != "user-1" {
		t.Errorf("id = %q, want user-1", envelope.Data.ID)
	}
	if envelope.Data.Email == nil || *envelope.Data.Email != email {
		t.Errorf("email = %v, want %q", envelope.Data.Email, email)
	}
	if envelope.Data.Role != "user" {
		t.Errorf("role = %q, want user", envelope.Data.Role)
	}
}

func TestGetMeWithoutIdentity(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	GetMe(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	// The backstop 401 keeps the verifier's error body shape.
	var body middleware.AuthErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "UNAUTHENTICATED" {
		t.Errorf("code = %q, want UNAUTHENTICATED", body.Code)
	}
	if body.Message != "authentication required" {
		t.Errorf("message = %q, want generic message", body.Message)
	}
}
