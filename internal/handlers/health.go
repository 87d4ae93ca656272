package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/convoly/chat-api/internal/database"
	"github.com/convoly/chat-api/internal/telemetry"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	db   *database.DB
	sink telemetry.Pinger
}

// NewHealthChecker creates a new health checker. sink may be nil when no
// telemetry sink is configured.
func NewHealthChecker(db *database.DB, sink telemetry.Pinger) *HealthChecker {
	return &HealthChecker{db: db, sink: sink}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. The basic mode only reports
// that the process is serving; ?mode=extended probes the dependencies.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		if err := h.checkDatabase(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}

		if h.sink != nil {
			// A dead sink degrades telemetry only; admission keeps working,
			// so it never flips the overall status.
			if err := h.checkSink(r.Context()); err != nil {
				checks["telemetry_sink"] = "unhealthy: " + err.Error()
			} else {
				checks["telemetry_sink"] = "healthy"
			}
		}

		response.Checks = checks
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return h.db.PingContext(ctx)
}

func (h *HealthChecker) checkSink(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.sink.Ping(ctx)
}
