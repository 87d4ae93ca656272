package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/convoly/chat-api/internal/ratelimit"
)

// StatsHandler serves the admission-throttle observability endpoint.
type StatsHandler struct {
	store *ratelimit.Store
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(store *ratelimit.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// StatsConfig echoes the throttle parameters in effect.
type StatsConfig struct {
	WindowMS        int64 `json:"window_ms"`
	MaxRequests     int   `json:"max_requests"`
	MaxRequestsChat int   `json:"max_requests_chat"`
}

// StatsResponse is the body of GET /rate-limit/stats.
type StatsResponse struct {
	Stats  ratelimit.Stats `json:"stats"`
	Config StatsConfig     `json:"config"`
}

// GetStats handles GET /rate-limit/stats. The route is admin-gated by
// middleware; the numbers describe this instance only. The body is part of
// the operator contract and is written bare, with stats and config at the
// top level, not inside the usual response envelope.
func (h *StatsHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	cfg := h.store.Config()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(StatsResponse{
		Stats: h.store.Stats(),
		Config: StatsConfig{
			WindowMS:        cfg.Window.Milliseconds(),
			MaxRequests:     cfg.MaxRequests,
			MaxRequestsChat: cfg.MaxRequestsChat,
		},
	})
}
