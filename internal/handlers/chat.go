package handlers

import (
	"encoding/json"
	"net/http"
)

// ChatRequest is the body of POST /api/v1/ai/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// PostChat handles POST /api/v1/ai/chat. The route exists so the stricter
// chat admission pool has a real surface to protect; the relay to the model
// provider is deployed separately and proxied in front of this service.
func PostChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "message is required")
		return
	}
	respondJSONError(w, http.StatusNotImplemented, "Not Implemented", "chat relay is not enabled on this instance")
}
