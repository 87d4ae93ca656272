package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/convoly/chat-api/internal/request"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.ID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		id := rec.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("no request id on response")
		}
		if seen != id {
			t.Errorf("context id %q != response header %q", seen, id)
		}
	})

	t.Run("honors inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-id-42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "upstream-id-42" {
			t.Errorf("response id = %q, want upstream-id-42", got)
		}
	})

	t.Run("replaces oversized inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); len(got) > 128 {
			t.Errorf("oversized inbound id passed through (%d chars)", len(got))
		}
	})
}
