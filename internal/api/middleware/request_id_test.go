package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nimbusview/nimbus/internal/api/middleware"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/screen", http.NoBody))

	assert.True(t, strings.HasPrefix(seen, "req_"), "got %q", seen)
	assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_CallerIDs(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		kept     bool
	}{
		{"plain", "kiosk-lobby-000123", true},
		{"uuid", "0b7f8a5e-3c2d-4f0e-9a51-7d6c1b2e4f90", true},
		{"at limit", strings.Repeat("a", 128), true},
		{"too long", strings.Repeat("a", 129), false},
		{"space", "two words", false},
		{"control character", "id\x07bell", false},
		{"non-ASCII", "régen", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/screen", http.NoBody)
			req.Header.Set(middleware.RequestIDHeader, tt.incoming)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if tt.kept {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
				assert.True(t, strings.HasPrefix(seen, "req_"))
			}
			assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestGetRequestID_ReturnsEmptyStringForMissingContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/screen", http.NoBody)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestID_UniqueIDs(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/screen", http.NoBody))

		id := w.Header().Get(middleware.RequestIDHeader)
		assert.False(t, ids[id], "duplicate request ID generated: %s", id)
		ids[id] = true
	}
}
