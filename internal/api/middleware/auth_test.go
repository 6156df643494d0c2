package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/api/middleware"
	"github.com/nimbusview/nimbus/internal/auth"
)

const testSigningKey = "test-secret-key-for-testing-only"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func issueToken(t *testing.T, scopes ...string) string {
	t.Helper()

	token, _, err := auth.NewTokenService(auth.Config{SigningKey: testSigningKey}).
		Issue("kiosk-lobby", scopes, time.Hour)
	require.NoError(t, err)
	return token
}

func TestRequireScope_MissingAuthorizationHeader(t *testing.T) {
	tokens := auth.NewTokenService(auth.Config{SigningKey: testSigningKey})
	handler := middleware.RequireScope(tokens, auth.ScopeControl)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/screen/refresh", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestRequireScope_InvalidAuthorizationFormat(t *testing.T) {
	tokens := auth.NewTokenService(auth.Config{SigningKey: testSigningKey})
	handler := middleware.RequireScope(tokens, auth.ScopeControl)(okHandler())

	tests := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "token123"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase no space", "bearer"},
		{"empty bearer", "Bearer "},
		{"just bearer", "Bearer"},
		{"garbage token", "Bearer invalid.jwt.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/screen/refresh", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireScope_ValidToken(t *testing.T) {
	tokens := auth.NewTokenService(auth.Config{SigningKey: testSigningKey})

	var subject string
	handler := middleware.RequireScope(tokens, auth.ScopeControl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = middleware.GetSubject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := issueToken(t, auth.ScopeControl)

	for _, prefix := range []string{"Bearer ", "bearer ", "BEARER "} {
		t.Run(prefix, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/screen/refresh", http.NoBody)
			req.Header.Set("Authorization", prefix+token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "kiosk-lobby", subject)
		})
	}
}

func TestRequireScope_WrongScope(t *testing.T) {
	tokens := auth.NewTokenService(auth.Config{SigningKey: testSigningKey})
	handler := middleware.RequireScope(tokens, auth.ScopeControl)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/screen/refresh", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, auth.ScopeDiagnostics))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.ScopeControl)
}

func TestRequireScope_DisabledWithoutTokenService(t *testing.T) {
	handler := middleware.RequireScope(nil, auth.ScopeControl)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/v1/screen/refresh", http.NoBody)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSubject_NoAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	assert.Empty(t, middleware.GetSubject(req.Context()))
}
