package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
)

type fakeVerifier struct {
	userID int64
	err    error
}

func (f fakeVerifier) Verify(token string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.userID, nil
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(42), uid)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthRequire(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier fakeVerifier
		status   int
		message  string
	}{
		{"missing header", "", fakeVerifier{userID: 42}, 401, "No token provided"},
		{"wrong scheme", "Basic abc", fakeVerifier{userID: 42}, 401, "No token provided"},
		{"bad token", "Bearer nope", fakeVerifier{err: errors.New("signature invalid")}, 401, "Invalid token"},
		{"no secret", "Bearer x", fakeVerifier{err: apperr.Misconfigured("Server misconfigured")}, 500, "Server misconfigured"},
		{"ok", "bearer good", fakeVerifier{userID: 42}, 204, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuth(logger.Nop(), tt.verifier).Require(echoUser(t))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				assert.Contains(t, rec.Body.String(), `"success":false`)
				assert.Contains(t, rec.Body.String(), tt.message)
			}
		})
	}
}

func TestRateLimiter_PerCaller(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("user:1"))
	assert.True(t, rl.Allow("user:1"))
	assert.False(t, rl.Allow("user:1"))
	assert.True(t, rl.Allow("user:2"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/ask-ai", nil)
		req = req.WithContext(WithUserID(req.Context(), 7))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call())
	assert.Equal(t, http.StatusTooManyRequests, call())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := logger.FromZap(zap.New(core))

	r := mux.NewRouter()
	r.Use(RequestLogger(log))
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(NewAuth(logger.Nop(), fakeVerifier{userID: 9}).Require)
	protected.HandleFunc("/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/notes/5", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/notes/{id}", fields["path"])
	assert.Equal(t, int64(404), fields["status"])
	assert.Equal(t, int64(9), fields["user_id"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), fields["request_id"])
}
