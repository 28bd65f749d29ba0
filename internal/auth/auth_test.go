package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*models.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

func (m *memStore) CreateUser(ctx context.Context, name, email, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, ErrEmailTaken
	}
	m.nextID++
	u := &models.User{ID: m.nextID, Name: name, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[email] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, errNoUser
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errNoUser
}

func newTestService(secret string) *Service {
	svc := NewService(newMemStore(), NewTokens(secret, 7*24*time.Hour), logger.Nop())
	svc.cost = bcrypt.MinCost
	return svc
}

func TestTokens_RoundTrip(t *testing.T) {
	tok := NewTokens("s3cret", time.Hour)
	signed, err := tok.Issue(17)
	require.NoError(t, err)

	uid, err := tok.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(17), uid)
}

func TestTokens_ExpiryIsSevenDays(t *testing.T) {
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := NewTokens("s3cret", 0)
	tok.now = func() time.Time { return issued }
	signed, err := tok.Issue(1)
	require.NoError(t, err)

	tok.now = func() time.Time { return issued.Add(7*24*time.Hour - time.Minute) }
	_, err = tok.Verify(signed)
	assert.NoError(t, err)

	tok.now = func() time.Time { return issued.Add(7*24*time.Hour + time.Minute) }
	_, err = tok.Verify(signed)
	assert.Error(t, err)
}

func TestTokens_Rejects(t *testing.T) {
	tok := NewTokens("s3cret", time.Hour)

	other, err := NewTokens("different", time.Hour).Issue(1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	noUserSigned, err := noUser.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, s := range map[string]string{
		"wrong secret": other,
		"alg none":     unsigned,
		"no user_id":   noUserSigned,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tok.Verify(s)
			assert.Error(t, err)
		})
	}
}

func TestTokens_MissingSecret(t *testing.T) {
	tok := NewTokens("", time.Hour)
	_, err := tok.Issue(1)
	assert.ErrorIs(t, err, ErrMisconfigured)
	_, err = tok.Verify("x")
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService("s3cret")
	ctx := context.Background()

	token, user, err := svc.Register(ctx, models.RegisterRequest{Name: " Ada ", Email: " Ada@Example.COM ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)

	_, _, err = svc.Register(ctx, models.RegisterRequest{Name: "Other", Email: "ADA@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, got, err := svc.Login(ctx, models.LoginRequest{Email: "ada@EXAMPLE.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, _, err = svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService("s3cret")
	tests := []struct {
		name string
		req  models.RegisterRequest
		want error
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.c", Password: "secret1"}, ErrMissingFields},
		{"missing email", models.RegisterRequest{Name: "A", Password: "secret1"}, ErrMissingFields},
		{"short password", models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "12345"}, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_MissingSecret(t *testing.T) {
	svc := newTestService("")
	_, _, err := svc.Register(context.Background(), models.RegisterRequest{Name: "A", Email: "a@b.c", Password: "secret1"})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindMisconfigured, ae.Kind)
}

func TestHandler_Flow(t *testing.T) {
	svc := newTestService("s3cret")
	h := NewHandler(svc, logger.Nop())

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.NewAuth(logger.Nop(), svc.tokens).Require)
	h.RegisterRoutes(api, protected)

	do := func(method, path, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do("POST", "/api/v1/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message":"Registration successful"`)
	assert.NotContains(t, rec.Body.String(), "secret1")

	rec = do("POST", "/api/v1/auth/register", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")

	rec = do("POST", "/api/v1/auth/login", `{"email":"ada@example.com","password":"nope-nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")

	token, err := svc.tokens.Issue(1)
	require.NoError(t, err)
	rec = do("GET", "/api/v1/auth/me", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ada@example.com"`)

	rec = do("GET", "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do("POST", "/api/v1/auth/login", `{bad json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
