package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
)

const minPasswordLen = 6

var (
	ErrEmailTaken         = apperr.Validation("Email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrMissingFields      = apperr.Validation("Name, email, and password are required")
	ErrMissingLogin       = apperr.Validation("Email and password are required")
	ErrWeakPassword       = apperr.Validation("Password must be at least 6 characters")
	ErrUserNotFound       = apperr.NotFound("User not found")
)

// UserStore is the persistence the Identity Service needs.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type Service struct {
	store  UserStore
	tokens *Tokens
	log    *logger.Logger
	cost   int
}

func NewService(store UserStore, tokens *Tokens, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		log:    log.With("service", "IdentityService"),
		cost:   bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, *models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return "", nil, ErrMissingFields
	}
	if len(req.Password) < minPasswordLen {
		return "", nil, ErrWeakPassword
	}
	if len(s.tokens.secret) == 0 {
		return "", nil, ErrMisconfigured
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}

	user, err := s.store.CreateUser(ctx, name, email, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return "", nil, ErrEmailTaken
		}
		return "", nil, apperr.Persistence(err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)
	return token, user, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return "", nil, ErrMissingLogin
	}
	if len(s.tokens.secret) == 0 {
		return "", nil, ErrMisconfigured
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, errNoUser) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, apperr.Persistence(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, errNoUser) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return user, nil
}
