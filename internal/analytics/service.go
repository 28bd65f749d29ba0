package analytics

import (
	"context"
	"time"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
)

// TestLister returns a user's tests oldest first.
type TestLister interface {
	List(ctx context.Context, userID int64) ([]models.Test, error)
}

type Service struct {
	tests TestLister
	now   func() time.Time
	log   *logger.Logger
}

func NewService(tests TestLister, log *logger.Logger) *Service {
	return &Service{tests: tests, now: time.Now, log: log.With("service", "Analytics")}
}

func (s *Service) load(ctx context.Context, userID int64) ([]models.Test, error) {
	tests, err := s.tests.List(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return tests, nil
}

func (s *Service) Summary(ctx context.Context, userID int64) (models.Summary, error) {
	tests, err := s.load(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(tests), nil
}

func (s *Service) Streak(ctx context.Context, userID int64) (models.Streak, error) {
	tests, err := s.load(ctx, userID)
	if err != nil {
		return models.Streak{}, err
	}
	return ComputeStreak(tests, s.now()), nil
}
