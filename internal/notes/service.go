package notes

import (
	"context"
	"errors"
	"strings"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
)

var (
	ErrNotFound        = apperr.NotFound("Note not found")
	ErrContentRequired = apperr.Validation("Content is required")
	ErrMergeTooFew     = apperr.Validation("Select at least two notes to merge")
)

// NoteStore is the persistence the Note Store service needs.
type NoteStore interface {
	List(ctx context.Context, userID int64) ([]models.Note, error)
	Get(ctx context.Context, userID, id int64) (*models.Note, error)
	GetMany(ctx context.Context, userID int64, ids []int64) ([]models.Note, error)
	Create(ctx context.Context, userID int64, title, content string) (*models.Note, error)
	Update(ctx context.Context, userID, id int64, title, content string) (*models.Note, error)
	Delete(ctx context.Context, userID, id int64) error
}

type Service struct {
	store NoteStore
	log   *logger.Logger
}

func NewService(store NoteStore, log *logger.Logger) *Service {
	return &Service{store: store, log: log.With("service", "NoteStore")}
}

// storeErr keeps the package's own sentinels and hides everything else behind a persistence error.
func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return apperr.Persistence(err)
}

func (s *Service) List(ctx context.Context, userID int64) ([]models.Note, error) {
	notes, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*models.Note, error) {
	n, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}

func (s *Service) Create(ctx context.Context, userID int64, req models.NoteRequest) (*models.Note, error) {
	title := strings.TrimSpace(req.Title)
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrContentRequired
	}
	n, err := s.store.Create(ctx, userID, title, req.Content)
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Debug("note created", "user_id", userID, "note_id", n.ID)
	return n, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, req models.NoteRequest) (*models.Note, error) {
	title := strings.TrimSpace(req.Title)
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrContentRequired
	}
	n, err := s.store.Update(ctx, userID, id, title, req.Content)
	if err != nil {
		return nil, storeErr(err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// LoadOwned returns the caller's notes among ids in request order. Unknown,
// foreign and repeated ids are skipped.
func (s *Service) LoadOwned(ctx context.Context, userID int64, ids []int64) ([]models.Note, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.store.GetMany(ctx, userID, ids)
	if err != nil {
		return nil, storeErr(err)
	}
	byID := make(map[int64]models.Note, len(found))
	for _, n := range found {
		if n.UserID == userID {
			byID[n.ID] = n
		}
	}
	out := make([]models.Note, 0, len(byID))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Merge creates one new note out of two or more owned notes. Sources are kept.
func (s *Service) Merge(ctx context.Context, userID int64, ids []int64) (*models.Note, error) {
	ids = dedupe(ids)
	if len(ids) < 2 {
		return nil, ErrMergeTooFew
	}
	sources, err := s.LoadOwned(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if len(sources) != len(ids) {
		return nil, ErrNotFound
	}

	n, err := s.store.Create(ctx, userID, MergeTitle(sources), MergeContent(sources))
	if err != nil {
		return nil, storeErr(err)
	}
	s.log.Info("notes merged", "user_id", userID, "note_id", n.ID, "sources", len(sources))
	return n, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
