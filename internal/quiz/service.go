package quiz

import (
	"context"
	"errors"
	"strings"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/generator"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
	"github.com/studysphere/backend/internal/notes"
)

var (
	ErrNoNotesSelected   = apperr.Validation("Please select at least one note.")
	ErrNotesNotFound     = apperr.Validation("Selected notes not found for this user.")
	ErrTextRequired      = apperr.Validation("Text is required")
	ErrInvalidDifficulty = apperr.Validation("Invalid difficulty")
	ErrTestNotFound      = apperr.NotFound("Test not found")
)

// NoteLoader resolves note ids to the caller's notes, in request order.
type NoteLoader interface {
	LoadOwned(ctx context.Context, userID int64, ids []int64) ([]models.Note, error)
}

type TestStore interface {
	Create(ctx context.Context, t *models.Test) error
	List(ctx context.Context, userID int64) ([]models.Test, error)
	Get(ctx context.Context, userID, id int64) (*models.Test, error)
}

type Service struct {
	notes     NoteLoader
	store     TestStore
	generator *generator.Generator
	explainer *generator.Explainer
	tutor     *generator.Tutor
	log       *logger.Logger
}

func NewService(
	noteLoader NoteLoader,
	store TestStore,
	gen *generator.Generator,
	explainer *generator.Explainer,
	tutor *generator.Tutor,
	log *logger.Logger,
) *Service {
	return &Service{
		notes:     noteLoader,
		store:     store,
		generator: gen,
		explainer: explainer,
		tutor:     tutor,
		log:       log.With("service", "Quiz"),
	}
}

func requestDifficulty(s string) models.Difficulty {
	d, ok := models.ParseDifficulty(s)
	if !ok {
		return models.DifficultyEasy
	}
	return d
}

func generateResponse(d models.Difficulty, res *generator.Result) *models.GenerateResponse {
	resp := &models.GenerateResponse{
		Success:        true,
		Difficulty:     d,
		QuestionCount:  res.Count,
		TotalQuestions: len(res.Questions),
		Questions:      res.Questions,
	}
	if res.Degraded {
		resp.Degraded = true
		resp.Warning = generator.DegradedWarning
	}
	return resp
}

// GenerateFromNotes builds a quiz out of the caller's selected notes.
func (s *Service) GenerateFromNotes(ctx context.Context, userID int64, req models.GenerateRequest) (*models.GenerateResponse, error) {
	if len(req.NoteIDs) == 0 {
		return nil, ErrNoNotesSelected
	}
	selected, err := s.notes.LoadOwned(ctx, userID, req.NoteIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrNotesNotFound
	}

	d := requestDifficulty(req.Difficulty)
	res, err := s.generator.Generate(ctx, generator.Source{
		Text:       notes.SourceText(selected),
		Difficulty: d,
		Count:      req.Count(),
		Path:       generator.PathNotes,
	})
	if err != nil {
		return nil, err
	}
	return generateResponse(d, res), nil
}

// GenerateFromText builds a quiz from pasted or OCR'd text.
func (s *Service) GenerateFromText(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrTextRequired
	}
	d := requestDifficulty(req.Difficulty)
	res, err := s.generator.Generate(ctx, generator.Source{
		Text:       req.Text,
		Difficulty: d,
		Count:      req.Count(),
		Path:       generator.PathText,
	})
	if err != nil {
		return nil, err
	}
	return generateResponse(d, res), nil
}

// Evaluate grades a submission, explains each question best-effort and
// stores the attempt as one immutable test record.
func (s *Service) Evaluate(ctx context.Context, userID int64, req models.EvaluateRequest) (*models.EvaluateResponse, error) {
	graded, err := Grade(req.Questions, req.UserAnswers)
	if err != nil {
		return nil, err
	}
	d, ok := models.ParseDifficulty(req.Difficulty)
	if !ok {
		return nil, ErrInvalidDifficulty
	}

	graded.Attach(s.explainer.ExplainAll(ctx, graded.Questions))

	t := &models.Test{
		UserID:             userID,
		Difficulty:         d,
		TotalQuestions:     graded.Total,
		CorrectCount:       graded.CorrectCount,
		WrongCount:         graded.WrongCount,
		Score:              graded.Score,
		Accuracy:           graded.Accuracy,
		XPEarned:           graded.XPEarned,
		TimeUsedSeconds:    req.TimeUsedSeconds,
		NoteIDs:            req.SelectedNoteIDs,
		PerQuestionResults: graded.Results,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, apperr.Persistence(err)
	}

	s.log.Info("test graded",
		"user_id", userID,
		"test_id", t.ID,
		"correct", graded.CorrectCount,
		"total", graded.Total,
		"difficulty", d,
	)
	return &models.EvaluateResponse{
		Success:            true,
		TestID:             t.ID,
		Score:              graded.Score,
		TotalQuestions:     graded.Total,
		CorrectCount:       graded.CorrectCount,
		WrongCount:         graded.WrongCount,
		Accuracy:           graded.Accuracy,
		XPEarned:           graded.XPEarned,
		TimeUsedSeconds:    req.TimeUsedSeconds,
		PerQuestionResults: graded.Results,
	}, nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]models.Test, error) {
	tests, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if tests == nil {
		tests = []models.Test{}
	}
	return tests, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*models.Test, error) {
	t, err := s.store.Get(ctx, userID, id)
	if errors.Is(err, ErrTestNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return t, nil
}

func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	return s.tutor.Ask(ctx, question)
}
