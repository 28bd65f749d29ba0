package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/generator"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/models"
)

func idx(v int) models.Index { return models.Index(v) }

func gq(correct int, options ...string) models.GradeQuestion {
	return models.GradeQuestion{Question: "q", Options: options, CorrectOptionIndex: idx(correct)}
}

func TestGradeRejectsBadPayload(t *testing.T) {
	_, err := Grade(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = Grade([]models.GradeQuestion{gq(0, "a", "b")}, []models.Index{0, 1})
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, http.StatusBadRequest, apperr.From(err).Kind.Status())
}

func TestGrade(t *testing.T) {
	questions := []models.GradeQuestion{
		gq(1, "a", "b", "c"),
		gq(2, "a", "b", "c"),
		gq(9, "a", "b"), // out of range, coerced to 0
		gq(0, "a", "b"),
	}
	answers := []models.Index{1, models.Unanswered, 0, 1}

	g, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Total)
	assert.Equal(t, 2, g.CorrectCount)
	assert.Equal(t, 2, g.WrongCount)
	assert.Equal(t, g.CorrectCount, g.Score)
	assert.Equal(t, 50, g.Accuracy)
	assert.Equal(t, 20, g.XPEarned)

	assert.True(t, g.Results[0].IsCorrect)
	assert.False(t, g.Results[1].IsCorrect)
	assert.Equal(t, models.Unanswered, g.Results[1].UserOptionIndex)
	assert.True(t, g.Results[2].IsCorrect)
	assert.Equal(t, 0, g.Results[2].CorrectOptionIndex)
	assert.Equal(t, 0, g.Questions[2].CorrectOptionIndex)
	assert.False(t, g.Results[3].IsCorrect)
	for _, r := range g.Results {
		assert.Nil(t, r.Explanation)
	}
}

func TestGradeUnansweredNeverCorrect(t *testing.T) {
	var answers []models.Index
	require.NoError(t, json.Unmarshal([]byte(`[null, "2", 1.5, -7]`), &answers))

	questions := []models.GradeQuestion{gq(0, "a", "b"), gq(0, "a", "b"), gq(0, "a", "b"), gq(0, "a", "b")}
	g, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 0, g.CorrectCount)
	assert.Equal(t, 0, g.Accuracy)
}

type memTests struct {
	mu     sync.Mutex
	tests  []models.Test
	nextID int64
	err    error
}

func (m *memTests) Create(_ context.Context, t *models.Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Date(2025, 1, 1, 0, 0, int(m.nextID), 0, time.UTC)
	m.tests = append(m.tests, *t)
	return nil
}

func (m *memTests) List(_ context.Context, userID int64) ([]models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Test
	for _, t := range m.tests {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTests) Get(_ context.Context, userID, id int64) (*models.Test, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tests {
		if t.ID == id && t.UserID == userID {
			return &t, nil
		}
	}
	return nil, ErrTestNotFound
}

type memNotes map[int64]models.Note

func (m memNotes) LoadOwned(_ context.Context, userID int64, ids []int64) ([]models.Note, error) {
	var out []models.Note
	for _, id := range ids {
		if n, ok := m[id]; ok && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

type failingLLM struct{}

func (failingLLM) Generate(context.Context, generator.Prompt) (*generator.LLMResponse, error) {
	return nil, errors.New("upstream 503")
}

func newService(llm generator.LLMClient, store *memTests) *Service {
	log := logger.Nop()
	n := memNotes{
		1: {ID: 1, UserID: 7, Title: "Cells", Content: "The mitochondria is the powerhouse of the cell and makes ATP."},
		2: {ID: 2, UserID: 8, Title: "Other", Content: "Someone else's note about plate tectonics and the crust."},
	}
	return NewService(n, store,
		generator.NewGenerator(llm, time.Second, log),
		generator.NewExplainer(llm, time.Second, 4, log),
		generator.NewTutor(llm, time.Second, log),
		log,
	)
}

func TestGenerateFromNotes(t *testing.T) {
	s := newService(generator.NewMockClient(), &memTests{})
	three := 3

	_, err := s.GenerateFromNotes(context.Background(), 7, models.GenerateRequest{})
	assert.ErrorIs(t, err, ErrNoNotesSelected)

	_, err = s.GenerateFromNotes(context.Background(), 7, models.GenerateRequest{NoteIDs: []int64{2, 99}})
	assert.ErrorIs(t, err, ErrNotesNotFound)

	resp, err := s.GenerateFromNotes(context.Background(), 7, models.GenerateRequest{
		NoteIDs: []int64{1}, Difficulty: "HARD", QuestionCount: &three,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyHard, resp.Difficulty)
	assert.Equal(t, 3, resp.QuestionCount)
	assert.Equal(t, 3, resp.TotalQuestions)
	assert.False(t, resp.Degraded)
	for _, q := range resp.Questions {
		assert.LessOrEqual(t, len(q.Options), generator.MaxOptions)
	}
}

func TestGenerateFromNotesDegraded(t *testing.T) {
	s := newService(failingLLM{}, &memTests{})
	resp, err := s.GenerateFromNotes(context.Background(), 7, models.GenerateRequest{NoteIDs: []int64{1}, Difficulty: "bogus"})
	require.NoError(t, err)
	assert.True(t, resp.Degraded)
	assert.Equal(t, generator.DegradedWarning, resp.Warning)
	assert.Equal(t, models.DifficultyEasy, resp.Difficulty)
	assert.Equal(t, []models.Question{generator.FallbackQuestion}, resp.Questions)
}

func TestGenerateFromText(t *testing.T) {
	s := newService(generator.NewMockClient(), &memTests{})
	n := 40

	_, err := s.GenerateFromText(context.Background(), models.GenerateRequest{Text: "  "})
	assert.ErrorIs(t, err, ErrTextRequired)

	_, err = s.GenerateFromText(context.Background(), models.GenerateRequest{Text: "short text"})
	assert.ErrorIs(t, err, generator.ErrInsufficientInput)

	resp, err := s.GenerateFromText(context.Background(), models.GenerateRequest{
		Text:         strings.Repeat("Enzymes lower activation energy. ", 4),
		NumQuestions: &n,
	})
	require.NoError(t, err)
	assert.Equal(t, generator.MaxTextCount, resp.QuestionCount)
	assert.Len(t, resp.Questions, generator.MaxTextCount)

	// the text path never substitutes a fallback
	_, err = newService(failingLLM{}, &memTests{}).GenerateFromText(context.Background(), models.GenerateRequest{
		Text: strings.Repeat("Enzymes lower activation energy. ", 4),
	})
	assert.Equal(t, apperr.KindUpstream, apperr.From(err).Kind)
}

func TestEvaluatePersistsOnce(t *testing.T) {
	store := &memTests{}
	s := newService(generator.NewMockClient(), store)
	elapsed := 95

	resp, err := s.Evaluate(context.Background(), 7, models.EvaluateRequest{
		Questions:       []models.GradeQuestion{gq(0, "a", "b"), gq(1, "a", "b")},
		UserAnswers:     []models.Index{0, 0},
		Difficulty:      "Medium",
		TimeUsedSeconds: &elapsed,
		SelectedNoteIDs: []int64{1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TestID)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 50, resp.Accuracy)
	assert.Equal(t, 10, resp.XPEarned)
	for _, r := range resp.PerQuestionResults {
		require.NotNil(t, r.Explanation)
		assert.Contains(t, *r.Explanation, "[Mock]")
	}

	require.Len(t, store.tests, 1)
	saved := store.tests[0]
	assert.Equal(t, models.DifficultyMedium, saved.Difficulty)
	assert.Equal(t, []int64{1}, saved.NoteIDs)
	assert.Equal(t, 95, *saved.TimeUsedSeconds)
}

func TestEvaluateWithoutProviderStillGrades(t *testing.T) {
	store := &memTests{}
	s := newService(generator.UnconfiguredClient{}, store)

	resp, err := s.Evaluate(context.Background(), 7, models.EvaluateRequest{
		Questions:   []models.GradeQuestion{gq(0, "a", "b")},
		UserAnswers: []models.Index{0},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Accuracy)
	assert.Nil(t, resp.PerQuestionResults[0].Explanation)
	assert.Equal(t, models.DifficultyEasy, store.tests[0].Difficulty)
}

func TestEvaluateRejections(t *testing.T) {
	store := &memTests{}
	s := newService(generator.NewMockClient(), store)

	_, err := s.Evaluate(context.Background(), 7, models.EvaluateRequest{
		Questions:   []models.GradeQuestion{gq(0, "a", "b")},
		UserAnswers: []models.Index{},
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = s.Evaluate(context.Background(), 7, models.EvaluateRequest{
		Questions:   []models.GradeQuestion{gq(0, "a", "b")},
		UserAnswers: []models.Index{0},
		Difficulty:  "extreme",
	})
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	assert.Empty(t, store.tests)

	store.err = errors.New("insert failed")
	_, err = s.Evaluate(context.Background(), 7, models.EvaluateRequest{
		Questions:   []models.GradeQuestion{gq(0, "a", "b")},
		UserAnswers: []models.Index{0},
	})
	assert.Equal(t, apperr.KindPersistence, apperr.From(err).Kind)
}

func router(s *Service, userID int64) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	NewHandler(s, logger.Nop()).RegisterRoutes(r, r)
	return r
}

func call(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewBufferString(body)))
	return rec
}

func TestHandlerFlow(t *testing.T) {
	store := &memTests{}
	r := router(newService(generator.NewMockClient(), store), 7)

	rec := call(t, r, "POST", "/tests/generate", `{"noteIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Please select at least one note."}`, rec.Body.String())

	rec = call(t, r, "POST", "/tests/generate", `{"noteIds":[1],"numQuestions":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var gen models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	assert.Len(t, gen.Questions, 2)
	assert.NotContains(t, rec.Body.String(), "degraded")

	rec = call(t, r, "POST", "/tests/evaluate", `{"questions":[{"question":"q","options":["a","b"],"correctOptionIndex":1}],"userAnswers":[1],"difficulty":"hard"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var eval models.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, 100, eval.Accuracy)

	rec = call(t, r, "POST", "/tests/evaluate", `{"questions":[],"userAnswers":[]}`)
	assert.JSONEq(t, `{"success":false,"message":"Invalid questions / answers payload"}`, rec.Body.String())

	rec = call(t, r, "GET", "/tests/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hist models.TestHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist.Tests, 1)

	rec = call(t, r, "GET", "/tests/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router(newService(generator.NewMockClient(), store), 8), "GET", "/tests/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Test not found"}`, rec.Body.String())

	rec = call(t, r, "POST", "/ask-ai", `{"question":"What is ATP?"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, r, "POST", "/ask-ai", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateNumericOptions(t *testing.T) {
	store := &memTests{}
	r := router(newService(generator.NewMockClient(), store), 7)

	rec := call(t, r, "POST", "/tests/evaluate", `{"questions":[{"question":"2+2?","options":[3,4,5,6],"correctOptionIndex":1}],"userAnswers":[1]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var eval models.EvaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, 1, eval.CorrectCount)
	assert.Equal(t, []string{"3", "4", "5", "6"}, eval.PerQuestionResults[0].Options)
	assert.Contains(t, rec.Body.String(), `"aiExplanation":`)
}
