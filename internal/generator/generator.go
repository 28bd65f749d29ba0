package generator

import (
	"context"
	"strings"
	"time"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
)

// Path identifies where quiz source text came from. The two paths differ in
// count limits, option caps and degraded-mode behavior.
type Path int

const (
	PathNotes Path = iota
	PathText
)

func (p Path) String() string {
	if p == PathText {
		return "text"
	}
	return "notes"
}

const (
	MinSourceLength = 30
	DefaultCount    = 5
	MaxNotesCount   = 20
	MaxTextCount    = 30
	MaxOptions      = 4
)

var ErrInsufficientInput = apperr.New(apperr.KindUnusableContent,
	"Not enough text to generate questions. Please add more content or upload a clearer / longer PDF.")

// Source is one generation request.
type Source struct {
	Text       string
	Difficulty models.Difficulty
	Count      int
	Path       Path
}

// Result is what Generate produced. Degraded is set when the model call failed
// and the fallback question set was substituted.
type Result struct {
	Questions []models.Question
	Count     int
	Degraded  bool
}

// FallbackQuestion is served on the notes path when the model cannot be reached,
// so the quiz screen still has something to render.
var FallbackQuestion = models.Question{
	Question: "What does DBMS stand for?",
	Options: []string{
		"Database Management System",
		"Data Backup Management System",
		"Dynamic Buffer Management Service",
		"Disk Based Management Software",
	},
	CorrectOptionIndex: 0,
}

// DegradedWarning accompanies a fallback result.
const DegradedWarning = "The AI service is unavailable right now, so a sample question was returned instead."

// Generator turns source text into normalized questions with one model call.
type Generator struct {
	llm     LLMClient
	timeout time.Duration
	log     *logger.Logger
}

func NewGenerator(llm LLMClient, timeout time.Duration, log *logger.Logger) *Generator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{llm: llm, timeout: timeout, log: log.With("service", "QuizGenerator")}
}

// ClampCount applies the default and the per-path bounds.
func ClampCount(n int, path Path) int {
	max := MaxNotesCount
	if path == PathText {
		max = MaxTextCount
	}
	if n <= 0 {
		n = DefaultCount
	}
	if n > max {
		n = max
	}
	return n
}

func (g *Generator) Generate(ctx context.Context, src Source) (*Result, error) {
	text := strings.TrimSpace(src.Text)
	if len([]rune(text)) < MinSourceLength {
		return nil, ErrInsufficientInput
	}

	difficulty := src.Difficulty
	if !models.ValidDifficulties[difficulty] {
		difficulty = models.DifficultyEasy
	}
	count := ClampCount(src.Count, src.Path)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.llm.Generate(callCtx, Prompt{
		User:        BuildQuizPrompt(text, difficulty, count, src.Path),
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})
	if err != nil {
		if ae := apperr.From(err); ae.Kind == apperr.KindMisconfigured {
			return nil, ae
		}
		if src.Path == PathNotes && ctx.Err() == nil {
			g.log.Warn("model call failed; serving fallback question", "error", err.Error())
			return &Result{Questions: []models.Question{FallbackQuestion}, Count: count, Degraded: true}, nil
		}
		return nil, apperr.Wrap(apperr.KindUpstream, "Failed to generate test", err)
	}

	opts := NormalizeOptions{Count: count}
	if src.Path == PathNotes {
		opts.MaxOptions = MaxOptions
	}
	questions, err := Normalize(resp.Content, opts)
	if err != nil {
		g.log.Warn("model output rejected", "error", err.Error(), "path", src.Path)
		return nil, err
	}
	for _, f := range InspectQuestions(questions) {
		g.log.Warn("quiz quality", "finding", f)
	}

	g.log.Info("quiz generated",
		"requested", count,
		"returned", len(questions),
		"difficulty", difficulty,
		"usage_prompt", resp.PromptTokens,
		"usage_output", resp.OutputTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Result{Questions: questions, Count: count}, nil
}
