package generator

import (
	"context"
	"strings"
	"time"

	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/logger"
)

var (
	ErrEmptyQuestion = apperr.Validation("Question is required")
	ErrTutorFailed   = apperr.New(apperr.KindUpstream, "AI service error. Please check API key or usage.")
)

// Tutor answers free-form study questions.
type Tutor struct {
	llm     LLMClient
	timeout time.Duration
	log     *logger.Logger
}

func NewTutor(llm LLMClient, timeout time.Duration, log *logger.Logger) *Tutor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Tutor{llm: llm, timeout: timeout, log: log.With("service", "Tutor")}
}

func (t *Tutor) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.llm.Generate(callCtx, Prompt{
		System:      TutorSystemPrompt,
		User:        question,
		Temperature: tutorTemperature,
		MaxTokens:   tutorMaxTokens,
	})
	if err != nil {
		if ae := apperr.From(err); ae.Kind == apperr.KindMisconfigured {
			return "", ae
		}
		return "", ErrTutorFailed.Wrap(err)
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return "", ErrTutorFailed
	}
	return answer, nil
}
