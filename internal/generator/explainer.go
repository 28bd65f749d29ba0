package generator

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/models"
)

// Explainer fetches a short natural-language explanation per question.
// Every failure degrades to a nil explanation for that question only.
type Explainer struct {
	llm         LLMClient
	timeout     time.Duration
	concurrency int
	log         *logger.Logger
}

func NewExplainer(llm LLMClient, timeout time.Duration, concurrency int, log *logger.Logger) *Explainer {
	if concurrency < 1 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Explainer{llm: llm, timeout: timeout, concurrency: concurrency, log: log.With("service", "Explainer")}
}

// ExplainAll returns one entry per question, in order. It waits for every call
// to finish, at most e.concurrency at a time.
func (e *Explainer) ExplainAll(ctx context.Context, qs []models.Question) []*string {
	out := make([]*string, len(qs))
	if _, ok := e.llm.(UnconfiguredClient); ok {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range qs {
		g.Go(func() error {
			out[i] = e.Explain(ctx, qs[i])
			return nil
		})
	}
	g.Wait()
	return out
}

// Explain makes one best-effort call. A nil result means no explanation is available.
func (e *Explainer) Explain(ctx context.Context, q models.Question) *string {
	if len(q.Options) == 0 {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.llm.Generate(callCtx, Prompt{
		User:        BuildExplanationPrompt(q),
		Temperature: explanationTemperature,
		MaxTokens:   explanationMaxTokens,
	})
	if err != nil {
		e.log.Warn("explanation unavailable", "error", err.Error())
		return nil
	}

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return nil
	}
	return &text
}
