package quiz

import (
	"github.com/studysphere/backend/internal/analytics"
	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/models"
)

var ErrInvalidPayload = apperr.Validation("Invalid questions / answers payload")

// Graded is the outcome of one grading pass, before explanations are attached.
type Graded struct {
	Questions    []models.Question
	Results      []models.PerQuestionResult
	Total        int
	CorrectCount int
	WrongCount   int
	Score        int
	Accuracy     int
	XPEarned     int
}

// Grade compares each answer with its question's correct index. Both slices
// must be non-empty and the same length. Unanswered (-1) never matches.
func Grade(questions []models.GradeQuestion, answers []models.Index) (*Graded, error) {
	if len(questions) == 0 || len(questions) != len(answers) {
		return nil, ErrInvalidPayload
	}

	g := &Graded{
		Questions: make([]models.Question, len(questions)),
		Results:   make([]models.PerQuestionResult, len(questions)),
		Total:     len(questions),
	}
	for i, q := range questions {
		correct := int(q.CorrectOptionIndex)
		if correct < 0 || correct >= len(q.Options) {
			correct = 0
		}
		answer := int(answers[i])
		if answer < 0 {
			answer = models.Unanswered
		}
		isCorrect := answer == correct && len(q.Options) > 0
		if isCorrect {
			g.CorrectCount++
		}

		options := []string(q.Options)
		if options == nil {
			options = []string{}
		}
		g.Questions[i] = models.Question{Question: q.Question, Options: options, CorrectOptionIndex: correct}
		g.Results[i] = models.PerQuestionResult{
			Question:           q.Question,
			Options:            options,
			CorrectOptionIndex: correct,
			UserOptionIndex:    answer,
			IsCorrect:          isCorrect,
		}
	}

	g.WrongCount = g.Total - g.CorrectCount
	g.Score = g.CorrectCount
	g.Accuracy = analytics.Accuracy(g.CorrectCount, g.Total)
	g.XPEarned = analytics.XPForCorrect(g.CorrectCount)
	return g, nil
}

// Attach copies explanations onto the per-question results. A nil entry stays null.
func (g *Graded) Attach(explanations []*string) {
	for i := range g.Results {
		if i < len(explanations) {
			g.Results[i].Explanation = explanations[i]
		}
	}
}
