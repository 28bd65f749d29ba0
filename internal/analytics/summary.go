package analytics

import (
	"strconv"

	"github.com/studysphere/backend/internal/models"
)

// Summarize aggregates a user's tests, given oldest first. An empty history
// yields a zero summary with empty (non-nil) series.
func Summarize(tests []models.Test) models.Summary {
	s := models.Summary{
		TotalTests:      len(tests),
		ScoreHistory:    make([]models.ScorePoint, 0, len(tests)),
		DifficultyStats: []models.DifficultyStat{},
	}

	type bucket struct{ total, correct int }
	var order []models.Difficulty
	groups := map[models.Difficulty]*bucket{}

	for i, t := range tests {
		s.TotalQuestionsAttempted += t.TotalQuestions
		s.TotalCorrect += t.CorrectCount
		s.TotalWrong += t.WrongCount

		s.ScoreHistory = append(s.ScoreHistory, models.ScorePoint{
			Name:     "T" + strconv.Itoa(i+1),
			Accuracy: Accuracy(t.CorrectCount, t.TotalQuestions),
		})

		b, ok := groups[t.Difficulty]
		if !ok {
			b = &bucket{}
			groups[t.Difficulty] = b
			order = append(order, t.Difficulty)
		}
		b.total += t.TotalQuestions
		b.correct += t.CorrectCount
	}

	for _, d := range order {
		b := groups[d]
		s.DifficultyStats = append(s.DifficultyStats, models.DifficultyStat{
			Difficulty: d,
			Accuracy:   Accuracy(b.correct, b.total),
		})
	}

	s.OverallAccuracy = Accuracy(s.TotalCorrect, s.TotalQuestionsAttempted)
	s.XPPoints = XPForCorrect(s.TotalCorrect)
	return s
}
