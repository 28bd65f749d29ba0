package generator

import (
	"math"
	"strings"
	"testing"

	"github.com/studysphere/backend/internal/models"
)

func q(text string, correct int, opts ...string) models.Question {
	return models.Question{Question: text, Options: opts, CorrectOptionIndex: correct}
}

func hasFinding(findings []string, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func TestInspectQuestions_Clean(t *testing.T) {
	qs := []models.Question{
		q("What organelle produces ATP?", 1, "Nucleus", "Mitochondrion", "Ribosome", "Golgi body"),
		q("Which gas do plants absorb during photosynthesis?", 2, "Oxygen", "Nitrogen", "Carbon dioxide", "Helium"),
	}
	if findings := InspectQuestions(qs); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestInspectQuestions_Findings(t *testing.T) {
	tests := []struct {
		name string
		qs   []models.Question
		want string
	}{
		{
			"throwaway option",
			[]models.Question{q("Which is prime?", 0, "7", "8", "All of the above")},
			"throwaway option",
		},
		{
			"duplicate option",
			[]models.Question{q("Which is prime?", 0, "7", "8", " 7 ")},
			"duplicate option",
		},
		{
			"meta reference",
			[]models.Question{q("According to the given text, what is X?", 0, "a", "b")},
			"meta reference",
		},
		{
			"clustered answers",
			[]models.Question{
				q("Alpha question here?", 0, "a", "b"),
				q("Beta question there?", 0, "a", "b"),
				q("Gamma question where?", 0, "a", "b"),
				q("Delta question why?", 0, "a", "b"),
			},
			"correct answer index 0",
		},
		{
			"similar wording",
			[]models.Question{
				q("Which organelle produces energy inside cells?", 0, "a", "b"),
				q("Which organelle produces energy inside plant cells?", 1, "a", "b"),
			},
			"word overlap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := InspectQuestions(tt.qs)
			if !hasFinding(findings, tt.want) {
				t.Errorf("expected finding containing %q, got %v", tt.want, findings)
			}
		})
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := tokenize("mitochondria produce cellular energy")
	b := tokenize("mitochondria produce chemical energy")
	// {mitochondria, produce, energy} shared of 5 distinct words
	if got := jaccardSimilarity(a, b); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("jaccardSimilarity = %f, want 0.6", got)
	}
	if got := jaccardSimilarity(map[string]bool{}, map[string]bool{}); got != 0 {
		t.Errorf("empty sets similarity = %f, want 0", got)
	}
}
