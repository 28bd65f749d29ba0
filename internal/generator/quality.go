package generator

import (
	"fmt"
	"strings"

	"github.com/studysphere/backend/internal/models"
)

// Quality findings are advisory: they are logged so prompt regressions show up,
// but they never remove a question that survived normalization.

var throwawayOptions = []string{
	"all of the above",
	"none of the above",
	"not given",
	"i don't know",
	"i do not know",
}

var metaPhrases = []string{
	"the given text",
	"based on your notes",
	"according to the notes",
	"the passage above",
}

// InspectQuestions returns human-readable findings for a normalized set.
func InspectQuestions(qs []models.Question) []string {
	var findings []string

	correctCounts := make(map[int]int)
	for i, q := range qs {
		n := i + 1
		lowerQ := strings.ToLower(q.Question)
		for _, p := range metaPhrases {
			if strings.Contains(lowerQ, p) {
				findings = append(findings, fmt.Sprintf("question %d: meta reference %q", n, p))
			}
		}

		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			key := strings.ToLower(strings.TrimSpace(opt))
			if seen[key] {
				findings = append(findings, fmt.Sprintf("question %d: duplicate option %q", n, opt))
			}
			seen[key] = true
			for _, bad := range throwawayOptions {
				if key == bad {
					findings = append(findings, fmt.Sprintf("question %d: throwaway option %q", n, opt))
				}
			}
		}

		correctCounts[q.CorrectOptionIndex]++
	}

	// Models like to put every answer first.
	if len(qs) >= 4 {
		for idx, c := range correctCounts {
			if c*4 > len(qs)*3 {
				findings = append(findings, fmt.Sprintf("correct answer index %d used for %d of %d questions", idx, c, len(qs)))
			}
		}
	}

	findings = append(findings, similarQuestions(qs)...)
	return findings
}

// similarQuestions flags pairs whose wording overlaps by more than 60%.
func similarQuestions(qs []models.Question) []string {
	if len(qs) < 2 {
		return nil
	}
	sets := make([]map[string]bool, len(qs))
	for i, q := range qs {
		sets[i] = tokenize(q.Question)
	}

	var findings []string
	for i := 0; i < len(qs); i++ {
		for j := i + 1; j < len(qs); j++ {
			if overlap := jaccardSimilarity(sets[i], sets[j]); overlap > 0.60 {
				findings = append(findings, fmt.Sprintf("questions %d and %d have %.0f%% word overlap", i+1, j+1, overlap*100))
			}
		}
	}
	return findings
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:?!\"'()")
		// skip articles and prepositions
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
