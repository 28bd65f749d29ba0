package generator

import (
	"fmt"
	"strings"

	"github.com/studysphere/backend/internal/models"
)

const (
	quizTemperature        = 0.7
	explanationTemperature = 0.3
	tutorTemperature       = 0.4

	quizMaxTokens        = 4096
	explanationMaxTokens = 300
	tutorMaxTokens       = 1024
)

// BuildQuizPrompt renders the single user prompt for a quiz. The answer-index
// field name differs by path so it matches what each path's clients expect.
func BuildQuizPrompt(text string, difficulty models.Difficulty, count int, path Path) string {
	indexField := "correctIndex"
	optionRule := "Provide exactly 4 options."
	if path == PathText {
		indexField = "answerIndex"
		optionRule = "Provide exactly 4 options: 1 correct answer and 3 wrong but logical options."
	}

	var sb strings.Builder
	sb.WriteString("You are an expert exam generator.\n\n")
	fmt.Fprintf(&sb, "Read the following study material and create exactly %d multiple-choice questions.\n\n", count)
	sb.WriteString("RULES:\n")
	fmt.Fprintf(&sb, "- Difficulty: %s.\n", strings.ToUpper(string(difficulty)))
	sb.WriteString("- Each item must be a clear question sentence, not just a word.\n")
	sb.WriteString(`- DO NOT write "Q1", "Question 1" or any numbering. Just the question text.` + "\n")
	sb.WriteString(`- Questions must be normal exam style. Do NOT say "Based on your notes", "the given text" or "the passage".` + "\n")
	fmt.Fprintf(&sb, "- %s\n", optionRule)
	sb.WriteString(`- Options must be realistic answers. DO NOT use options like "All of the above", "None of the above", "Not given" or "I don't know".` + "\n")
	fmt.Fprintf(&sb, "- Mark the 0-based index of the correct option in \"%s\".\n", indexField)
	sb.WriteString("- Keep questions and options short. Use simple English for students.\n\n")
	sb.WriteString("Return ONLY valid JSON, no Markdown, in this format:\n\n")
	fmt.Fprintf(&sb, `[
  {
    "question": "What does DBMS stand for?",
    "options": [
      "Database Management System",
      "Data Backup Management System",
      "Dynamic Buffer Management Service",
      "Disk Based Management Software"
    ],
    "%s": 0
  }
]`, indexField)
	sb.WriteString("\n\nStudy material:\n")
	sb.WriteString(text)
	sb.WriteString("\n")
	return sb.String()
}

// BuildExplanationPrompt asks for a short, student-level reason the marked option is right.
func BuildExplanationPrompt(q models.Question) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful exam tutor.\n\n")
	sb.WriteString("Question:\n")
	sb.WriteString(q.Question)
	sb.WriteString("\n\nOptions:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, opt)
	}
	sb.WriteString("\nThe correct answer is:\n")
	if q.CorrectOptionIndex >= 0 && q.CorrectOptionIndex < len(q.Options) {
		sb.WriteString(q.Options[q.CorrectOptionIndex])
	}
	sb.WriteString("\n\nExplain in 2-3 simple sentences why this answer is correct.\n")
	sb.WriteString("If useful, briefly mention why the other options are not correct.\n")
	sb.WriteString("Use very simple English for students.\n")
	return sb.String()
}

const TutorSystemPrompt = "You are a helpful study assistant. Explain concepts simply and clearly for students."
