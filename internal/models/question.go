package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// ParseDifficulty lower-cases s; an empty value means easy.
func ParseDifficulty(s string) (Difficulty, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DifficultyEasy, true
	}
	d := Difficulty(s)
	return d, ValidDifficulties[d]
}

// Question is the canonical multiple-choice shape handed to clients.
// CorrectOptionIndex is always within [0, len(Options)).
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
}

// Unanswered marks a question the user skipped.
const Unanswered = -1

// Index is an option index decoded leniently: integral JSON numbers are kept,
// anything else (null, strings, fractions, objects) becomes Unanswered.
type Index int

func (i *Index) UnmarshalJSON(data []byte) error {
	*i = Unanswered
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	*i = Index(int(f))
	return nil
}

// OptionList is an options array decoded leniently. Non-string entries keep
// their raw JSON text so option positions never shift; a non-array is empty.
type OptionList []string

func (o *OptionList) UnmarshalJSON(data []byte) error {
	*o = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(OptionList, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(r))
	}
	*o = out
	return nil
}

// GradeQuestion is a question as echoed back by the client for grading.
type GradeQuestion struct {
	Question           string     `json:"question"`
	Options            OptionList `json:"options"`
	CorrectOptionIndex Index      `json:"correctOptionIndex"`
}

type GenerateRequest struct {
	NoteIDs       []int64 `json:"noteIds"`
	Text          string  `json:"text"`
	Difficulty    string  `json:"difficulty"`
	QuestionCount *int    `json:"questionCount"`
	NumQuestions  *int    `json:"numQuestions"`
}

// Count returns whichever of questionCount/numQuestions was sent, or 0.
func (r GenerateRequest) Count() int {
	if r.QuestionCount != nil {
		return *r.QuestionCount
	}
	if r.NumQuestions != nil {
		return *r.NumQuestions
	}
	return 0
}

type GenerateResponse struct {
	Success        bool       `json:"success"`
	Difficulty     Difficulty `json:"difficulty"`
	QuestionCount  int        `json:"questionCount"`
	TotalQuestions int        `json:"totalQuestions"`
	Questions      []Question `json:"questions"`
	Degraded       bool       `json:"degraded,omitempty"`
	Warning        string     `json:"warning,omitempty"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
}
