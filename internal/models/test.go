package models

import "time"

type PerQuestionResult struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	UserOptionIndex    int      `json:"userOptionIndex"`
	IsCorrect          bool     `json:"isCorrect"`
	Explanation        *string  `json:"aiExplanation"`
}

// Test is one completed quiz attempt. It is written once at grading time and never changed.
type Test struct {
	ID                 int64               `json:"id"`
	UserID             int64               `json:"userId"`
	Difficulty         Difficulty          `json:"difficulty"`
	TotalQuestions     int                 `json:"totalQuestions"`
	CorrectCount       int                 `json:"correctCount"`
	WrongCount         int                 `json:"wrongCount"`
	Score              int                 `json:"score"`
	Accuracy           int                 `json:"accuracy"`
	XPEarned           int                 `json:"xpEarned"`
	TimeUsedSeconds    *int                `json:"timeUsedSeconds"`
	NoteIDs            []int64             `json:"selectedNoteIds"`
	PerQuestionResults []PerQuestionResult `json:"perQuestionResults"`
	CreatedAt          time.Time           `json:"createdAt"`
}

type EvaluateRequest struct {
	Questions       []GradeQuestion `json:"questions"`
	UserAnswers     []Index         `json:"userAnswers"`
	Difficulty      string          `json:"difficulty"`
	TimeUsedSeconds *int            `json:"timeUsedSeconds"`
	SelectedNoteIDs []int64         `json:"selectedNoteIds"`
}

type EvaluateResponse struct {
	Success            bool                `json:"success"`
	TestID             int64               `json:"testId"`
	Score              int                 `json:"score"`
	TotalQuestions     int                 `json:"totalQuestions"`
	CorrectCount       int                 `json:"correctCount"`
	WrongCount         int                 `json:"wrongCount"`
	Accuracy           int                 `json:"accuracy"`
	XPEarned           int                 `json:"xpEarned"`
	TimeUsedSeconds    *int                `json:"timeUsedSeconds"`
	PerQuestionResults []PerQuestionResult `json:"perQuestionResults"`
}

type TestResponse struct {
	Success bool  `json:"success"`
	Test    *Test `json:"test"`
}

type TestHistoryResponse struct {
	Success bool   `json:"success"`
	Tests   []Test `json:"tests"`
}
