package models

type ScorePoint struct {
	Name     string `json:"name"`
	Accuracy int    `json:"accuracy"`
}

type DifficultyStat struct {
	Difficulty Difficulty `json:"difficulty"`
	Accuracy   int        `json:"accuracy"`
}

type Summary struct {
	TotalTests              int              `json:"totalTests"`
	TotalQuestionsAttempted int              `json:"totalQuestionsAttempted"`
	TotalCorrect            int              `json:"totalCorrect"`
	TotalWrong              int              `json:"totalWrong"`
	OverallAccuracy         int              `json:"overallAccuracy"`
	XPPoints                int              `json:"xpPoints"`
	ScoreHistory            []ScorePoint     `json:"scoreHistory"`
	DifficultyStats         []DifficultyStat `json:"difficultyStats"`
}

type SummaryResponse struct {
	Success bool `json:"success"`
	Summary
}

type Streak struct {
	CurrentStreakDays int `json:"currentStreakDays"`
	LongestStreakDays int `json:"longestStreakDays"`
}

type StreakResponse struct {
	Success bool `json:"success"`
	Streak
}

type OCRTextResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Title   string `json:"title"`
}
