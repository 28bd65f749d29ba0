package analytics

import "math"

// XPPerCorrect is the flat reward for one correctly answered question.
const XPPerCorrect = 10

// XPForCorrect returns the XP earned for correct answers.
func XPForCorrect(correct int) int {
	if correct <= 0 {
		return 0
	}
	return correct * XPPerCorrect
}

// Accuracy is correct/total as a rounded percentage, 0 when total is 0.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
