package analytics

import (
	"sort"
	"time"

	"github.com/studysphere/backend/internal/models"
)

const (
	day       = 24 * time.Hour
	dayLayout = "2006-01-02"
)

func dayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ComputeStreak counts consecutive UTC calendar days with at least one test.
// The current streak ends today; it is 0 when today has no test.
func ComputeStreak(tests []models.Test, now time.Time) models.Streak {
	days := make(map[string]bool, len(tests))
	for _, t := range tests {
		days[dayKey(t.CreatedAt)] = true
	}
	if len(days) == 0 {
		return models.Streak{}
	}

	sorted := make([]time.Time, 0, len(days))
	for k := range days {
		d, _ := time.Parse(dayLayout, k)
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == day {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	for d := now.UTC(); days[dayKey(d)]; d = d.Add(-day) {
		current++
	}

	return models.Streak{CurrentStreakDays: current, LongestStreakDays: longest}
}
