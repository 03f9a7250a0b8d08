package services

import (
	"sort"
	"time"

	"github.com/cppla/bbsplus/models"
)

// ComputeStreak counts consecutive calendar days ending at the most recent day key.
// Keys use models.DayLayout; order and duplicates do not matter, unparsable keys are skipped.
func ComputeStreak(days []string) int {
	parsed := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := time.Parse(models.DayLayout, d)
		if err != nil {
			continue
		}
		parsed = append(parsed, t)
	}
	if len(parsed) == 0 {
		return 0
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].After(parsed[j]) })

	streak := 1
	for i := 1; i < len(parsed); i++ {
		gap := daysBetween(parsed[i], parsed[i-1])
		if gap == 0 {
			continue
		}
		if gap != 1 {
			break
		}
		streak++
	}
	return streak
}

// dayKey formats t's calendar day in loc.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(models.DayLayout)
}

// daysBetween counts calendar days from a to b for UTC-midnight dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
