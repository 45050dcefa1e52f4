package pkg

import (
	"time"
)

// GetFirstTimeOfCurrentWeek is the start of the weekly leaderboard window.
func GetFirstTimeOfCurrentWeek() time.Time {
	return GetFirstTimeOfWeek(time.Now())
}

func GetFirstTimeOfWeek(t time.Time) time.Time {
	t = t.UTC()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	return today.Truncate(time.Hour * 168)
}
