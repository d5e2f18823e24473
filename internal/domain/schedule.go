package domain

import (
	"fmt"
	"time"
)

// DailySpec renders a standard 5-field cron expression firing every day at
// mins minutes after local midnight.
func DailySpec(mins int) string {
	return fmt.Sprintf("%d %d * * *", mins%60, mins/60)
}

// NextDaily returns the next instant strictly after now at which the local
// wall clock in loc reads mins minutes after midnight. Result is in UTC.
func NextDaily(now time.Time, mins int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), mins/60, mins%60, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, mins/60, mins%60, 0, 0, loc)
	}
	return next.UTC()
}

// IsSunday reports whether t falls on a Sunday in loc.
func IsSunday(t time.Time, loc *time.Location) bool {
	return t.In(loc).Weekday() == time.Sunday
}

// Streak counts consecutive run days ending today or yesterday.
// days are YYYY-MM-DD keys in any order; duplicates and garbage are ignored.
func Streak(days []string, today time.Time, loc *time.Location) int {
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		if _, err := time.ParseInLocation(time.DateOnly, d, loc); err == nil {
			seen[d] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return 0
	}

	cursor := today.In(loc)
	if _, ok := seen[DayKey(cursor, loc)]; !ok {
		// a streak survives until the end of the following day
		cursor = cursor.AddDate(0, 0, -1)
		if _, ok := seen[DayKey(cursor, loc)]; !ok {
			return 0
		}
	}

	n := 0
	for {
		if _, ok := seen[DayKey(cursor, loc)]; !ok {
			return n
		}
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
}
