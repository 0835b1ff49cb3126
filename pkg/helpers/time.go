package helpers

import (
	"fmt"
	"time"
)

// HumanizeSince renders the age of t relative to now as "3 days ago".
// Months are 30 days and years 12 months; anything under a minute is
// counted in seconds.
func HumanizeSince(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	if secs < 0 {
		secs = 0
	}
	mins := secs / 60
	hours := mins / 60
	days := hours / 24
	months := days / 30
	years := months / 12

	switch {
	case years > 0:
		return plural(years, "year")
	case months > 0:
		return plural(months, "month")
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	case mins > 0:
		return plural(mins, "minute")
	default:
		return plural(secs, "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
