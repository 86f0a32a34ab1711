package utils

import (
	"strings"
	"time"
)

// FormatPath expands date tokens in a source path pattern.
// Supported tokens are %Y (2024), %y (24), %m (03), %d (07) and %%.
func FormatPath(pattern string, date time.Time) string {
	r := strings.NewReplacer(
		"%%", "%",
		"%Y", date.Format("2006"),
		"%y", date.Format("06"),
		"%m", date.Format("01"),
		"%d", date.Format("02"),
	)
	return r.Replace(pattern)
}

// LastBusinessDay returns date, or the preceding Friday when date falls on a weekend.
// Broker and PMS exports are dated on business days while administrator reports
// carry the calendar evaluation date.
func LastBusinessDay(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Saturday:
		return date.AddDate(0, 0, -1)
	case time.Sunday:
		return date.AddDate(0, 0, -2)
	default:
		return date
	}
}
