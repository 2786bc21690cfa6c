package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a yyyy-mm-dd date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected yyyy-mm-dd, got %q", s)
	}
	return t, nil
}

// TeardownDate is the day equipment is collected: event date plus duration.
func TeardownDate(eventDate time.Time, durationDays int32) time.Time {
	return eventDate.AddDate(0, 0, int(durationDays))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthsBack returns the first day of the month n-1 months before t, so
// that n monthly buckets ending with t's month start there.
func MonthsBack(t time.Time, n int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, -(n - 1), 0)
}
