package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used in requests and date columns
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a calendar date in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// FormatDate renders the calendar date part of t
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDay returns midnight of t's calendar date in t's location
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
