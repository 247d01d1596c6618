package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// separatorPattern matches conjunction boundaries between independent entries
var separatorPattern = regexp.MustCompile(`(?i)\s+(?:and then|and|then)\s+|\s*[;,]\s*`)

// timePattern matches "11am", "7:30 pm" and similar explicit clock times
var timePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\b\.?`)

// SplitClauses breaks text at " and ", " then ", ";" and "," boundaries.
// A comma between digits ("10,000 steps") is part of a number and does not split.
// Empty clauses are dropped.
func SplitClauses(text string) []string {
	var clauses []string
	start := 0
	for _, m := range separatorPattern.FindAllStringIndex(text, -1) {
		if isThousandsSeparator(text, m[0], m[1]) {
			continue
		}
		if clause := strings.TrimSpace(text[start:m[0]]); clause != "" {
			clauses = append(clauses, clause)
		}
		start = m[1]
	}
	if clause := strings.TrimSpace(text[start:]); clause != "" {
		clauses = append(clauses, clause)
	}
	return clauses
}

func isThousandsSeparator(text string, start, end int) bool {
	if end-start != 1 || text[start] != ',' {
		return false
	}
	return start > 0 && end < len(text) && isDigit(text[start-1]) && isDigit(text[end])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ParseClockTime finds the first valid "h[:mm] am|pm" phrase in text and returns that wall time
// on date, in date's location. Invalid phrases such as "13pm" are skipped.
// ok is false when text names no valid time.
func ParseClockTime(text string, date time.Time) (t time.Time, ok bool) {
	for _, m := range timePattern.FindAllStringSubmatch(text, -1) {
		hour, minute, valid := clockTime(m)
		if !valid {
			continue
		}
		y, mo, d := date.Date()
		return time.Date(y, mo, d, hour, minute, 0, 0, date.Location()), true
	}
	return time.Time{}, false
}

// clockTime converts one timePattern match to a 24-hour hour and minute
func clockTime(m []string) (hour, minute int, ok bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, false
	}
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}

	pm := strings.EqualFold(m[3], "p")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return hour, minute, true
}
