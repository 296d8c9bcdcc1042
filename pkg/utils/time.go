package utils

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for source and sink dates
const DateLayout = "2006-01-02"

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// FormatDate renders an optional date, returning nil for nil
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ParseDate parses an optional calendar date. Empty input yields nil.
// Full RFC3339 timestamps are accepted and truncated to their date.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, s)
		if tsErr != nil {
			return nil, err
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return &t, nil
}
