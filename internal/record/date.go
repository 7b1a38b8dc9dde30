package record

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order. Forms without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate reads an event date in RFC 3339 or one of the shorter forms
// above and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Stored timestamps are fixed-width text, which sorts chronologically only
// for four-digit years.
const (
	minYear = 0
	maxYear = 9999
)

// checkYear rejects instants whose UTC year falls outside 0000-9999.
func checkYear(t time.Time) error {
	if y := t.UTC().Year(); y < minYear || y > maxYear {
		return fmt.Errorf("year %d out of range %04d-%04d", y, minYear, maxYear)
	}
	return nil
}
