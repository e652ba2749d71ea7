// Package dateutils provides date normalization helpers for the statement
// parsers. Every dialect produces value dates as strings; unparseable input
// is preserved rather than rejected so rows survive with degraded fields.
package dateutils

import (
	"strings"
	"time"
)

// statementFormats are the date layouts seen across the supported bank
// exports, most specific first.
var statementFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"02-01-2006",
}

// Parse attempts to parse a statement date string. The boolean result is
// false when no known layout matches.
func Parse(s string) (time.Time, bool) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range statementFormats {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToISO normalizes a statement date string to YYYY-MM-DD. Unparseable input
// is returned unchanged so the caller keeps the raw value.
func ToISO(s string) string {
	if t, ok := Parse(s); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(s)
}

// SortKey returns a best-effort time for ordering transactions newest-first.
// Unparseable dates sort last.
func SortKey(s string) time.Time {
	if t, ok := Parse(s); ok {
		return t
	}
	return time.Time{}
}
