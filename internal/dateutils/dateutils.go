// Package dateutils provides the date parsing used by the statement parsers.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common layout constants used throughout the application.
const (
	LayoutISO      = "2006-01-02"
	LayoutEuropean = "02.01.2006"
	LayoutSlashed  = "02/01/2006"
	LayoutFull     = "2006-01-02 15:04:05"
)

// CommonLayouts is the ordered list of layouts tried when a profile does not
// configure its own date patterns.
var CommonLayouts = []string{
	LayoutISO,
	LayoutEuropean,
	LayoutSlashed,
	LayoutFull,
	"02-01-2006",
	"2006/01/02",
	"2.1.2006",
	"2006-01-02T15:04:05Z07:00",
	"Jan 2, 2006",
	"2 January 2006",
}

// patternTokens maps the portable date-pattern notation commonly used in
// import profiles (yyyy-MM-dd, dd/MM/yyyy HH:mm:ss) onto Go reference-time
// layouts. Longest tokens first so yyyy wins over yy and MM over M.
var patternTokens = []struct {
	from, to string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// TranslatePattern converts a portable date pattern to a Go layout. Strings
// that already look like Go layouts (contain the reference year) pass through
// unchanged.
func TranslatePattern(pattern string) string {
	if strings.Contains(pattern, "2006") {
		return pattern
	}
	out := pattern
	for _, tok := range patternTokens {
		out = strings.ReplaceAll(out, tok.from, tok.to)
	}
	return out
}

// CleanDateString trims a date string and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	dateStr = strings.TrimSpace(dateStr)
	re := regexp.MustCompile(`\s+`)
	return re.ReplaceAllString(dateStr, " ")
}

// ParseWithPatterns tries each pattern in declared order against the raw text
// and returns the first successful parse, interpreted in loc. A date-only
// pattern yields that date's start of day in loc. When patterns is empty,
// CommonLayouts is used instead.
func ParseWithPatterns(raw string, patterns []string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	cleaned := CleanDateString(raw)
	layouts := patterns
	if len(layouts) == 0 {
		layouts = CommonLayouts
	}
	for _, pattern := range layouts {
		layout := TranslatePattern(pattern)
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
}

// StartOfDay returns midnight of the given date in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of the given date's
// calendar day in its own location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
