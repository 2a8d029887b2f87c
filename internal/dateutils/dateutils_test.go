package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatePattern(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected string
	}{
		{"ISO date", "yyyy-MM-dd", "2006-01-02"},
		{"European slashed", "dd/MM/yyyy", "02/01/2006"},
		{"dotted short", "d.M.yyyy", "2.1.2006"},
		{"with time", "yyyy-MM-dd HH:mm:ss", "2006-01-02 15:04:05"},
		{"two-digit year", "dd.MM.yy", "02.01.06"},
		{"month name", "dd MMM yyyy", "02 Jan 2006"},
		{"go layout passes through", "2006-01-02", "2006-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslatePattern(tt.pattern))
		})
	}
}

func TestParseWithPatterns(t *testing.T) {
	patterns := []string{"yyyy-MM-dd", "dd/MM/yyyy"}

	first, err := ParseWithPatterns("2024-03-05", patterns, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), first)

	second, err := ParseWithPatterns("05/03/2024", patterns, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), second)

	_, err = ParseWithPatterns("not-a-date", patterns, time.UTC)
	assert.Error(t, err)
}

func TestParseWithPatternsLocation(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)

	parsed, err := ParseWithPatterns("2024-03-05", []string{"yyyy-MM-dd"}, zurich)
	require.NoError(t, err)

	// A date-only pattern yields that date's start of day in the zone.
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, zurich), parsed)
	assert.Equal(t, zurich, parsed.Location())
}

func TestParseWithPatternsDefaults(t *testing.T) {
	parsed, err := ParseWithPatterns("  15.06.2024 ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), parsed)
}

func TestDayBounds(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)

	at := time.Date(2024, 3, 5, 14, 30, 0, 0, zurich)
	start := StartOfDay(at)
	end := EndOfDay(at)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, zurich), start)
	assert.Equal(t, zurich, end.Location())
	assert.True(t, end.After(at))
	assert.True(t, end.Before(start.AddDate(0, 0, 1)))
}
