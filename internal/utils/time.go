package utils

import (
	"time"
)

// DateLayout is the calendar-date form accepted for travel date filters.
const DateLayout = "2006-01-02"

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseDateParam accepts RFC3339 timestamps or plain calendar dates. The
// second return value reports whether the input was a date without a time.
func ParseDateParam(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999999999, t.Location())
}
