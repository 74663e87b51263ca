package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of a day's date attribute in the feed.
const DateLayout = "2006-01-02"

// ParseClock parses an "HH:MM" (or "HH:MM:SS") field into an offset.
// It is used for both time-of-day and durations, so hours are not capped
// at 23.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty clock value")
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("clock value %q: want HH:MM", s)
	}

	var units = []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("clock value %q: %w", s, err)
		}
		if n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("clock value %q: field %d out of range", s, i)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// FormatClock renders an offset as "HH:MM".
func FormatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%02d:%02d", h, m)
}
