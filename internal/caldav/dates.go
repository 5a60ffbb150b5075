package caldav

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseDate parses a --start/--end value. It accepts "today", "tomorrow",
// "+Nd" (N days after today), ISO dates and datetimes, and RFC 3339.
// Relative forms are anchored at midnight of now in now's location.
func ParseDate(s string, now time.Time) (time.Time, error) {
	midnight := Midnight(now)

	switch {
	case s == "today":
		return midnight, nil
	case s == "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	case strings.HasPrefix(s, "+") && strings.HasSuffix(s, "d"):
		days, err := strconv.Atoi(s[1 : len(s)-1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative date %q: %w", s, err)
		}
		return midnight.AddDate(0, 0, days), nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, today, tomorrow or +Nd", s)
}

// Midnight truncates t to the start of its day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
