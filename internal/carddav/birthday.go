package carddav

import (
	"strings"
	"time"
)

// Birthday is a month and day; the birth year is irrelevant for upcoming
// birthdays and often absent.
type Birthday struct {
	Month time.Month
	Day   int
}

type birthdayMatcher struct {
	name   string
	layout string
}

// birthdayMatchers are tried in order and the first that parses wins. Month
// and day may have one or two digits except in the compact form.
var birthdayMatchers = []birthdayMatcher{
	{name: "complete", layout: "2006-1-2"},
	{name: "compact", layout: "20060102"},
	{name: "partial", layout: "--1-2"},
	{name: "month-day", layout: "1-2"},
}

func (m birthdayMatcher) match(s string) (Birthday, bool) {
	// Layouts without a year parse into year 0, a leap year, so --02-29 is accepted.
	t, err := time.Parse(m.layout, s)
	if err != nil {
		return Birthday{}, false
	}
	return Birthday{Month: t.Month(), Day: t.Day()}, true
}

// datePart drops a time-of-day suffix such as T00:00:00Z.
func datePart(s string) string {
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseBirthday reads a raw BDAY value.
func ParseBirthday(s string) (Birthday, bool) {
	s = datePart(strings.TrimSpace(s))
	for _, m := range birthdayMatchers {
		if b, ok := m.match(s); ok {
			return b, true
		}
	}
	return Birthday{}, false
}

// Next returns the next occurrence on or after today's date, at midnight in
// today's location. Feb 29 falls on Feb 28 in common years.
func (b Birthday) Next(today time.Time) time.Time {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	next := b.in(y, today.Location())
	if next.Before(start) {
		next = b.in(y+1, today.Location())
	}
	return next
}

func (b Birthday) in(year int, loc *time.Location) time.Time {
	day := b.Day
	if b.Month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, b.Month, day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Upcoming keeps contacts whose next birthday is at most days away and sets
// DaysUntilBirthday and NextBirthday on them. Contacts with a missing or
// unreadable birthday are dropped. Input order is preserved.
func Upcoming(contacts []Contact, today time.Time, days int) []Contact {
	out := []Contact{}
	for _, c := range contacts {
		if c.Birthday == nil {
			continue
		}
		b, ok := ParseBirthday(*c.Birthday)
		if !ok {
			continue
		}
		next := b.Next(today)
		until := daysBetween(today, next)
		if until > days {
			continue
		}
		c.DaysUntilBirthday = &until
		c.NextBirthday = next.Format("2006-01-02")
		out = append(out, c)
	}
	return out
}
