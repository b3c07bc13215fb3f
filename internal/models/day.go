package models

import (
	"fmt"
	"time"
)

// DayLayout is the textual form of a calendar day. Zero padding keeps it lexicographically sortable.
const DayLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ParseDay parses a YYYY-MM-DD string, rejecting non-canonical forms such as "2024-1-5".
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", raw, err)
	}
	if t.Format(DayLayout) != raw {
		return time.Time{}, fmt.Errorf("invalid day %q: not canonical", raw)
	}
	return t, nil
}

// FormatDay renders t as a calendar day in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DaySpan returns the inclusive number of calendar days between first and last.
func DaySpan(first, last string) (int, error) {
	from, err := ParseDay(first)
	if err != nil {
		return 0, err
	}
	to, err := ParseDay(last)
	if err != nil {
		return 0, err
	}
	if to.Before(from) {
		from, to = to, from
	}
	return int((to.Unix()-from.Unix())/secondsPerDay) + 1, nil
}
