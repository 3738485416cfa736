package model

import (
	"fmt"
	"time"
)

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. An interval ending exactly when the other starts
// does not overlap. The SQL conflict query in the booking repository must use
// the same predicate.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// TimeOfDay is a wall-clock time in "HH:MM" form, interpreted in the
// provider's timezone for a given calendar date.
type TimeOfDay string

// Parse returns the hour and minute components.
func (t TimeOfDay) Parse() (hour, min int, err error) {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", t, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// On anchors the wall-clock time onto the given calendar date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) (time.Time, error) {
	hour, min, err := t.Parse()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, min, 0, 0, loc), nil
}

// Before reports whether t is strictly earlier in the day than other.
// Both values must already be valid.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return string(t) < string(other)
}

// Valid reports whether t parses as "HH:MM".
func (t TimeOfDay) Valid() bool {
	_, _, err := t.Parse()
	return err == nil
}
