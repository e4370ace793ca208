package dateutil

import (
	"math"
	"time"
)

// Age calculates the age at a given date
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// CountWeekday counts occurrences of day between start and end, both inclusive.
// It returns 0 when end is before start.
func CountWeekday(start, end time.Time, day time.Weekday) int {
	start = Truncate(start)
	end = Truncate(end)
	if end.Before(start) {
		return 0
	}
	offset := (int(day) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)
	if first.After(end) {
		return 0
	}
	days := int(math.Round(end.Sub(first).Hours() / 24))
	return days/7 + 1
}

// CountMondays counts the Mondays in a pay period, both ends inclusive.
func CountMondays(start, end time.Time) int {
	return CountWeekday(start, end, time.Monday)
}

// Truncate drops the clock part of t, keeping its location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WithinRange reports whether at falls on or after from and, when to is set,
// on or before to. Comparison is by calendar day.
func WithinRange(at, from time.Time, to *time.Time) bool {
	day := Truncate(at)
	if !from.IsZero() && day.Before(Truncate(from)) {
		return false
	}
	if to != nil && day.After(Truncate(*to)) {
		return false
	}
	return true
}
