package training

import (
	"fmt"
	"time"
)

// All calendar math runs on UTC day boundaries.

// Day truncates t to the UTC midnight of its day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the first and the last instant of t's UTC day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := Day(t)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ISOWeekStart returns the Monday of t's ISO week.
func ISOWeekStart(t time.Time) time.Time {
	day := Day(t)
	// Sunday is 0 in time.Weekday, but the last day of an ISO week
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeeksBetween returns the number of ISO weeks from a's week to b's week.
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(ISOWeekStart(a), ISOWeekStart(b)) / 7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthClamped moves t one calendar month forward, keeping the time of day.
// The day is anchorDay clamped to the length of the target month, so
// Jan 31 becomes Feb 28 (or 29), and anchorDay 31 brings Feb 28 back to Mar 31.
func AddMonthClamped(t time.Time, anchorDay int) time.Time {
	t = t.UTC()
	if anchorDay <= 0 {
		anchorDay = t.Day()
	}

	first := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	day := anchorDay
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// NextRecurrenceEnd computes when the occurrence after end is due.
func NextRecurrenceEnd(end time.Time, rec Recurrence, anchorDay int) (time.Time, error) {
	switch rec {
	case RecurrenceWeekly:
		return end.UTC().AddDate(0, 0, 7), nil
	case RecurrenceMonthly:
		return AddMonthClamped(end, anchorDay), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurrence, rec)
	}
}
