package models

import (
	"fmt"
	"time"
)

// DateRange is an inclusive span of calendar days with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange returns a DateRange, swapping the bounds when they were
// supplied in reverse order.
func NewDateRange(start, end time.Time) DateRange {
	if start.After(end) {
		start, end = end, start
	}
	return DateRange{Start: start, End: end}
}

// Overlaps reports whether the range shares at least one day with the week.
func (r DateRange) Overlaps(w Week) bool {
	return !r.Start.After(w.End) && !r.End.Before(w.Start)
}

// Week is a contiguous run of working days, at most Monday to Friday.
type Week struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Key returns the row label used for the week, e.g. "November 24-28, 2025".
func (w Week) Key() string {
	return FormatDateRange(w.Start, w.End)
}

// Days returns the number of calendar days spanned by the week, inclusive.
func (w Week) Days() int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

// FormatDateRange renders a date span as
//
//	"November 24, 2025"            single day
//	"November 24-28, 2025"         same month
//	"October 30-November 3, 2025"  crossing months
//
// The year printed is always the end date's year.
func FormatDateRange(start, end time.Time) string {
	switch {
	case sameDay(start, end):
		return start.Format("January 2, 2006")
	case start.Month() == end.Month() && start.Year() == end.Year():
		return fmt.Sprintf("%s %d-%d, %d", start.Month(), start.Day(), end.Day(), end.Year())
	default:
		return fmt.Sprintf("%s %d-%s %d, %d", start.Month(), start.Day(), end.Month(), end.Day(), end.Year())
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
