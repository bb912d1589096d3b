package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when a reporting period is built from an
// out-of-range year, month, or half.
var ErrInvalidPeriod = errors.New("invalid reporting period")

// Half selects which half of a month a report covers.
type Half int

const (
	FirstHalf  Half = 1 // days 1-15
	SecondHalf Half = 2 // day 16 to the last day of the month
)

// String returns the day span covered by the half ("1-15" or "16-end").
func (h Half) String() string {
	switch h {
	case FirstHalf:
		return "1-15"
	case SecondHalf:
		return "16-end"
	default:
		return fmt.Sprintf("Half(%d)", int(h))
	}
}

// Period is a half-month reporting window. Build it with NewPeriod so the
// fields are guaranteed to be in range.
type Period struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	Half  Half       `json:"half" yaml:"half"`
}

// NewPeriod validates and returns a Period. Year must be within 1..9999 and
// month within 1..12.
func NewPeriod(year int, month int, half Half) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d must be between 1 and 9999", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d must be between 1 and 12", ErrInvalidPeriod, month)
	}
	if half != FirstHalf && half != SecondHalf {
		return Period{}, fmt.Errorf("%w: half %d must be 1 or 2", ErrInvalidPeriod, int(half))
	}
	return Period{Year: year, Month: time.Month(month), Half: half}, nil
}

// Start returns the first calendar day of the period.
func (p Period) Start() time.Time {
	if p.Half == SecondHalf {
		return Date(p.Year, p.Month, 16)
	}
	return Date(p.Year, p.Month, 1)
}

// End returns the last calendar day of the period.
func (p Period) End() time.Time {
	if p.Half == SecondHalf {
		return Date(p.Year, p.Month, DaysIn(p.Year, p.Month))
	}
	return Date(p.Year, p.Month, 15)
}

// Label formats the period with the same rules as week keys,
// e.g. "November 16-30, 2025".
func (p Period) Label() string {
	return FormatDateRange(p.Start(), p.End())
}

// Date returns the calendar date at midnight UTC. All dates handled by this
// module are normalized this way so equality and day arithmetic are exact.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ValidDate reports whether year/month/day names an existing calendar day.
func ValidDate(year int, month time.Month, day int) bool {
	if year < 1 || year > 9999 || month < time.January || month > time.December || day < 1 {
		return false
	}
	return day <= DaysIn(year, month)
}

// DaysIn returns the number of days in the given month, leap years included.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the following month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
