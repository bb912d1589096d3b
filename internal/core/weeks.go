package core

import (
	"time"

	"github.com/valter-silva-au/iar/pkg/models"
)

// maxWeekSpanDays is the largest distance, in days, between the first and
// last working day of one week (Monday to Friday).
const maxWeekSpanDays = 4

// WorkingDays returns every Monday-to-Friday date in [start, end], ascending.
// Holidays are not considered.
func WorkingDays(start, end time.Time) []time.Time {
	start = truncateToDate(start)
	end = truncateToDate(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		days = append(days, d)
	}
	return days
}

// PartitionIntoWeeks groups ascending working days into weeks. A day more
// than four calendar days after the current week's first day starts a new
// week; otherwise it extends the current week.
func PartitionIntoWeeks(days []time.Time) []models.Week {
	if len(days) == 0 {
		return nil
	}

	weeks := make([]models.Week, 0, len(days)/5+1)
	current := models.Week{Start: days[0], End: days[0]}
	for _, day := range days[1:] {
		if daysBetween(current.Start, day) > maxWeekSpanDays {
			weeks = append(weeks, current)
			current = models.Week{Start: day, End: day}
			continue
		}
		current.End = day
	}
	return append(weeks, current)
}

// PlanWeeks returns the week grid for a reporting period.
func PlanWeeks(p models.Period) []models.Week {
	return PartitionIntoWeeks(WorkingDays(p.Start(), p.End()))
}

func daysBetween(a, b time.Time) int {
	return int(truncateToDate(b).Sub(truncateToDate(a)).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	return models.Date(t.Year(), t.Month(), t.Day())
}
