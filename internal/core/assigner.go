package core

import (
	"context"

	"github.com/valter-silva-au/iar/pkg/models"
)

// TaskAssigner places tasks into the weeks of a reporting period.
type TaskAssigner interface {
	Assign(ctx context.Context, tasks []string, weeks []models.Week, period models.Period) *models.WeekAssignment
}

// dateTaskAssigner assigns tasks by the dates mentioned in them and spreads
// the rest evenly across the period.
type dateTaskAssigner struct {
	enhancer TextEnhancer
}

// NewTaskAssigner creates a TaskAssigner that rewrites every task through
// enhancer before placing it. A nil enhancer keeps tasks as written.
func NewTaskAssigner(enhancer TextEnhancer) TaskAssigner {
	return &dateTaskAssigner{enhancer: enhancer}
}

// Assign enhances every task once, in input order, then places it in the
// first week overlapping the first of its date ranges that overlaps any
// week. Tasks without such a range are distributed afterwards: with n
// leftovers over w weeks the first n%w weeks get n/w+1 tasks and the rest
// n/w, walking weeks in order. Earlier date-matched tasks are not counted
// when spreading, so week sizes may end up uneven.
func (a *dateTaskAssigner) Assign(ctx context.Context, tasks []string, weeks []models.Week, period models.Period) *models.WeekAssignment {
	assignment := models.NewWeekAssignment(weeks)
	if len(weeks) == 0 {
		return assignment
	}

	items := make([]models.Task, len(tasks))
	for i, raw := range tasks {
		items[i] = models.Task{Raw: raw, Enhanced: a.enhance(ctx, raw)}
	}

	var unassigned []string
	for _, task := range items {
		ranges := ParseDateRanges(task.Raw, period.Year, period.Month)
		if idx := FindWeekIndex(ranges, weeks); idx >= 0 {
			assignment.Append(idx, task.Enhanced)
			continue
		}
		unassigned = append(unassigned, task.Enhanced)
	}

	for i, count := range DistributionCounts(len(unassigned), len(weeks)) {
		for _, task := range unassigned[:count] {
			assignment.Append(i, task)
		}
		unassigned = unassigned[count:]
	}

	return assignment
}

func (a *dateTaskAssigner) enhance(ctx context.Context, task string) string {
	if a.enhancer == nil {
		return task
	}
	if out := a.enhancer.Enhance(ctx, task); out != "" {
		return out
	}
	return task
}

// FindWeekIndex returns the index of the first week overlapping the first
// range that overlaps any week, or -1 when no range falls inside the weeks.
func FindWeekIndex(ranges []models.DateRange, weeks []models.Week) int {
	for _, r := range ranges {
		for i, w := range weeks {
			if r.Overlaps(w) {
				return i
			}
		}
	}
	return -1
}

// DistributionCounts splits n items over the given number of buckets: the
// first n%buckets buckets receive one extra item.
func DistributionCounts(n, buckets int) []int {
	if buckets <= 0 {
		return nil
	}
	base, remainder := n/buckets, n%buckets
	counts := make([]int, buckets)
	for i := range counts {
		counts[i] = base
		if i < remainder {
			counts[i]++
		}
	}
	return counts
}
