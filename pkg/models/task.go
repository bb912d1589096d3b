package models

// Task is one free-text line of work. Raw is its identity; Enhanced is the
// polished accomplishment sentence derived from it, equal to Raw when no
// rewrite was possible.
type Task struct {
	Raw      string `json:"raw" yaml:"raw"`
	Enhanced string `json:"enhanced" yaml:"enhanced"`
}

// WeekTasks is one row of a report: a week and the accomplishments
// assigned to it, in insertion order.
type WeekTasks struct {
	Week  Week     `json:"week" yaml:"week"`
	Key   string   `json:"key" yaml:"key"`
	Tasks []string `json:"tasks" yaml:"tasks"`
}

// WeekAssignment maps week keys to task lists while keeping the weeks in
// chronological order.
type WeekAssignment struct {
	Weeks []WeekTasks `json:"weeks" yaml:"weeks"`
}

// NewWeekAssignment returns an assignment with one empty row per week.
func NewWeekAssignment(weeks []Week) *WeekAssignment {
	a := &WeekAssignment{Weeks: make([]WeekTasks, len(weeks))}
	for i, w := range weeks {
		a.Weeks[i] = WeekTasks{Week: w, Key: w.Key(), Tasks: []string{}}
	}
	return a
}

// Lookup returns the tasks recorded under key and whether the key exists.
func (a *WeekAssignment) Lookup(key string) ([]string, bool) {
	for _, wt := range a.Weeks {
		if wt.Key == key {
			return wt.Tasks, true
		}
	}
	return nil, false
}

// Append adds task to the week at index i.
func (a *WeekAssignment) Append(i int, task string) {
	a.Weeks[i].Tasks = append(a.Weeks[i].Tasks, task)
}

// TaskCount returns the total number of tasks across all weeks.
func (a *WeekAssignment) TaskCount() int {
	n := 0
	for _, wt := range a.Weeks {
		n += len(wt.Tasks)
	}
	return n
}

// Keys returns the week keys in chronological order.
func (a *WeekAssignment) Keys() []string {
	keys := make([]string, len(a.Weeks))
	for i, wt := range a.Weeks {
		keys[i] = wt.Key
	}
	return keys
}
