package observability

import (
	"fmt"
	"time"
)

// Stats summarises report generation and enhancement activity derived from
// the event log.
type Stats struct {
	ReportsGenerated int            `json:"reports_generated"`
	ReportsWritten   int            `json:"reports_written"`
	TasksEnhanced    int            `json:"tasks_enhanced"`
	TasksByTier      map[string]int `json:"tasks_by_tier"`
	BackendFailures  map[string]int `json:"backend_failures"`
	BackendsDisabled map[string]int `json:"backends_disabled"`
	EventCount       int            `json:"event_count"`
	OldestEvent      *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent      *time.Time     `json:"newest_event,omitempty"`
}

// FallbackRate is the share of enhanced tasks that ended on the rule-based
// tier. Zero when nothing was enhanced.
func (s *Stats) FallbackRate() float64 {
	if s.TasksEnhanced == 0 {
		return 0
	}
	return float64(s.TasksByTier["rule_based"]) / float64(s.TasksEnhanced)
}

// StatsCalculator derives Stats from the event log.
type StatsCalculator interface {
	Calculate(since time.Time) (*Stats, error)
}

type statsCalculator struct {
	eventLog EventLog
}

// NewStatsCalculator creates a StatsCalculator that reads from eventLog.
func NewStatsCalculator(eventLog EventLog) StatsCalculator {
	return &statsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (sc *statsCalculator) Calculate(since time.Time) (*Stats, error) {
	events, err := sc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for stats: %w", err)
	}

	s := &Stats{
		TasksByTier:      make(map[string]int),
		BackendFailures:  make(map[string]int),
		BackendsDisabled: make(map[string]int),
		EventCount:       len(events),
	}

	for i, event := range events {
		t := event.Time
		if i == 0 {
			s.OldestEvent = &t
		}
		s.NewestEvent = &t

		switch event.Type {
		case EventReportGenerated:
			s.ReportsGenerated++
		case EventReportWritten:
			s.ReportsWritten++
		case EventEnhanceTierUsed:
			s.TasksEnhanced++
			if tier, ok := event.Data["tier"].(string); ok {
				s.TasksByTier[tier]++
			}
		case EventEnhanceBackendFailed:
			if backend, ok := event.Data["backend"].(string); ok {
				s.BackendFailures[backend]++
			}
		case EventEnhanceBackendDisabled:
			if backend, ok := event.Data["backend"].(string); ok {
				s.BackendsDisabled[backend]++
			}
		}
	}

	return s, nil
}
