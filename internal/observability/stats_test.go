package observability

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestStatsCalculator_Calculate(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Time: base, Type: EventReportGenerated, Data: map[string]any{"run_id": "r1"}},
		{Time: base.Add(time.Minute), Type: EventEnhanceTierUsed, Data: map[string]any{"tier": "offline"}},
		{Time: base.Add(2 * time.Minute), Level: "WARN", Type: EventEnhanceBackendFailed, Data: map[string]any{"backend": "ollama:llama3.1"}},
		{Time: base.Add(2 * time.Minute), Level: "WARN", Type: EventEnhanceBackendDisabled, Data: map[string]any{"backend": "ollama:llama3.1"}},
		{Time: base.Add(3 * time.Minute), Type: EventEnhanceTierUsed, Data: map[string]any{"tier": "rule_based"}},
		{Time: base.Add(4 * time.Minute), Type: EventEnhanceTierUsed, Data: map[string]any{"tier": "rule_based"}},
		{Time: base.Add(5 * time.Minute), Type: EventReportWritten},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	s, err := NewStatsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating stats: %v", err)
	}

	if s.ReportsGenerated != 1 || s.ReportsWritten != 1 {
		t.Errorf("reports generated/written = %d/%d, want 1/1", s.ReportsGenerated, s.ReportsWritten)
	}
	if s.TasksEnhanced != 3 {
		t.Errorf("TasksEnhanced = %d, want 3", s.TasksEnhanced)
	}
	if diff := cmp.Diff(map[string]int{"offline": 1, "rule_based": 2}, s.TasksByTier); diff != "" {
		t.Errorf("TasksByTier mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"ollama:llama3.1": 1}, s.BackendFailures); diff != "" {
		t.Errorf("BackendFailures mismatch (-want +got):\n%s", diff)
	}
	if s.BackendsDisabled["ollama:llama3.1"] != 1 {
		t.Errorf("expected ollama backend disabled once, got %d", s.BackendsDisabled["ollama:llama3.1"])
	}
	if s.EventCount != len(events) {
		t.Errorf("EventCount = %d, want %d", s.EventCount, len(events))
	}
	if s.OldestEvent == nil || !s.OldestEvent.Equal(base) {
		t.Errorf("OldestEvent = %v, want %v", s.OldestEvent, base)
	}
	if got := s.FallbackRate(); got < 0.66 || got > 0.67 {
		t.Errorf("FallbackRate = %v, want ~0.667", got)
	}
}

func TestStatsCalculator_SinceExcludesOlderEvents(t *testing.T) {
	log := newTestLog(t)

	base := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
	_ = log.Write(Event{Time: base.Add(-48 * time.Hour), Type: EventReportGenerated})
	_ = log.Write(Event{Time: base, Type: EventReportGenerated})

	s, err := NewStatsCalculator(log).Calculate(base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("calculating stats: %v", err)
	}
	if s.ReportsGenerated != 1 {
		t.Errorf("ReportsGenerated = %d, want 1", s.ReportsGenerated)
	}
}

func TestStats_FallbackRateEmpty(t *testing.T) {
	s := &Stats{}
	if s.FallbackRate() != 0 {
		t.Errorf("expected 0 fallback rate with no tasks, got %v", s.FallbackRate())
	}
}

// Feature: enhancement stats
// For any sequence of tier events, TasksEnhanced equals the number of
// tier events and the per-tier counts sum to it.
func TestProperty_StatsTierCountsSumToTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		log := newTestLog(t)

		tiers := []string{"offline", "hosted", "rule_based"}
		n := rapid.IntRange(0, 30).Draw(rt, "n")
		base := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			tier := rapid.SampledFrom(tiers).Draw(rt, fmt.Sprintf("tier_%d", i))
			if err := log.Write(Event{
				Time: base.Add(time.Duration(i) * time.Second),
				Type: EventEnhanceTierUsed,
				Data: map[string]any{"tier": tier},
			}); err != nil {
				rt.Fatalf("writing event: %v", err)
			}
		}

		s, err := NewStatsCalculator(log).Calculate(base.Add(-time.Hour))
		if err != nil {
			rt.Fatalf("calculating stats: %v", err)
		}
		if s.TasksEnhanced != n {
			rt.Errorf("TasksEnhanced = %d, want %d", s.TasksEnhanced, n)
		}
		sum := 0
		for _, c := range s.TasksByTier {
			sum += c
		}
		if sum != n {
			rt.Errorf("tier counts sum to %d, want %d", sum, n)
		}
	})
}
