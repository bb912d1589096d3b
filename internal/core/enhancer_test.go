package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeBackend replays scripted responses; the last one repeats.
type fakeBackend struct {
	name     string
	outputs  []string
	errs     []error
	extended bool
	retry    bool

	calls   int
	prompts []string
	opts    []GenerateOptions
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Generate(_ context.Context, prompt string, opts GenerateOptions) (string, error) {
	i := b.calls
	b.calls++
	b.prompts = append(b.prompts, prompt)
	b.opts = append(b.opts, opts)

	var err error
	if len(b.errs) > 0 {
		err = b.errs[min(i, len(b.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	if len(b.outputs) == 0 {
		return "", nil
	}
	return b.outputs[min(i, len(b.outputs)-1)], nil
}

// extendedBackend adds the ExtendedBackend marker to fakeBackend.
type extendedBackend struct{ *fakeBackend }

func (b extendedBackend) Extended() bool { return true }

// retryingBackend adds the RetryingBackend marker to fakeBackend.
type retryingBackend struct{ *fakeBackend }

func (b retryingBackend) RetryOnFailure() bool { return true }

type recordedEvent struct {
	eventType string
	data      map[string]any
}

type fakeEventLogger struct {
	events []recordedEvent
}

func (l *fakeEventLogger) LogEvent(eventType string, data map[string]any) error {
	l.events = append(l.events, recordedEvent{eventType: eventType, data: data})
	return nil
}

func (l *fakeEventLogger) types() []string {
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.eventType
	}
	return out
}

var errBackendDown = errors.New("connection refused")

func TestEnhancer_OfflineTier(t *testing.T) {
	offline := &fakeBackend{name: "ollama:llama3.1", outputs: []string{"Here is the rewritten task: Developed a plan."}}
	hosted := &fakeBackend{name: "hosted", outputs: []string{"Should not be used."}}
	e := NewEnhancer(EnhancerOptions{Offline: offline, Hosted: hosted})

	got := e.EnhanceDetailed(context.Background(), "develop a plan")

	want := Enhancement{Text: "Developed a plan.", Tier: TierOffline, Backend: "ollama:llama3.1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnhanceDetailed mismatch (-want +got):\n%s", diff)
	}
	if hosted.calls != 0 {
		t.Errorf("hosted backend called %d times", hosted.calls)
	}
}

func TestEnhancer_FallsBackToHosted(t *testing.T) {
	offline := &fakeBackend{name: "offline", errs: []error{errBackendDown}}
	hosted := &fakeBackend{name: "hosted", outputs: []string{"Reviewed the budget."}}
	e := NewEnhancer(EnhancerOptions{Offline: offline, Hosted: hosted})

	got := e.EnhanceDetailed(context.Background(), "review the budget")

	if got.Tier != TierHosted || got.Text != "Reviewed the budget." {
		t.Errorf("got %+v", got)
	}
}

func TestEnhancer_RuleBasedWhenNoBackends(t *testing.T) {
	got := RuleBasedEnhancer().EnhanceDetailed(context.Background(), "review the quarterly budget")

	want := Enhancement{Text: "Reviewed the quarterly budget.", Tier: TierRuleBased}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EnhanceDetailed mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhancer_DisablesFailedBackendForSession(t *testing.T) {
	offline := &fakeBackend{name: "offline", errs: []error{errBackendDown}}
	e := NewEnhancer(EnhancerOptions{Offline: offline})

	for range 3 {
		if got := e.EnhanceDetailed(context.Background(), "fix bug"); got.Tier != TierRuleBased {
			t.Fatalf("expected rule-based tier, got %+v", got)
		}
	}
	if offline.calls != 1 {
		t.Errorf("failed backend called %d times, want 1", offline.calls)
	}

	e.Reset()
	e.Enhance(context.Background(), "fix bug")
	if offline.calls != 2 {
		t.Errorf("Reset should re-enable the backend, calls = %d", offline.calls)
	}
}

func TestEnhancer_RetriesExtendedAndRetryingBackends(t *testing.T) {
	tests := []struct {
		name    string
		backend func(*fakeBackend) EnhancerBackend
	}{
		{"extended", func(f *fakeBackend) EnhancerBackend { return extendedBackend{f} }},
		{"retrying", func(f *fakeBackend) EnhancerBackend { return retryingBackend{f} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeBackend{name: tt.name, errs: []error{errBackendDown}}
			e := NewEnhancer(EnhancerOptions{Hosted: tt.backend(f)})

			e.Enhance(context.Background(), "fix bug")
			e.Enhance(context.Background(), "fix bug")

			if f.calls != 2 {
				t.Errorf("backend called %d times, want 2", f.calls)
			}
		})
	}
}

func TestEnhancer_EmptyOutputFallsThroughWithoutDisabling(t *testing.T) {
	offline := &fakeBackend{name: "offline", outputs: []string{"   "}}
	e := NewEnhancer(EnhancerOptions{Offline: offline})

	first := e.EnhanceDetailed(context.Background(), "fix bug")
	e.EnhanceDetailed(context.Background(), "fix bug")

	if first.Tier != TierRuleBased || first.Text != "Fixed bug" {
		t.Errorf("got %+v", first)
	}
	if offline.calls != 2 {
		t.Errorf("backend with empty output should stay enabled, calls = %d", offline.calls)
	}
}

func TestEnhancer_PromptAndOptionsByMode(t *testing.T) {
	standard := &fakeBackend{name: "standard", outputs: []string{"Did it."}}
	NewEnhancer(EnhancerOptions{Offline: standard}).Enhance(context.Background(), "do it")

	if !strings.Contains(standard.prompts[0], "Task: do it") || strings.HasSuffix(standard.prompts[0], "Accomplishment:") {
		t.Errorf("unexpected standard prompt: %q", standard.prompts[0])
	}
	if diff := cmp.Diff(GenerateOptions{Temperature: 0.5, MaxOutputTokens: 150}, standard.opts[0]); diff != "" {
		t.Errorf("standard options mismatch (-want +got):\n%s", diff)
	}

	f := &fakeBackend{name: "cloud", outputs: []string{"Did it."}}
	NewEnhancer(EnhancerOptions{Hosted: extendedBackend{f}}).Enhance(context.Background(), "do it")

	if !strings.HasSuffix(f.prompts[0], "Accomplishment:") {
		t.Errorf("extended prompt should end with the accomplishment cue: %q", f.prompts[0])
	}
	if diff := cmp.Diff(GenerateOptions{Temperature: 0.3, MaxOutputTokens: 200}, f.opts[0]); diff != "" {
		t.Errorf("extended options mismatch (-want +got):\n%s", diff)
	}
}

func TestEnhancer_LogsEventsWithRunID(t *testing.T) {
	events := &fakeEventLogger{}
	offline := &fakeBackend{name: "offline", errs: []error{errBackendDown}}
	e := NewEnhancer(EnhancerOptions{Offline: offline, Events: events})
	e.StartSession("run-123")

	e.Enhance(context.Background(), "fix bug")

	want := []string{"enhance.backend_failed", "enhance.backend_disabled", "enhance.tier_used"}
	if diff := cmp.Diff(want, events.types()); diff != "" {
		t.Fatalf("event types mismatch (-want +got):\n%s", diff)
	}
	for _, ev := range events.events {
		if ev.data["run_id"] != "run-123" {
			t.Errorf("%s missing run_id: %v", ev.eventType, ev.data)
		}
	}
	if tier := events.events[2].data["tier"]; tier != string(TierRuleBased) {
		t.Errorf("tier_used recorded tier %v", tier)
	}
}

func TestEnhancer_StartSessionReenablesBackends(t *testing.T) {
	offline := &fakeBackend{name: "offline", errs: []error{errBackendDown, nil}, outputs: []string{"", "Fixed the bug."}}
	e := NewEnhancer(EnhancerOptions{Offline: offline})

	e.Enhance(context.Background(), "fix the bug")
	e.StartSession("second")

	if got := e.EnhanceDetailed(context.Background(), "fix the bug"); got.Tier != TierOffline {
		t.Errorf("expected offline tier after new session, got %+v", got)
	}
}

func TestEnhancer_Backends(t *testing.T) {
	e := NewEnhancer(EnhancerOptions{
		Offline: &fakeBackend{name: "ollama:llama3.1"},
		Hosted:  &fakeBackend{name: "huggingface:model"},
	})
	if diff := cmp.Diff([]string{"ollama:llama3.1", "huggingface:model"}, e.Backends()); diff != "" {
		t.Errorf("Backends mismatch (-want +got):\n%s", diff)
	}
}
