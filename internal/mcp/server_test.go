package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/observability"
)

// --- Fake implementations ---

type fakeStatsCalculator struct {
	stats *observability.Stats
	since time.Time
}

func (f *fakeStatsCalculator) Calculate(since time.Time) (*observability.Stats, error) {
	f.since = since
	return f.stats, nil
}

// upperEnhancer upper-cases tasks and reports a fixed tier.
type upperEnhancer struct {
	calls    int
	sessions []string
}

func (e *upperEnhancer) StartSession(runID string) {
	e.sessions = append(e.sessions, runID)
}

func (e *upperEnhancer) Enhance(ctx context.Context, rawTask string) string {
	return e.EnhanceDetailed(ctx, rawTask).Text
}

func (e *upperEnhancer) EnhanceDetailed(_ context.Context, rawTask string) core.Enhancement {
	e.calls++
	return core.Enhancement{Text: strings.ToUpper(rawTask), Tier: core.TierHosted, Backend: "hosted:test"}
}

// flakyBackend fails its first call and answers every later one.
type flakyBackend struct {
	calls int
}

func (b *flakyBackend) Name() string { return "ollama:test" }

func (b *flakyBackend) Generate(_ context.Context, _ string, _ core.GenerateOptions) (string, error) {
	b.calls++
	if b.calls == 1 {
		return "", errors.New("connection refused")
	}
	return "Filed the monthly reports.", nil
}

// --- Test helpers ---

// callTool is a helper that connects a client to the server and calls a tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	// Connect server (non-blocking).
	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}

	return result
}

// decodeOutput unmarshals a tool result from its structured content, or
// from its text when no structured content was sent.
func decodeOutput(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()

	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}
	data := []byte(extractText(result))
	if result.StructuredContent != nil {
		var err error
		if data, err = json.Marshal(result.StructuredContent); err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshalling tool output: %v (data was: %s)", err, data)
	}
}

func newTestServer(enhancer Enhancer, stats observability.StatsCalculator) *Server {
	return NewServer(enhancer, core.Sanitizer{}, stats, "test")
}

// --- Tests ---

func TestPlanWeeks(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "plan_weeks", map[string]any{"year": 2025, "month": 12, "half": 1})

	var out planWeeksOutput
	decodeOutput(t, result, &out)

	if out.Period != "December 1-15, 2025" {
		t.Errorf("period = %q", out.Period)
	}
	if len(out.Weeks) != 3 {
		t.Fatalf("expected 3 weeks, got %d", len(out.Weeks))
	}
	first := out.Weeks[0]
	if first.Key != "December 1-5, 2025" || first.Start != "2025-12-01" || first.End != "2025-12-05" || first.Days != 5 {
		t.Errorf("first week = %+v", first)
	}
	if last := out.Weeks[2]; last.Key != "December 15, 2025" || last.Days != 1 {
		t.Errorf("last week = %+v", last)
	}
}

func TestPlanWeeksInvalidPeriod(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "plan_weeks", map[string]any{"year": 2025, "month": 13, "half": 1})

	if !result.IsError {
		t.Fatal("expected error result for month 13")
	}
	if !strings.Contains(extractText(result), "invalid period") {
		t.Errorf("unexpected message: %s", extractText(result))
	}
}

func TestAssignTasks(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "assign_tasks", map[string]any{
		"year":  2025,
		"month": 11,
		"half":  2,
		"tasks": []string{"Ran payroll Nov 24-28", "Filed reports", "  "},
	})

	var out assignTasksOutput
	decodeOutput(t, result, &out)

	if out.TaskCount != 2 {
		t.Errorf("task_count = %d, want 2", out.TaskCount)
	}
	if len(out.Weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(out.Weeks))
	}
	if got := out.Weeks[0].Tasks; len(got) != 1 || got[0] != "Filed reports" {
		t.Errorf("first week tasks = %v", got)
	}
	if got := out.Weeks[1].Tasks; len(got) != 1 || got[0] != "Ran payroll Nov 24-28" {
		t.Errorf("second week tasks = %v", got)
	}
}

func TestAssignTasksEnhance(t *testing.T) {
	enh := &upperEnhancer{}
	srv := newTestServer(enh, nil)

	result := callTool(t, srv, "assign_tasks", map[string]any{
		"year":    2025,
		"month":   11,
		"half":    2,
		"tasks":   []string{"filed reports"},
		"enhance": true,
	})

	var out assignTasksOutput
	decodeOutput(t, result, &out)

	if enh.calls != 1 {
		t.Errorf("enhancer called %d times, want 1", enh.calls)
	}
	if got := out.Weeks[0].Tasks; len(got) != 1 || got[0] != "FILED REPORTS" {
		t.Errorf("first week tasks = %v", got)
	}
}

func TestAssignTasksEmpty(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "assign_tasks", map[string]any{
		"year":  2025,
		"month": 11,
		"half":  2,
		"tasks": []string{" "},
	})

	if !result.IsError {
		t.Fatal("expected error result for blank tasks")
	}
	if extractText(result) != core.ErrNoTasks.Error() {
		t.Errorf("unexpected message: %s", extractText(result))
	}
}

func TestEnhanceTask(t *testing.T) {
	srv := newTestServer(&upperEnhancer{}, nil)

	result := callTool(t, srv, "enhance_task", map[string]any{"task": "review budget"})

	var out enhanceTaskOutput
	decodeOutput(t, result, &out)

	if out.Text != "REVIEW BUDGET" || out.Tier != "hosted" || out.Backend != "hosted:test" {
		t.Errorf("output = %+v", out)
	}
}

func TestEnhanceSessionPerRequest(t *testing.T) {
	backend := &flakyBackend{}
	enh := core.NewEnhancer(core.EnhancerOptions{Offline: backend})
	srv := newTestServer(enh, nil)

	result := callTool(t, srv, "assign_tasks", map[string]any{
		"year":    2025,
		"month":   11,
		"half":    2,
		"tasks":   []string{"review monthly reports"},
		"enhance": true,
	})
	var assigned assignTasksOutput
	decodeOutput(t, result, &assigned)
	if got := assigned.Weeks[0].Tasks; len(got) != 1 || got[0] != "Reviewed monthly reports" {
		t.Errorf("first request should fall back to the rule-based rewrite, got %v", got)
	}

	result = callTool(t, srv, "enhance_task", map[string]any{"task": "review monthly reports"})
	var out enhanceTaskOutput
	decodeOutput(t, result, &out)

	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2 (a failure must not carry over to the next request)", backend.calls)
	}
	if out.Tier != "offline" || out.Text != "Filed the monthly reports." {
		t.Errorf("output = %+v", out)
	}
}

func TestEnhanceTaskStartsSession(t *testing.T) {
	enh := &upperEnhancer{}
	srv := newTestServer(enh, nil)

	callTool(t, srv, "enhance_task", map[string]any{"task": "a"})
	callTool(t, srv, "enhance_task", map[string]any{"task": "b"})
	callTool(t, srv, "assign_tasks", map[string]any{"year": 2025, "month": 11, "half": 2, "tasks": []string{"c"}})

	if len(enh.sessions) != 2 || enh.sessions[0] == enh.sessions[1] || enh.sessions[0] == "" {
		t.Errorf("sessions = %v, want two distinct run IDs (none for unenhanced assignment)", enh.sessions)
	}
}

func TestEnhanceTaskRuleBasedDefault(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "enhance_task", map[string]any{"task": "review the quarterly budget"})

	var out enhanceTaskOutput
	decodeOutput(t, result, &out)

	if out.Text != "Reviewed the quarterly budget." || out.Tier != "rule_based" {
		t.Errorf("output = %+v", out)
	}
}

func TestEnhanceTaskBlank(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "enhance_task", map[string]any{"task": "   "})

	if !result.IsError {
		t.Fatal("expected error result for blank task")
	}
}

func TestSanitizeOutput(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "sanitize_output", map[string]any{
		"text": "Here is the rewritten task: Developed a plan. Or, alternatively, Created a plan.",
	})

	var out sanitizeOutputOutput
	decodeOutput(t, result, &out)

	if out.Text != "Developed a plan." {
		t.Errorf("text = %q", out.Text)
	}
}

func TestGetStats(t *testing.T) {
	sc := &fakeStatsCalculator{
		stats: &observability.Stats{
			ReportsGenerated: 2,
			ReportsWritten:   2,
			TasksEnhanced:    4,
			TasksByTier:      map[string]int{"offline": 3, "rule_based": 1},
			BackendFailures:  map[string]int{"ollama:llama3.1": 1},
			EventCount:       9,
		},
	}
	srv := newTestServer(nil, sc)

	result := callTool(t, srv, "get_stats", map[string]any{"since": "7d"})

	var out statsOutput
	decodeOutput(t, result, &out)

	if out.ReportsGenerated != 2 || out.TasksEnhanced != 4 || out.EventCount != 9 {
		t.Errorf("output = %+v", out)
	}
	if out.FallbackRate != 0.25 {
		t.Errorf("fallback_rate = %v, want 0.25", out.FallbackRate)
	}
	if out.TasksByTier["offline"] != 3 {
		t.Errorf("tasks_by_tier = %v", out.TasksByTier)
	}
	if age := time.Since(sc.since); age < 6*24*time.Hour || age > 8*24*time.Hour {
		t.Errorf("since = %v, want about 7 days ago", sc.since)
	}
}

func TestGetStatsDisabled(t *testing.T) {
	srv := newTestServer(nil, nil)

	result := callTool(t, srv, "get_stats", map[string]any{})

	if !result.IsError {
		t.Fatal("expected error when stats calculator is nil")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result")
	}
}

func TestGetStatsBadSince(t *testing.T) {
	srv := newTestServer(nil, &fakeStatsCalculator{stats: &observability.Stats{}})

	result := callTool(t, srv, "get_stats", map[string]any{"since": "7w"})

	if !result.IsError {
		t.Fatal("expected error for unsupported duration suffix")
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"7d", false},
		{"30d", false},
		{"24h", false},
		{"1h", false},
		{"", true},
		{"x", true},
		{"7x", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseSince(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseSince(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

// extractText extracts the text from the first TextContent in a CallToolResult.
func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
