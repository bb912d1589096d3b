// Package mcp provides an MCP (Model Context Protocol) server that exposes
// week planning, task assignment and task enhancement as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/observability"
	"github.com/valter-silva-au/iar/pkg/models"
)

// Enhancer rewrites tasks and reports which tier produced each rewrite.
// Each tool call runs in its own session, so a backend disabled during one
// request is retried by the next. *core.Enhancer implements it.
type Enhancer interface {
	core.TextEnhancer
	EnhanceDetailed(ctx context.Context, rawTask string) core.Enhancement
	StartSession(runID string)
}

// Server exposes the report planning services as MCP tools.
type Server struct {
	server    *gomcp.Server
	enhancer  Enhancer
	enhanceMu sync.Mutex // one enhancement session at a time
	sanitizer core.Sanitizer
	statsCalc observability.StatsCalculator
}

// NewServer creates a new MCP server. A nil enhancer falls back to the
// rule-based rewrite; statsCalc may be nil when the event log is disabled.
func NewServer(enhancer Enhancer, sanitizer core.Sanitizer, statsCalc observability.StatsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if enhancer == nil {
		enhancer = core.RuleBasedEnhancer()
	}

	s := &Server{
		enhancer:  enhancer,
		sanitizer: sanitizer,
		statsCalc: statsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "iar", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type periodInput struct {
	Year  int `json:"year" jsonschema:"required,the report year (1-9999)"`
	Month int `json:"month" jsonschema:"required,the report month (1-12)"`
	Half  int `json:"half" jsonschema:"required,1 for days 1-15, 2 for day 16 to the end of the month"`
}

type weekOutput struct {
	Key   string `json:"key"`
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type planWeeksOutput struct {
	Period string       `json:"period"`
	Weeks  []weekOutput `json:"weeks"`
}

type assignTasksInput struct {
	Year    int      `json:"year" jsonschema:"required,the report year (1-9999)"`
	Month   int      `json:"month" jsonschema:"required,the report month (1-12)"`
	Half    int      `json:"half" jsonschema:"required,1 for days 1-15, 2 for day 16 to the end of the month"`
	Tasks   []string `json:"tasks" jsonschema:"required,free-text task descriptions, optionally mentioning dates such as Nov 17-19"`
	Enhance bool     `json:"enhance,omitempty" jsonschema:"rewrite each task as a past-tense accomplishment before assigning it"`
}

type weekTasksOutput struct {
	Key   string   `json:"key"`
	Tasks []string `json:"tasks"`
}

type assignTasksOutput struct {
	Period    string            `json:"period"`
	Weeks     []weekTasksOutput `json:"weeks"`
	TaskCount int               `json:"task_count"`
}

type enhanceTaskInput struct {
	Task string `json:"task" jsonschema:"required,the raw task description to rewrite"`
}

type enhanceTaskOutput struct {
	Text    string `json:"text"`
	Tier    string `json:"tier"`
	Backend string `json:"backend,omitempty"`
}

type sanitizeOutputInput struct {
	Text string `json:"text" jsonschema:"required,raw language model output to clean up"`
}

type sanitizeOutputOutput struct {
	Text string `json:"text"`
}

type getStatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for stats (e.g. 7d, 30d, 24h). Defaults to 30d."`
}

type statsOutput struct {
	ReportsGenerated int            `json:"reports_generated"`
	ReportsWritten   int            `json:"reports_written"`
	TasksEnhanced    int            `json:"tasks_enhanced"`
	TasksByTier      map[string]int `json:"tasks_by_tier"`
	BackendFailures  map[string]int `json:"backend_failures"`
	FallbackRate     float64        `json:"fallback_rate"`
	EventCount       int            `json:"event_count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "plan_weeks",
		Description: "List the working-day weeks (Monday to Friday runs) of a half-month reporting period.",
	}, s.handlePlanWeeks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "assign_tasks",
		Description: "Assign tasks to the weeks of a reporting period. Tasks mentioning a date go to the matching week; the rest are spread evenly.",
	}, s.handleAssignTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "enhance_task",
		Description: "Rewrite a task as a professional past-tense accomplishment sentence, using a language model when available.",
	}, s.handleEnhanceTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "sanitize_output",
		Description: "Clean raw language model output: strip quotes, bullets, introductions, first-person pronouns and near-duplicate alternative sentences.",
	}, s.handleSanitizeOutput)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_stats",
		Description: "Get report generation and enhancement statistics from the event log.",
	}, s.handleGetStats)
}

// --- Tool handlers ---

func (s *Server) handlePlanWeeks(_ context.Context, _ *gomcp.CallToolRequest, input periodInput) (*gomcp.CallToolResult, planWeeksOutput, error) {
	period, err := toPeriod(input.Year, input.Month, input.Half)
	if err != nil {
		return errorResult(err.Error()), planWeeksOutput{}, nil
	}

	weeks := core.PlanWeeks(period)
	out := planWeeksOutput{
		Period: period.Label(),
		Weeks:  make([]weekOutput, len(weeks)),
	}
	for i, w := range weeks {
		out.Weeks[i] = weekOutput{
			Key:   w.Key(),
			Start: w.Start.Format(time.DateOnly),
			End:   w.End.Format(time.DateOnly),
			Days:  w.Days(),
		}
	}
	return nil, out, nil
}

func (s *Server) handleAssignTasks(ctx context.Context, _ *gomcp.CallToolRequest, input assignTasksInput) (*gomcp.CallToolResult, assignTasksOutput, error) {
	period, err := toPeriod(input.Year, input.Month, input.Half)
	if err != nil {
		return errorResult(err.Error()), assignTasksOutput{}, nil
	}

	var tasks []string
	for _, t := range input.Tasks {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return errorResult(core.ErrNoTasks.Error()), assignTasksOutput{}, nil
	}

	var enhancer core.TextEnhancer
	if input.Enhance {
		s.enhanceMu.Lock()
		defer s.enhanceMu.Unlock()
		s.enhancer.StartSession(uuid.NewString())
		enhancer = s.enhancer
	}
	assignment := core.NewTaskAssigner(enhancer).Assign(ctx, tasks, core.PlanWeeks(period), period)

	out := assignTasksOutput{
		Period:    period.Label(),
		Weeks:     make([]weekTasksOutput, len(assignment.Weeks)),
		TaskCount: assignment.TaskCount(),
	}
	for i, wt := range assignment.Weeks {
		out.Weeks[i] = weekTasksOutput{Key: wt.Key, Tasks: wt.Tasks}
	}
	return nil, out, nil
}

func (s *Server) handleEnhanceTask(ctx context.Context, _ *gomcp.CallToolRequest, input enhanceTaskInput) (*gomcp.CallToolResult, enhanceTaskOutput, error) {
	if strings.TrimSpace(input.Task) == "" {
		return errorResult("task is required"), enhanceTaskOutput{}, nil
	}

	s.enhanceMu.Lock()
	defer s.enhanceMu.Unlock()
	s.enhancer.StartSession(uuid.NewString())
	res := s.enhancer.EnhanceDetailed(ctx, input.Task)
	return nil, enhanceTaskOutput{
		Text:    res.Text,
		Tier:    string(res.Tier),
		Backend: res.Backend,
	}, nil
}

func (s *Server) handleSanitizeOutput(_ context.Context, _ *gomcp.CallToolRequest, input sanitizeOutputInput) (*gomcp.CallToolResult, sanitizeOutputOutput, error) {
	return nil, sanitizeOutputOutput{Text: s.sanitizer.Sanitize(input.Text)}, nil
}

func (s *Server) handleGetStats(_ context.Context, _ *gomcp.CallToolRequest, input getStatsInput) (*gomcp.CallToolResult, statsOutput, error) {
	if s.statsCalc == nil {
		return errorResult("stats unavailable: event log is disabled"), statsOutput{}, nil
	}

	since := input.Since
	if since == "" {
		since = "30d"
	}
	sinceTime, err := parseSince(since)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since: %s", err)), statsOutput{}, nil
	}

	st, err := s.statsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating stats: %s", err)), statsOutput{}, nil
	}

	return nil, statsOutput{
		ReportsGenerated: st.ReportsGenerated,
		ReportsWritten:   st.ReportsWritten,
		TasksEnhanced:    st.TasksEnhanced,
		TasksByTier:      st.TasksByTier,
		BackendFailures:  st.BackendFailures,
		FallbackRate:     st.FallbackRate(),
		EventCount:       st.EventCount,
	}, nil
}

// --- Helpers ---

func toPeriod(year, month, half int) (models.Period, error) {
	p, err := models.NewPeriod(year, month, models.Half(half))
	if err != nil {
		return models.Period{}, fmt.Errorf("invalid period: %w", err)
	}
	return p, nil
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
