package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valter-silva-au/iar/pkg/models"
)

// ErrNoTasks is returned when a report is requested without any task.
var ErrNoTasks = errors.New("no tasks provided")

// ReportRenderer turns a generated report into a document.
type ReportRenderer interface {
	Render(w io.Writer, report *models.Report) error
	// Extension is the file extension of the rendered document, with dot.
	Extension() string
}

// ReportGenerator builds accomplishment reports.
type ReportGenerator interface {
	Generate(ctx context.Context, req models.ReportRequest) (*models.Report, error)
	WriteReport(report *models.Report, outputPath string) (string, error)
}

// sessionStarter is implemented by enhancers holding per-session state.
type sessionStarter interface {
	StartSession(runID string)
}

type reportGenerator struct {
	enhancer  TextEnhancer
	renderer  ReportRenderer
	outputDir string
	events    EventLogger
	logger    *zap.Logger
}

// NewReportGenerator creates a ReportGenerator. enhancer may be nil to keep
// tasks verbatim; events may be nil to disable event logging. A nil logger
// discards diagnostics.
func NewReportGenerator(enhancer TextEnhancer, renderer ReportRenderer, outputDir string, events EventLogger, logger *zap.Logger) ReportGenerator {
	if outputDir == "" {
		outputDir = "."
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportGenerator{
		enhancer:  enhancer,
		renderer:  renderer,
		outputDir: outputDir,
		events:    events,
		logger:    logger,
	}
}

// Generate validates the request, plans the weeks of its period and assigns
// every task. Blank task lines are ignored; a request left with no task
// fails with ErrNoTasks.
func (g *reportGenerator) Generate(ctx context.Context, req models.ReportRequest) (*models.Report, error) {
	tasks := make([]string, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		if t = strings.TrimSpace(t); t != "" {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	period, err := models.NewPeriod(req.Period.Year, int(req.Period.Month), req.Period.Half)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if s, ok := g.enhancer.(sessionStarter); ok {
		s.StartSession(runID)
	}

	weeks := PlanWeeks(period)
	assignment := NewTaskAssigner(g.enhancer).Assign(ctx, tasks, weeks, period)

	report := &models.Report{
		RunID:       runID,
		Employee:    req.Employee,
		Period:      period,
		Assignment:  assignment,
		Signatories: req.Signatories,
	}

	g.logEvent("report.generated", map[string]any{
		"run_id": report.RunID,
		"period": period.Label(),
		"weeks":  len(weeks),
		"tasks":  len(tasks),
	})

	return report, nil
}

// WriteReport renders report to outputPath, or to DefaultReportFilename in
// the output directory when outputPath is empty, and returns the path
// written.
func (g *reportGenerator) WriteReport(report *models.Report, outputPath string) (string, error) {
	if g.renderer == nil {
		return "", fmt.Errorf("no report renderer configured")
	}
	if outputPath == "" {
		outputPath = filepath.Join(g.outputDir, DefaultReportFilename(report.Period, g.renderer.Extension()))
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating output directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("creating report file: %w", err)
	}
	if err := g.renderer.Render(f, report); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("rendering report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing report file: %w", err)
	}

	g.logEvent("report.written", map[string]any{
		"run_id": report.RunID,
		"path":   outputPath,
	})
	return outputPath, nil
}

func (g *reportGenerator) logEvent(eventType string, data map[string]any) {
	if g.events == nil {
		return
	}
	if err := g.events.LogEvent(eventType, data); err != nil {
		g.logger.Debug("writing event failed", zap.String("type", eventType), zap.Error(err))
	}
}

// DefaultReportFilename returns the conventional file name for a period,
// e.g. "ACCOMPLISHMENT_REPORT_November_16-30_2025.md".
func DefaultReportFilename(p models.Period, ext string) string {
	return fmt.Sprintf("ACCOMPLISHMENT_REPORT_%s_%d-%d_%d%s",
		p.Month, p.Start().Day(), p.End().Day(), p.Year, ext)
}
