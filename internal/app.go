// Package internal provides the App struct that wires the report generator's
// components together and initializes the CLI layer.
package internal

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/valter-silva-au/iar/internal/cli"
	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/integration"
	"github.com/valter-silva-au/iar/internal/observability"
	"github.com/valter-silva-au/iar/pkg/models"
)

// EventLogFileName is the JSONL event log kept next to .iarconfig.
const EventLogFileName = ".iar_events.jsonl"

// App holds the service dependencies of the report generator.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Core services
	ProjectInit core.ProjectInitializer

	// Integration services
	Checker integration.ConnectivityChecker

	// Observability
	EventLog  observability.EventLog
	Events    core.EventLogger
	StatsCalc observability.StatsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// .iarconfig and the event log (IAR_HOME, or the nearest ancestor of the
// working directory containing .iarconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
	if err != nil {
		// Non-fatal: run without an event log if it can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.Events = &eventLogAdapter{log: app.EventLog}
		app.StatsCalc = observability.NewStatsCalculator(app.EventLog)
	}

	// --- Services ---
	app.ProjectInit = core.NewProjectInitializer()
	app.Checker = integration.NewConnectivityChecker(3 * time.Second)

	// --- Wire CLI ---
	cli.ConfigMgr = app.ConfigMgr
	cli.Config = app.Config
	cli.Events = app.Events
	cli.StatsCalc = app.StatsCalc
	cli.ProjectInit = app.ProjectInit
	cli.EnhancerFactory = app.NewEnhancer

	return app, nil
}

// NewEnhancer builds the offline -> hosted -> rule-based enhancer chain for
// cfg, probing the configured backends.
func (a *App) NewEnhancer(ctx context.Context, cfg models.EnhancerConfig, logger *zap.Logger) *core.Enhancer {
	return integration.NewEnhancerFromConfig(ctx, cfg, integration.EnhancerDeps{
		Checker: a.Checker,
		Events:  a.Events,
		Logger:  logger,
	})
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory holding .iarconfig. It checks
// IAR_HOME, then walks up from the working directory, and falls back to the
// working directory itself.
func ResolveBasePath() string {
	if home := os.Getenv("IAR_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := "INFO"
	switch eventType {
	case observability.EventEnhanceBackendFailed, observability.EventEnhanceBackendDisabled:
		level = "WARN"
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
