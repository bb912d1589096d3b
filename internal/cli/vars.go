package cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/internal/observability"
	"github.com/valter-silva-au/iar/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Events    core.EventLogger
	StatsCalc observability.StatsCalculator
)

// EnhancerFactory builds the enhancer chain for one command run. Probing
// the model backends happens here, so it is only called by commands that
// enhance tasks.
var EnhancerFactory func(ctx context.Context, cfg models.EnhancerConfig, logger *zap.Logger) *core.Enhancer

// currentConfig returns a copy of the loaded configuration, or the defaults
// when none was loaded.
func currentConfig() *models.GlobalConfig {
	if Config == nil {
		return core.DefaultGlobalConfig()
	}
	cfg := *Config
	return &cfg
}

// newEnhancer builds the configured enhancer chain, or a rule-based one
// when no factory is wired.
func newEnhancer(ctx context.Context, cfg models.EnhancerConfig) *core.Enhancer {
	if EnhancerFactory == nil {
		return core.RuleBasedEnhancer()
	}
	return EnhancerFactory(ctx, cfg, logger)
}
