package integration

import (
	"context"

	"go.uber.org/zap"

	"github.com/valter-silva-au/iar/internal/core"
	"github.com/valter-silva-au/iar/pkg/models"
)

// EnhancerDeps are the collaborators used when building an enhancer chain.
type EnhancerDeps struct {
	Checker ConnectivityChecker
	Events  core.EventLogger
	Logger  *zap.Logger
}

// NewEnhancerFromConfig builds the offline -> hosted -> rule-based chain
// described by cfg. The offline tier is added only when enabled and its
// probe succeeds; the hosted tier only when an API key is set and, if a
// checker is given, its endpoint is reachable. Problems are logged and the
// tier is skipped; this never fails.
func NewEnhancerFromConfig(ctx context.Context, cfg models.EnhancerConfig, deps EnhancerDeps) *core.Enhancer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := core.EnhancerOptions{
		Sanitizer: core.Sanitizer{SimilarityThreshold: cfg.SimilarityThreshold},
		Events:    deps.Events,
		Logger:    logger,
	}

	if cfg.Offline.Enabled {
		ollama := NewOllamaBackend(OllamaConfig{
			BaseURL: cfg.Offline.BaseURL,
			Model:   cfg.Offline.Model,
			Timeout: cfg.Timeout,
		})
		if err := ollama.Probe(ctx); err != nil {
			logger.Warn("offline backend unavailable, falling back", zap.Error(err))
		} else {
			logger.Info("using offline backend", zap.String("backend", ollama.Name()))
			opts.Offline = ollama
		}
	}

	if cfg.Hosted.APIKey != "" {
		hosted, err := NewHostedBackend(HostedConfig{
			APIKey:  cfg.Hosted.APIKey,
			Model:   cfg.Hosted.Model,
			BaseURL: cfg.Hosted.BaseURL,
			Timeout: cfg.Timeout,
		})
		switch {
		case err != nil:
			logger.Warn("hosted backend not configured", zap.Error(err))
		case deps.Checker != nil && !deps.Checker.IsReachable(ctx, hostedEndpoint(cfg.Hosted.BaseURL)):
			logger.Warn("hosted backend unreachable, falling back", zap.String("base_url", cfg.Hosted.BaseURL))
		default:
			logger.Info("using hosted backend", zap.String("backend", hosted.Name()))
			opts.Hosted = hosted
		}
	}

	if opts.Offline == nil && opts.Hosted == nil {
		logger.Info("using rule-based past tense conversion")
	}
	return core.NewEnhancer(opts)
}

func hostedEndpoint(baseURL string) string {
	if baseURL == "" {
		return DefaultHuggingFaceURL
	}
	return baseURL
}
