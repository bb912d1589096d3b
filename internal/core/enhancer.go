package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// GenerateOptions carries the sampling knobs passed to a model backend.
type GenerateOptions struct {
	Temperature     float64
	MaxOutputTokens int
}

// EnhancerBackend is a language-model service able to complete a prompt.
// Implementations return an error for any transport or response failure.
type EnhancerBackend interface {
	Name() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ExtendedBackend is implemented by backends running in an extended (cloud)
// mode. Extended backends use the structured prompt and are retried on every
// call instead of being disabled after their first failure.
type ExtendedBackend interface {
	EnhancerBackend
	Extended() bool
}

// RetryingBackend is implemented by backends that stay enabled after a
// failure, such as remote services prone to transient network errors.
type RetryingBackend interface {
	RetryOnFailure() bool
}

// TextEnhancer rewrites a raw task into a polished accomplishment sentence.
type TextEnhancer interface {
	Enhance(ctx context.Context, rawTask string) string
}

// Tier identifies which step of the fallback chain produced a rewrite.
type Tier string

const (
	TierOffline   Tier = "offline"
	TierHosted    Tier = "hosted"
	TierRuleBased Tier = "rule_based"
)

// Enhancement is the result of enhancing a single task.
type Enhancement struct {
	Text    string `json:"text"`
	Tier    Tier   `json:"tier"`
	Backend string `json:"backend,omitempty"`
}

// EnhancerOptions configures NewEnhancer. Nil backends are skipped.
type EnhancerOptions struct {
	Offline   EnhancerBackend
	Hosted    EnhancerBackend
	Sanitizer Sanitizer
	Events    EventLogger
	Logger    *zap.Logger
}

type backendSlot struct {
	tier    Tier
	backend EnhancerBackend
}

// Enhancer tries the offline backend, then the hosted backend, then the
// rule-based rewrite. It owns the per-session "disabled after failure"
// state, so one Enhancer must not be shared between concurrent reports.
type Enhancer struct {
	slots     []backendSlot
	disabled  map[string]bool
	sanitizer Sanitizer
	events    EventLogger
	logger    *zap.Logger
	runID     string
}

// NewEnhancer creates an Enhancer over the configured backends.
func NewEnhancer(opts EnhancerOptions) *Enhancer {
	e := &Enhancer{
		disabled:  make(map[string]bool),
		sanitizer: opts.Sanitizer,
		events:    opts.Events,
		logger:    opts.Logger,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if opts.Offline != nil {
		e.slots = append(e.slots, backendSlot{tier: TierOffline, backend: opts.Offline})
	}
	if opts.Hosted != nil {
		e.slots = append(e.slots, backendSlot{tier: TierHosted, backend: opts.Hosted})
	}
	return e
}

// RuleBasedEnhancer returns an Enhancer with no model backends.
func RuleBasedEnhancer() *Enhancer {
	return NewEnhancer(EnhancerOptions{})
}

// Reset re-enables every backend, starting a new session.
func (e *Enhancer) Reset() {
	e.disabled = make(map[string]bool)
}

// StartSession resets the enhancer and tags the events it logs from now on
// with runID.
func (e *Enhancer) StartSession(runID string) {
	e.Reset()
	e.runID = runID
}

// Backends returns the names of the configured backends in priority order.
func (e *Enhancer) Backends() []string {
	names := make([]string, len(e.slots))
	for i, s := range e.slots {
		names[i] = s.backend.Name()
	}
	return names
}

// Enhance implements TextEnhancer.
func (e *Enhancer) Enhance(ctx context.Context, rawTask string) string {
	return e.EnhanceDetailed(ctx, rawTask).Text
}

// EnhanceDetailed rewrites rawTask and reports which tier produced the
// result. Backend failures never surface as errors; they only move the
// request on to the next tier.
func (e *Enhancer) EnhanceDetailed(ctx context.Context, rawTask string) Enhancement {
	for _, slot := range e.slots {
		name := slot.backend.Name()
		if e.disabled[name] {
			continue
		}

		text, err := e.tryBackend(ctx, slot.backend, rawTask)
		if err != nil {
			e.handleFailure(slot, err)
			continue
		}
		if text == "" {
			e.logger.Debug("backend returned no usable text", zap.String("backend", name))
			continue
		}

		e.logEvent("enhance.tier_used", map[string]any{"tier": string(slot.tier), "backend": name})
		return Enhancement{Text: text, Tier: slot.tier, Backend: name}
	}

	e.logEvent("enhance.tier_used", map[string]any{"tier": string(TierRuleBased)})
	return Enhancement{Text: RuleBasedRewrite(rawTask), Tier: TierRuleBased}
}

func (e *Enhancer) tryBackend(ctx context.Context, b EnhancerBackend, rawTask string) (string, error) {
	extended := isExtended(b)
	out, err := b.Generate(ctx, BuildPrompt(rawTask, extended), DefaultGenerateOptions(extended))
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.Name(), err)
	}
	return e.sanitizer.Sanitize(out), nil
}

func (e *Enhancer) handleFailure(slot backendSlot, err error) {
	name := slot.backend.Name()
	e.logger.Warn("task enhancement backend failed",
		zap.String("backend", name),
		zap.String("tier", string(slot.tier)),
		zap.Error(err))
	e.logEvent("enhance.backend_failed", map[string]any{"backend": name, "error": err.Error()})

	if retriesOnFailure(slot.backend) {
		return
	}
	e.disabled[name] = true
	e.logger.Info("backend disabled for the rest of this session", zap.String("backend", name))
	e.logEvent("enhance.backend_disabled", map[string]any{"backend": name})
}

func (e *Enhancer) logEvent(eventType string, data map[string]any) {
	if e.events == nil {
		return
	}
	if e.runID != "" {
		data["run_id"] = e.runID
	}
	if err := e.events.LogEvent(eventType, data); err != nil {
		e.logger.Debug("writing event failed", zap.String("type", eventType), zap.Error(err))
	}
}

func isExtended(b EnhancerBackend) bool {
	x, ok := b.(ExtendedBackend)
	return ok && x.Extended()
}

func retriesOnFailure(b EnhancerBackend) bool {
	if isExtended(b) {
		return true
	}
	r, ok := b.(RetryingBackend)
	return ok && r.RetryOnFailure()
}

// BuildPrompt returns the instruction sent to a model for rawTask. Extended
// backends get a structured prompt that ends in an "Accomplishment:" cue.
func BuildPrompt(rawTask string, extended bool) string {
	rawTask = strings.TrimSpace(rawTask)
	if extended {
		return "Task: " + rawTask + "\n\n" +
			"Rewrite this task as one professional accomplishment statement in past tense. " +
			"Start with a strong action verb. No first-person pronouns. " +
			"Output only the accomplishment sentence, nothing else.\n\n" +
			`Example: "Developed a comprehensive project plan that streamlined workflow processes."` + "\n\n" +
			"Accomplishment:"
	}
	return "Rewrite the following task as a professional accomplishment in past tense. " +
		"Do not use first-person pronouns (I, we, my, our). " +
		"Start the sentence with a strong action verb and output only the rewritten accomplishment sentence " +
		"with no introductions or explanations. " +
		"Task: " + rawTask
}

// DefaultGenerateOptions returns the sampling options for a backend mode.
func DefaultGenerateOptions(extended bool) GenerateOptions {
	if extended {
		return GenerateOptions{Temperature: 0.3, MaxOutputTokens: 200}
	}
	return GenerateOptions{Temperature: 0.5, MaxOutputTokens: 150}
}
