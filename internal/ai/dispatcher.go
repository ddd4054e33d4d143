package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/darkjarvis/darkjarvis/internal/metrics"
)

// Outcome labels recorded per request.
const (
	outcomeSuccess       = "success"
	outcomeNotConfigured = "not_configured"
	outcomeUnknown       = "unknown_provider"
	outcomeTimeout       = "timeout"
	outcomeEmpty         = "empty"
	outcomeError         = "error"
)

// Selector reports the currently selected provider name.
type Selector interface {
	Provider() string
}

// DispatcherConfig holds dispatcher settings.
type DispatcherConfig struct {
	Timeout       time.Duration
	NotConfigured string
	Fallback      string
}

// Dispatcher routes completions to the selected provider.
type Dispatcher struct {
	registry *Registry
	selector Selector
	cfg      DispatcherConfig
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewDispatcher creates a dispatcher. m may be nil.
func NewDispatcher(registry *Registry, selector Selector, cfg DispatcherConfig, m *metrics.Metrics, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		registry: registry,
		selector: selector,
		cfg:      cfg,
		metrics:  m,
		log:      log.With("component", "ai_dispatcher"),
	}
}

// TryComplete sends msgs to the selected provider and returns its reply.
// Unconfigured providers fail with ErrNotConfigured without any network
// call. The configured timeout bounds the call.
func (d *Dispatcher) TryComplete(ctx context.Context, msgs []Message) (string, error) {
	name := d.selector.Provider()
	p, err := d.registry.Get(name)
	if err != nil {
		d.metrics.AIRequest(name, outcomeUnknown)
		return "", err
	}
	if !p.Configured() {
		d.metrics.AIRequest(name, outcomeNotConfigured)
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := p.Complete(ctx, msgs)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			d.metrics.AIRequest(name, outcomeTimeout)
			return "", fmt.Errorf("%s completion timed out after %s: %w", name, d.cfg.Timeout, context.DeadlineExceeded)
		}
		d.metrics.AIRequest(name, outcomeError)
		return "", fmt.Errorf("%s completion failed: %w", name, err)
	}

	reply = CleanReply(reply)
	if reply == "" {
		d.metrics.AIRequest(name, outcomeEmpty)
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, name)
	}

	d.metrics.AIRequest(name, outcomeSuccess)
	d.log.DebugContext(ctx, "Completion succeeded", "provider", name, "duration", time.Since(start), "reply_length", len(reply))
	return reply, nil
}

// Complete is TryComplete with every failure mapped to user-facing text.
// It never retries.
func (d *Dispatcher) Complete(ctx context.Context, msgs []Message) string {
	reply, err := d.TryComplete(ctx, msgs)
	switch {
	case err == nil:
		return reply
	case errors.Is(err, ErrNotConfigured):
		d.log.WarnContext(ctx, "AI provider not configured", "provider", d.selector.Provider())
		return d.cfg.NotConfigured
	case errors.Is(err, context.DeadlineExceeded):
		d.log.ErrorContext(ctx, "AI request timed out", "provider", d.selector.Provider(), "timeout", d.cfg.Timeout)
		return d.cfg.Fallback
	default:
		d.log.ErrorContext(ctx, "AI request failed", "provider", d.selector.Provider(), "error", err)
		return d.cfg.Fallback
	}
}
