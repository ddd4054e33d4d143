// Package bot ties the Telegram poller, the task scheduler and the metrics
// endpoint into one lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/darkjarvis/darkjarvis/internal/metrics"
)

// Poller receives Telegram updates until ctx is cancelled. *tgbot.Bot
// satisfies it.
type Poller interface {
	Start(ctx context.Context)
}

var _ Poller = (*tgbot.Bot)(nil)

// Bot manages the lifecycle of the long-running components.
type Bot struct {
	logger      *slog.Logger
	poller      Poller
	scheduler   *Scheduler
	metrics     *metrics.Metrics
	metricsAddr string
}

// NewBot creates the orchestrator. An empty metricsAddr disables the
// metrics endpoint.
func NewBot(logger *slog.Logger, poller Poller, scheduler *Scheduler, m *metrics.Metrics, metricsAddr string) *Bot {
	return &Bot{
		logger:      logger.With("component", "bot_orchestrator"),
		poller:      poller,
		scheduler:   scheduler,
		metrics:     m,
		metricsAddr: metricsAddr,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.poller.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.metrics != nil && b.metricsAddr != "" {
		g.Go(func() error {
			return b.metrics.Serve(gCtx, b.metricsAddr, b.logger)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
