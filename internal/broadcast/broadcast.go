// Package broadcast delivers one message to many chats at a fixed pace.
package broadcast

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/darkjarvis/darkjarvis/internal/metrics"
)

// Sender is the subset of *bot.Bot used for delivery.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Generator produces the text for one target. An error skips the target and
// counts it as failed.
type Generator func(ctx context.Context, chatID int64) (string, error)

// Result summarizes a run.
type Result struct {
	RunID  string
	Sent   int
	Failed int
}

// Options configures a Broadcaster.
type Options struct {
	// Delay is the minimum spacing between sends. Zero disables pacing.
	Delay time.Duration
	// SendTimeout bounds each send. Zero means no per-send timeout.
	SendTimeout time.Duration
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Broadcaster fans a message out to chats one at a time.
type Broadcaster struct {
	sender      Sender
	limiter     *rate.Limiter
	sendTimeout time.Duration
	metrics     *metrics.Metrics
	log         *slog.Logger
}

// New creates a Broadcaster.
func New(sender Sender, opts Options) *Broadcaster {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Broadcaster{
		sender:      sender,
		limiter:     rate.NewLimiter(limit, 1),
		sendTimeout: opts.SendTimeout,
		metrics:     opts.Metrics,
		log:         log.With("component", "broadcaster"),
	}
}

// Send delivers the same text to every target.
func (b *Broadcaster) Send(ctx context.Context, source string, targets []int64, text string) Result {
	return b.SendEach(ctx, source, targets, func(context.Context, int64) (string, error) {
		return text, nil
	})
}

// SendEach delivers generated text to every target. A failing target is
// logged and counted; it never stops the run. Cancellation stops the run and
// counts the remaining targets as failed.
func (b *Broadcaster) SendEach(ctx context.Context, source string, targets []int64, gen Generator) Result {
	res := Result{RunID: uuid.NewString()}
	log := b.log.With("run_id", res.RunID, "source", source)
	log.InfoContext(ctx, "Broadcast started", "targets", len(targets))

	for i, chatID := range targets {
		if err := b.limiter.Wait(ctx); err != nil {
			res.Failed += len(targets) - i
			log.WarnContext(ctx, "Broadcast interrupted", "error", err, "remaining", len(targets)-i)
			break
		}

		if err := b.deliver(ctx, chatID, gen); err != nil {
			res.Failed++
			b.metrics.BroadcastSend(source, false)
			log.ErrorContext(ctx, "Broadcast delivery failed", "chat_id", chatID, "error", err)
			continue
		}
		res.Sent++
		b.metrics.BroadcastSend(source, true)
	}

	log.InfoContext(ctx, "Broadcast finished", "sent", res.Sent, "failed", res.Failed)
	return res
}

func (b *Broadcaster) deliver(ctx context.Context, chatID int64, gen Generator) error {
	text, err := gen(ctx, chatID)
	if err != nil {
		return fmt.Errorf("generate text: %w", err)
	}

	sendCtx := ctx
	if b.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, b.sendTimeout)
		defer cancel()
	}
	if _, err := b.sender.SendMessage(sendCtx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
