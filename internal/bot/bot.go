// Package bot manages the lifecycle of a running bot: the Telegram update
// listener, the task scheduler and the optional metrics endpoint.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edgard/facto/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

// Listener receives Telegram updates until ctx is cancelled. *bot.Bot
// satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

// ShutdownFunc releases a resource once every component has stopped.
type ShutdownFunc func(ctx context.Context) error

// Bot represents a running bot and manages its components' lifecycle.
type Bot struct {
	logger      *slog.Logger
	listener    Listener
	scheduler   *Scheduler
	metricsAddr string
	shutdown    []ShutdownFunc
}

// Option customizes a Bot.
type Option func(*Bot)

// WithMetrics serves Prometheus metrics on addr while the bot runs.
func WithMetrics(addr string) Option {
	return func(b *Bot) { b.metricsAddr = addr }
}

// WithShutdown registers f to run after the bot stops, in registration order.
func WithShutdown(f ShutdownFunc) Option {
	return func(b *Bot) { b.shutdown = append(b.shutdown, f) }
}

// NewBot creates a bot from its listener and scheduler. scheduler may be nil.
func NewBot(logger *slog.Logger, listener Listener, scheduler *Scheduler, opts ...Option) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		listener:  listener,
		scheduler: scheduler,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. Shutdown functions run before it returns.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	if b.metricsAddr != "" {
		g.Go(func() error {
			if err := metrics.Serve(gCtx, b.metricsAddr, b.logger); err != nil {
				return fmt.Errorf("metrics endpoint failed: %w", err)
			}
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()
	b.runShutdown()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

func (b *Bot) runShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, f := range b.shutdown {
		if err := f(ctx); err != nil {
			b.logger.Error("Shutdown step failed", "error", err)
		}
	}
}
