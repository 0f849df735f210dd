// Package main contains the entrypoint for the facto journal bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/facto/internal/bot"
	"github.com/edgard/facto/internal/bot/handlers"
	"github.com/edgard/facto/internal/bot/tasks"
	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/journal"
	"github.com/edgard/facto/internal/llm"
	"github.com/edgard/facto/internal/logger"
	"github.com/edgard/facto/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires the configuration, store, model client and Telegram bot, runs
// until ctx is cancelled and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFacto(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	var botOptions []bot.Option
	backend, closeStore := openConversationBackend(ctx, cfg.Database, log)
	if closeStore != nil {
		botOptions = append(botOptions, bot.WithShutdown(closeStore))
	}

	store := journal.NewStore(backend, log)
	if err := store.Load(ctx); err != nil {
		log.Warn("Failed to load conversation state, starting empty", "error", err)
	}

	model, err := llm.New(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	orchestrator := journal.NewOrchestrator(store, model, cfg.Messages, cfg.Telegram.MaxMessageLength, log)
	botOptions = append(botOptions, bot.WithShutdown(func(context.Context) error {
		orchestrator.Wait()
		return nil
	}))

	hDeps := handlers.FactoDeps{
		Logger:  log,
		Journal: orchestrator,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  backend,
		Stats: map[string]tasks.StatsFunc{
			"active_conversations": func(context.Context) (int64, error) {
				return int64(store.Len()), nil
			},
		},
	}

	tgOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewConversationHandler(hDeps)),
		tgbot.WithWorkers(cfg.Telegram.Workers),
		tgbot.WithErrorsHandler(func(err error) { log.Error("Telegram polling error", "error", err) }),
		tgbot.WithAllowedUpdates(tgbot.AllowedUpdates{"message"}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterFactoCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	if cfg.Metrics.Addr != "" {
		botOptions = append(botOptions, bot.WithMetrics(cfg.Metrics.Addr))
	}
	app := bot.NewBot(log, tg, sched, botOptions...)

	log.Info("Starting facto...", "persistent", store.Persistent())
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

// openConversationBackend connects to MongoDB when a URI is configured. Any
// failure falls back to memory-only state.
func openConversationBackend(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (database.ConversationBackend, bot.ShutdownFunc) {
	if cfg.URI == "" {
		log.Info("MONGODB_URI not set, conversations are kept in memory only")
		return database.NewMemoryConversations(), nil
	}

	m, err := database.NewMongo(ctx, cfg, log)
	if err != nil {
		log.Warn("MongoDB unavailable, conversations are kept in memory only", "error", err)
		return database.NewMemoryConversations(), nil
	}
	if err := m.EnsureConversationIndexes(ctx); err != nil {
		log.Warn("Failed to create conversation indexes, conversations are kept in memory only", "error", err)
		_ = m.Close(ctx)
		return database.NewMemoryConversations(), nil
	}
	return m, m.Close
}
