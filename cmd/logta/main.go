// Package main contains the entrypoint for the logta message logger bot.
//
// The bot must have Group Privacy disabled in @BotFather to receive every
// group message.
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
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/archive"
	"github.com/edgard/facto/internal/bot"
	"github.com/edgard/facto/internal/bot/handlers"
	"github.com/edgard/facto/internal/bot/tasks"
	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/database"
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

// run wires the configuration, log store, optional title model and Telegram
// bot, runs until ctx is cancelled and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadLogta(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	store, err := database.NewMongo(ctx, cfg.Database, log)
	if err != nil {
		log.Error("Failed to connect to MongoDB", "error", err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("Failed to close MongoDB connection", "error", err)
		}
	}()
	if err := store.EnsureLogIndexes(ctx); err != nil {
		log.Error("Failed to create MongoDB indexes", "error", err)
		return 1
	}

	registry := archive.NewRegistry(store, log)
	if err := registry.Load(ctx); err != nil {
		log.Error("Failed to load activated chats", "error", err)
	}

	var model llm.Client
	if cfg.AI.Enabled() {
		model, err = llm.New(ctx, cfg.AI, log)
		if err != nil {
			log.Error("Failed to initialize AI client", "error", err)
			return 1
		}
	} else {
		log.Info("AI service not configured (OPENAI_API_KEY not set), titles are truncated")
	}

	arch := archive.NewLogger(store, registry, llm.NewTitleGenerator(model, log), cfg.Messages, cfg.Telegram.MaxMessageLength, log)

	hDeps := handlers.LogtaDeps{
		Logger:   log,
		Archive:  arch,
		OwnerID:  cfg.OwnerID,
		Messages: cfg.Messages,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Stats: map[string]tasks.StatsFunc{
			"messages": func(ctx context.Context) (int64, error) {
				return store.Count(ctx, database.CollectionMessages, 0)
			},
			"events": func(ctx context.Context) (int64, error) {
				return store.Count(ctx, database.CollectionEvents, 0)
			},
			"activated_chats": func(context.Context) (int64, error) {
				return int64(registry.Len()), nil
			},
		},
	}

	tgOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.ArchiveUpdates(hDeps)),
		tgbot.WithDefaultHandler(func(context.Context, *tgbot.Bot, *models.Update) {}),
		tgbot.WithWorkers(cfg.Telegram.Workers),
		tgbot.WithErrorsHandler(func(err error) { log.Error("Telegram polling error", "error", err) }),
		tgbot.WithAllowedUpdates(tgbot.AllowedUpdates{"message", "edited_message", "channel_post"}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterLogtaCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	var botOptions []bot.Option
	if cfg.Metrics.Addr != "" {
		botOptions = append(botOptions, bot.WithMetrics(cfg.Metrics.Addr))
	}
	app := bot.NewBot(log, tg, sched, botOptions...)

	log.Info("Starting logta...", "activated_chats", registry.Len())
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
