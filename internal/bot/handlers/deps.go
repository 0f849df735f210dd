package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/telegram"
)

// Journal is the conversation flow driven by the journal bot handlers.
// *journal.Orchestrator satisfies it.
type Journal interface {
	StartEntry(ctx context.Context, p telegram.Platform, msg *models.Message) (int, error)
	Continue(ctx context.Context, p telegram.Platform, msg *models.Message) error
	Finalize(ctx context.Context, p telegram.Platform, msg *models.Message) error
	Close(ctx context.Context, p telegram.Platform, msg *models.Message) error
}

// Archive is the logging and query surface used by the logger bot handlers.
// *archive.Logger satisfies it.
type Archive interface {
	HandleUpdate(ctx context.Context, update *models.Update)
	Stats(ctx context.Context, chatID int64) (string, error)
	TopicHistory(ctx context.Context, chatID int64, threadID int) (string, error)
	CreateTopic(ctx context.Context, p telegram.Platform, msg *models.Message) error
}

// FactoDeps provides dependencies for the journal bot handlers.
type FactoDeps struct {
	Logger  *slog.Logger
	Journal Journal
	// Platform replaces the bot passed to handlers when set.
	Platform telegram.Platform
}

func (d FactoDeps) platform(b *bot.Bot) telegram.Platform {
	if d.Platform != nil {
		return d.Platform
	}
	return b
}

// LogtaDeps provides dependencies for the logger bot handlers.
type LogtaDeps struct {
	Logger   *slog.Logger
	Archive  Archive
	OwnerID  int64
	Messages config.LogtaMessages
	// Platform replaces the bot passed to handlers when set.
	Platform telegram.Platform
}

func (d LogtaDeps) platform(b *bot.Bot) telegram.Platform {
	if d.Platform != nil {
		return d.Platform
	}
	return b
}
