// Package handlers contains the Telegram command and message handlers of
// both bots, along with their registration logic and middleware.
package handlers

import (
	"context"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OwnerOnly creates a middleware that passes only messages sent by ownerID.
// Anyone else is ignored without a reply.
func OwnerOnly(ownerID int64, logger *slog.Logger) tgbot.Middleware {
	log := logger.With("middleware", "OwnerOnly")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}
			if update.Message.From.ID != ownerID {
				log.DebugContext(ctx, "Ignoring command from non-owner",
					"user_id", update.Message.From.ID,
					"chat_id", update.Message.Chat.ID)
				return
			}
			next(ctx, bot, update)
		}
	}
}

// ArchiveUpdates creates a middleware that stores every message, edit and
// channel post once the routed handler has finished.
func ArchiveUpdates(deps LogtaDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			next(ctx, bot, update)
			deps.Archive.HandleUpdate(ctx, update)
		}
	}
}
