package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/telegram"
)

// NewStatsHandler returns a handler for the owner-only /stats command.
func NewStatsHandler(deps LogtaDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps LogtaDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")
	if update.Message == nil {
		return
	}
	msg := update.Message
	p := h.deps.platform(b)

	text, err := h.deps.Archive.Stats(ctx, msg.Chat.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to compute stats", "error", err, "chat_id", msg.Chat.ID)
		text = h.deps.Messages.StatsFailed
	}
	if _, err := telegram.Reply(ctx, p, msg, text, ""); err != nil {
		log.ErrorContext(ctx, "Failed to send stats", "error", err, "chat_id", msg.Chat.ID)
	}
}
