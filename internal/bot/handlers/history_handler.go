package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/telegram"
)

// NewHistoryHandler returns a handler for the owner-only /history command.
func NewHistoryHandler(deps LogtaDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps LogtaDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")
	if update.Message == nil {
		return
	}
	msg := update.Message
	p := h.deps.platform(b)

	var text string
	if msg.MessageThreadID == 0 {
		text = h.deps.Messages.TopicOnly
	} else {
		var err error
		text, err = h.deps.Archive.TopicHistory(ctx, msg.Chat.ID, msg.MessageThreadID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to load topic history", "error", err, "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
			text = h.deps.Messages.HistoryFailed
		}
	}

	if _, err := telegram.Reply(ctx, p, msg, text, ""); err != nil {
		log.ErrorContext(ctx, "Failed to send history", "error", err, "chat_id", msg.Chat.ID)
	}
}
