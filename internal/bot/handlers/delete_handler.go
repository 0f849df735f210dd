package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDeleteHandler returns a handler for the /delete command.
func NewDeleteHandler(deps FactoDeps) bot.HandlerFunc {
	return deleteHandler{deps}.Handle
}

type deleteHandler struct {
	deps FactoDeps
}

func (h deleteHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "delete")
	if update.Message == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /delete command", "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
	if err := h.deps.Journal.Close(ctx, h.deps.platform(b), msg); err != nil {
		log.WarnContext(ctx, "Topic close incomplete", "error", err, "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
	}
}
