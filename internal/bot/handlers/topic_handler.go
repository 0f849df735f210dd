package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTopicHandler returns a handler for the /topic command.
func NewTopicHandler(deps LogtaDeps) bot.HandlerFunc {
	return topicHandler{deps}.Handle
}

type topicHandler struct {
	deps LogtaDeps
}

func (h topicHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "topic")
	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /topic command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
	if err := h.deps.Archive.CreateTopic(ctx, h.deps.platform(b), msg); err != nil {
		log.ErrorContext(ctx, "Failed to create topic", "error", err, "chat_id", msg.Chat.ID)
	}
}
