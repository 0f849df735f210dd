package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDoneHandler returns a handler for the /done command.
func NewDoneHandler(deps FactoDeps) bot.HandlerFunc {
	return doneHandler{deps}.Handle
}

type doneHandler struct {
	deps FactoDeps
}

func (h doneHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "done")
	if update.Message == nil {
		return
	}
	msg := update.Message

	if err := h.deps.Journal.Finalize(ctx, h.deps.platform(b), msg); err != nil {
		log.InfoContext(ctx, "Finalize not performed", "reason", err, "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
	}
}
