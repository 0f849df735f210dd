package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/journal"
)

// NewJournalHandler returns a handler for the /journal command.
func NewJournalHandler(deps FactoDeps) bot.HandlerFunc {
	return journalHandler{deps}.Handle
}

type journalHandler struct {
	deps FactoDeps
}

func (h journalHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "journal")
	if update.Message == nil {
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /journal command", "chat_id", msg.Chat.ID, "user_id", userID(msg))
	threadID, err := h.deps.Journal.StartEntry(ctx, h.deps.platform(b), msg)
	switch {
	case errors.Is(err, journal.ErrEmptyEntry):
		log.DebugContext(ctx, "Empty journal entry, usage sent", "chat_id", msg.Chat.ID)
	case err != nil:
		log.ErrorContext(ctx, "Journal entry failed", "error", err, "chat_id", msg.Chat.ID, "thread_id", threadID)
	}
}

func userID(msg *models.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}
