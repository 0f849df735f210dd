package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/journal"
	"github.com/edgard/facto/internal/telegram"
)

// NewConversationHandler returns the default handler of the journal bot. It
// relays plain group replies inside active journal topics to the model.
func NewConversationHandler(deps FactoDeps) bot.HandlerFunc {
	return conversationHandler{deps}.Handle
}

type conversationHandler struct {
	deps FactoDeps
}

func (h conversationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !IsConversationReply(update) {
		return
	}
	log := h.deps.Logger.With("handler", "conversation")
	msg := update.Message

	err := h.deps.Journal.Continue(ctx, h.deps.platform(b), msg)
	switch {
	case err == nil:
	case errors.Is(err, journal.ErrNotInTopic), errors.Is(err, journal.ErrNoConversation):
		log.DebugContext(ctx, "Ignoring message outside a journal conversation", "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
	default:
		log.ErrorContext(ctx, "Conversation round trip failed", "error", err, "chat_id", msg.Chat.ID, "thread_id", msg.MessageThreadID)
	}
}

// IsConversationReply reports whether update is a plain text group message
// that is not a command.
func IsConversationReply(update *models.Update) bool {
	msg := update.Message
	if msg == nil || msg.Text == "" || telegram.IsAnyCommand(msg.Text) {
		return false
	}
	return msg.Chat.Type == models.ChatTypeGroup || msg.Chat.Type == models.ChatTypeSupergroup
}
