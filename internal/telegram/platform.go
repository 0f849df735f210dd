package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Platform is the subset of the Bot API used by the journal and logger
// flows. *bot.Bot satisfies it.
type Platform interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	CreateForumTopic(ctx context.Context, params *bot.CreateForumTopicParams) (*models.ForumTopic, error)
	DeleteForumTopic(ctx context.Context, params *bot.DeleteForumTopicParams) (bool, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

var _ Platform = (*bot.Bot)(nil)

// ErrNoMessage is returned when the platform accepted a send but returned
// no message.
var ErrNoMessage = errors.New("telegram returned no message")

// Send posts text into a chat and optional topic with the given parse mode.
func Send(ctx context.Context, p Platform, chatID int64, threadID int, text string, mode models.ParseMode) (*models.Message, error) {
	msg, err := p.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
		ParseMode:       mode,
	})
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrNoMessage
	}
	return msg, nil
}

// SendWithFallback sends text with mode and, when the platform rejects the
// formatted message, resends it as plain text.
func SendWithFallback(ctx context.Context, p Platform, chatID int64, threadID int, text string, mode models.ParseMode) (*models.Message, error) {
	msg, err := Send(ctx, p, chatID, threadID, text, mode)
	if err == nil || mode == "" {
		return msg, err
	}
	msg, plainErr := Send(ctx, p, chatID, threadID, text, "")
	if plainErr != nil {
		return nil, fmt.Errorf("formatted send failed (%v), plain send failed: %w", err, plainErr)
	}
	return msg, nil
}

// Reply answers msg in its chat, inside its topic when it has one.
func Reply(ctx context.Context, p Platform, msg *models.Message, text string, mode models.ParseMode) (*models.Message, error) {
	threadID := 0
	if msg.IsTopicMessage {
		threadID = msg.MessageThreadID
	}
	return Send(ctx, p, msg.Chat.ID, threadID, text, mode)
}

// MentionHTML links to the user by id using their full name.
func MentionHTML(u *models.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.ID, html.EscapeString(name))
}
