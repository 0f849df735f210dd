// Package archive implements the logger bot: every message, edit and channel
// post is stored in the log store, chats are enrolled on first contact and the
// owner can query counts and topic transcripts.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/llm"
	"github.com/edgard/facto/internal/metrics"
	"github.com/edgard/facto/internal/telegram"
)

const (
	kindMessage     = "message"
	kindEdited      = "edited"
	kindChannelPost = "channel_post"

	historyTextLimit = 100
)

// Titler produces forum topic titles. *llm.TitleGenerator satisfies it.
type Titler interface {
	Title(ctx context.Context, seed string) string
}

// Logger writes updates to the log store and serves the owner commands.
type Logger struct {
	store    database.LogStore
	registry *Registry
	titles   Titler
	msgs     config.LogtaMessages
	maxLen   int
	now      func() time.Time
	log      *slog.Logger
}

// Option customizes a Logger.
type Option func(*Logger)

// WithClock overrides the time source used for logged_at stamps.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// NewLogger wires the store, the activation registry and the title source.
// maxLen bounds command replies.
func NewLogger(store database.LogStore, registry *Registry, titles Titler, msgs config.LogtaMessages, maxLen int, log *slog.Logger, opts ...Option) *Logger {
	if log == nil {
		log = slog.Default()
	}
	if maxLen <= 0 {
		maxLen = config.DefaultMaxMessageLength
	}
	l := &Logger{
		store:    store,
		registry: registry,
		titles:   titles,
		msgs:     msgs,
		maxLen:   maxLen,
		now:      time.Now,
		log:      log.With("component", "archive"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// HandleUpdate logs the message, edit or channel post carried by update.
// Failures are logged and never returned so the update is still acknowledged.
func (l *Logger) HandleUpdate(ctx context.Context, update *models.Update) {
	var err error
	switch {
	case update.Message != nil:
		err = l.LogMessage(ctx, update.Message)
	case update.EditedMessage != nil:
		err = l.LogEdited(ctx, update.EditedMessage)
	case update.ChannelPost != nil:
		err = l.LogChannelPost(ctx, update.ChannelPost)
	default:
		return
	}
	if err != nil {
		l.log.ErrorContext(ctx, "Failed to log update", "update_id", update.ID, "error", err)
	}
}

// LogMessage stores a group or private message.
func (l *Logger) LogMessage(ctx context.Context, msg *models.Message) error {
	l.activate(ctx, msg.Chat, l.msgs.PrivateChat)

	rec, err := BuildRecord(msg, false)
	if err != nil {
		metrics.LoggedTotal.WithLabelValues(string(database.CollectionMessages), kindMessage, "error").Inc()
		return err
	}
	rec["logged_at"] = l.now().UTC()

	coll := l.collectionFor(rec)
	if err := l.upsert(ctx, coll, kindMessage, rec); err != nil {
		return err
	}
	l.log.InfoContext(ctx, "Logged message",
		"from", senderName(msg.From),
		"chat_title", chatTitle(msg.Chat, l.msgs.PrivateChat),
		"message_id", msg.ID,
		"collection", coll)
	return nil
}

// LogEdited stores an edited message, carrying the previous text or caption
// into the stored edit history.
func (l *Logger) LogEdited(ctx context.Context, msg *models.Message) error {
	l.activate(ctx, msg.Chat, l.msgs.PrivateChat)

	rec, err := BuildRecord(msg, false)
	if err != nil {
		metrics.LoggedTotal.WithLabelValues(string(database.CollectionMessages), kindEdited, "error").Inc()
		return err
	}

	prev, err := l.store.FindMessage(ctx, msg.Chat.ID, msg.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		prev = nil
	case err != nil:
		metrics.LoggedTotal.WithLabelValues(string(database.CollectionMessages), kindEdited, "error").Inc()
		return fmt.Errorf("failed to read message %d before edit: %w", msg.ID, err)
	}

	rec = database.PrepareEdit(prev, rec, l.now().UTC())
	if err := l.upsert(ctx, database.CollectionMessages, kindEdited, rec); err != nil {
		return err
	}
	l.log.InfoContext(ctx, "Logged edited message", "from", senderName(msg.From), "message_id", msg.ID)
	return nil
}

// LogChannelPost stores a channel post.
func (l *Logger) LogChannelPost(ctx context.Context, msg *models.Message) error {
	l.activate(ctx, msg.Chat, l.msgs.UnknownChannel)

	rec, err := BuildRecord(msg, true)
	if err != nil {
		metrics.LoggedTotal.WithLabelValues(string(database.CollectionMessages), kindChannelPost, "error").Inc()
		return err
	}
	rec["logged_at"] = l.now().UTC()

	if err := l.upsert(ctx, l.collectionFor(rec), kindChannelPost, rec); err != nil {
		return err
	}
	l.log.InfoContext(ctx, "Logged channel post",
		"chat_title", chatTitle(msg.Chat, l.msgs.UnknownChannel),
		"message_id", msg.ID)
	return nil
}

// Stats renders message and event counts for chatID and across all chats.
func (l *Logger) Stats(ctx context.Context, chatID int64) (string, error) {
	var counts [4]int64
	queries := []struct {
		coll   database.Collection
		chatID int64
	}{
		{database.CollectionMessages, chatID},
		{database.CollectionEvents, chatID},
		{database.CollectionMessages, 0},
		{database.CollectionEvents, 0},
	}
	for i, q := range queries {
		n, err := l.store.Count(ctx, q.coll, q.chatID)
		if err != nil {
			return "", fmt.Errorf("failed to count %s: %w", q.coll, err)
		}
		counts[i] = n
	}

	return fmt.Sprintf("Message Logger Stats:\n"+
		"This chat:\n"+
		"  - Messages: %s\n"+
		"  - Events: %s\n"+
		"Total:\n"+
		"  - Messages: %s\n"+
		"  - Events: %s",
		humanize.Comma(counts[0]), humanize.Comma(counts[1]),
		humanize.Comma(counts[2]), humanize.Comma(counts[3])), nil
}

// TopicHistory renders the stored transcript of a forum topic, oldest first.
func (l *Logger) TopicHistory(ctx context.Context, chatID int64, threadID int) (string, error) {
	msgs, err := l.store.MessagesByTopic(ctx, chatID, threadID, database.DefaultTopicLimit)
	if err != nil {
		return "", fmt.Errorf("failed to load topic %d history: %w", threadID, err)
	}
	if len(msgs) == 0 {
		return l.msgs.HistoryEmpty, nil
	}
	return FormatHistory(msgs, l.maxLen), nil
}

// FormatHistory lists msgs one per line under a header, cutting each text at
// 100 characters and the whole reply at maxLen runes. A non-positive maxLen
// leaves the reply uncut.
func FormatHistory(msgs []database.StoredMessage, maxLen int) string {
	lines := make([]string, 0, len(msgs)+1)
	lines = append(lines, fmt.Sprintf("Topic Conversation (%d messages):\n", len(msgs)))
	for _, m := range msgs {
		name := "Unknown"
		if m.FromUser != nil && m.FromUser.FirstName != "" {
			name = m.FromUser.FirstName
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", name, truncate(historyText(m), historyTextLimit)))
	}

	out := strings.Join(lines, "\n")
	if maxLen <= 0 {
		return out
	}
	r := []rune(out)
	if len(r) <= maxLen {
		return out
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// CreateTopic opens a forum topic titled after the command arguments and
// reposts them inside it with a mention of the author.
func (l *Logger) CreateTopic(ctx context.Context, p telegram.Platform, msg *models.Message) error {
	args := telegram.CommandArgs(msg.Text)
	if len(args) == 0 {
		_, err := telegram.Reply(ctx, p, msg, l.msgs.TopicUsage, models.ParseModeMarkdownV1)
		return err
	}
	seed := strings.Join(args, " ")
	chatID := msg.Chat.ID

	if err := telegram.SendTyping(ctx, p, chatID, 0); err != nil {
		l.log.DebugContext(ctx, "Typing action failed", "chat_id", chatID, "error", err)
	}

	title := l.title(ctx, seed)
	topic, err := p.CreateForumTopic(ctx, &bot.CreateForumTopicParams{ChatID: chatID, Name: title})
	if err == nil && topic == nil {
		err = telegram.ErrNoMessage
	}
	if err == nil {
		text := fmt.Sprintf("Topic created by %s\n\n%s", telegram.MentionHTML(msg.From), seed)
		_, err = telegram.Send(ctx, p, chatID, topic.MessageThreadID, text, models.ParseModeHTML)
	}
	if err != nil {
		if _, replyErr := telegram.Reply(ctx, p, msg, l.msgs.TopicFailed, ""); replyErr != nil {
			l.log.ErrorContext(ctx, "Failed to send topic error reply", "chat_id", chatID, "error", replyErr)
		}
		return fmt.Errorf("failed to create topic %q: %w", title, err)
	}

	l.log.InfoContext(ctx, "Created topic",
		"title", title,
		"thread_id", topic.MessageThreadID,
		"by", senderName(msg.From),
		"chat_id", chatID)
	return nil
}

func (l *Logger) title(ctx context.Context, seed string) string {
	if l.titles == nil {
		return llm.TruncateTitle(seed)
	}
	return l.titles.Title(ctx, seed)
}

func (l *Logger) activate(ctx context.Context, chat models.Chat, fallback string) {
	if l.registry == nil {
		return
	}
	if _, err := l.registry.Activate(ctx, chat.ID, chatTitle(chat, fallback)); err != nil {
		l.log.ErrorContext(ctx, "Failed to activate chat", "chat_id", chat.ID, "error", err)
	}
}

func (l *Logger) collectionFor(rec database.Record) database.Collection {
	if IsEvent(rec) {
		return database.CollectionEvents
	}
	return database.CollectionMessages
}

func (l *Logger) upsert(ctx context.Context, coll database.Collection, kind string, rec database.Record) error {
	inserted, err := l.store.Upsert(ctx, coll, rec)
	if err != nil {
		metrics.LoggedTotal.WithLabelValues(string(coll), kind, "error").Inc()
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	metrics.LoggedTotal.WithLabelValues(string(coll), kind, "ok").Inc()
	l.log.DebugContext(ctx, "Stored document", "collection", coll, "kind", kind, "inserted", inserted)
	return nil
}

func chatTitle(chat models.Chat, fallback string) string {
	if chat.Title != "" {
		return chat.Title
	}
	return fallback
}

func senderName(u *models.User) string {
	if u == nil {
		return "Unknown"
	}
	return u.FirstName
}

func historyText(m database.StoredMessage) string {
	if m.Text != nil && *m.Text != "" {
		return *m.Text
	}
	if m.Caption != nil && *m.Caption != "" {
		return *m.Caption
	}
	return "[media]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
