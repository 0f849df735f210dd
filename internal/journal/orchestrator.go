package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/llm"
	"github.com/edgard/facto/internal/metrics"
	"github.com/edgard/facto/internal/telegram"
)

var (
	ErrEmptyEntry     = errors.New("journal entry is empty")
	ErrNotInTopic     = errors.New("message is not inside a topic")
	ErrNoConversation = errors.New("no active conversation in this topic")
)

// Orchestrator drives journal threads: it opens a topic per entry, relays
// the thread history to the model and posts the replies back.
type Orchestrator struct {
	store          *Store
	model          llm.Client
	msgs           config.FactoMessages
	maxLen         int
	typingInterval time.Duration
	now            func() time.Time
	log            *slog.Logger

	cleanup sync.WaitGroup
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source used for entry dates.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithTypingInterval overrides how often the typing action repeats during a
// model call.
func WithTypingInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.typingInterval = d }
}

// NewOrchestrator wires the store and model client. maxLen bounds each
// outgoing chunk.
func NewOrchestrator(store *Store, model llm.Client, msgs config.FactoMessages, maxLen int, log *slog.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if maxLen <= 0 {
		maxLen = config.DefaultMaxMessageLength
	}
	o := &Orchestrator{
		store:          store,
		model:          model,
		msgs:           msgs,
		maxLen:         maxLen,
		typingInterval: telegram.TypingInterval,
		now:            time.Now,
		log:            log.With("component", "journal"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the conversation store.
func (o *Orchestrator) Store() *Store { return o.store }

// StartEntry handles /journal: it creates a topic named after the dated
// entry, seeds its conversation and runs the first round trip. It returns
// the new thread id.
func (o *Orchestrator) StartEntry(ctx context.Context, p telegram.Platform, msg *models.Message) (int, error) {
	text := ParseJournalCommand(msg.Text)
	if text == "" {
		o.reply(ctx, p, msg, o.msgs.Usage, models.ParseModeMarkdownV1)
		return 0, ErrEmptyEntry
	}

	chatID := msg.Chat.ID
	o.store.SetChatMode(ctx, chatID, ModeJournal)
	entry := DatedEntry(o.now(), text)

	topic, err := p.CreateForumTopic(ctx, &bot.CreateForumTopicParams{ChatID: chatID, Name: TopicName(entry)})
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to create journal topic", "chat_id", chatID, "error", err)
		o.reply(ctx, p, msg, o.msgs.TopicPermission, "")
		return 0, fmt.Errorf("failed to create topic: %w", err)
	}
	threadID := topic.MessageThreadID

	o.store.Start(ctx, threadID, []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt(o.store.ChatMode(chatID))},
		{Role: llm.RoleUser, Content: entry},
	})
	o.log.InfoContext(ctx, "Journal conversation started", "chat_id", chatID, "thread_id", threadID)

	welcome, err := telegram.Send(ctx, p, chatID, threadID, fmt.Sprintf(o.msgs.Processing, telegram.MentionHTML(msg.From)), models.ParseModeHTML)
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to send welcome message", "chat_id", chatID, "thread_id", threadID, "error", err)
		o.reply(ctx, p, msg, o.msgs.TopicPermission, "")
		return threadID, fmt.Errorf("failed to send welcome message: %w", err)
	}
	o.store.MarkForDeletion(ctx, threadID, welcome.ID)

	return threadID, o.roundTrip(ctx, p, chatID, threadID, "start")
}

// Continue handles a plain reply inside an active thread. Messages outside
// topics or in inactive threads are ignored and reported through the
// returned error.
func (o *Orchestrator) Continue(ctx context.Context, p telegram.Platform, msg *models.Message) error {
	threadID := msg.MessageThreadID
	if threadID == 0 {
		return ErrNotInTopic
	}
	if !o.store.IsActive(threadID) {
		return ErrNoConversation
	}

	o.store.MarkForDeletion(ctx, threadID, msg.ID)
	o.store.Append(ctx, threadID, llm.RoleUser, msg.Text)
	return o.roundTrip(ctx, p, msg.Chat.ID, threadID, "continue")
}

// Finalize handles /done by asking the model for the final version.
func (o *Orchestrator) Finalize(ctx context.Context, p telegram.Platform, msg *models.Message) error {
	threadID := msg.MessageThreadID
	if threadID == 0 {
		o.reply(ctx, p, msg, o.msgs.TopicOnly, "")
		return ErrNotInTopic
	}
	if !o.store.IsActive(threadID) {
		o.reply(ctx, p, msg, o.msgs.NoConversation, "")
		return ErrNoConversation
	}

	o.store.MarkForDeletion(ctx, threadID, msg.ID)
	o.store.Append(ctx, threadID, llm.RoleUser, o.msgs.Finalize)
	return o.roundTrip(ctx, p, msg.Chat.ID, threadID, "finalize")
}

// Close handles /delete: tracked messages are removed in the background,
// the conversation ends and the command message and topic are deleted.
// The topic deletion is attempted even without an active conversation.
func (o *Orchestrator) Close(ctx context.Context, p telegram.Platform, msg *models.Message) error {
	threadID := msg.MessageThreadID
	if threadID == 0 {
		o.reply(ctx, p, msg, o.msgs.TopicOnly, "")
		return ErrNotInTopic
	}
	chatID := msg.Chat.ID

	if ids := o.store.PendingDeletions(threadID); len(ids) > 0 {
		o.deleteInBackground(ctx, p, chatID, ids)
	}
	if o.store.End(ctx, threadID) {
		o.log.InfoContext(ctx, "Journal conversation ended", "chat_id", chatID, "thread_id", threadID)
	}

	err := o.deleteTopic(ctx, p, chatID, threadID, msg.ID)
	if err != nil {
		o.log.ErrorContext(ctx, "Failed to delete topic", "chat_id", chatID, "thread_id", threadID, "error", err)
		o.reply(ctx, p, msg, o.msgs.DeleteFailed, "")
	}
	return err
}

func (o *Orchestrator) deleteTopic(ctx context.Context, p telegram.Platform, chatID int64, threadID, commandID int) error {
	if _, err := p.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: commandID}); err != nil {
		return fmt.Errorf("failed to delete command message: %w", err)
	}
	if _, err := p.DeleteForumTopic(ctx, &bot.DeleteForumTopicParams{ChatID: chatID, MessageThreadID: threadID}); err != nil {
		return fmt.Errorf("failed to delete forum topic: %w", err)
	}
	return nil
}

// deleteInBackground removes ids without blocking the caller. Each failure
// is dropped; nothing is reported back.
func (o *Orchestrator) deleteInBackground(ctx context.Context, p telegram.Platform, chatID int64, ids []int) {
	ctx = context.WithoutCancel(ctx)
	o.cleanup.Add(1)
	go func() {
		defer o.cleanup.Done()
		failed := 0
		for _, id := range ids {
			if _, err := p.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: id}); err != nil {
				failed++
			}
		}
		o.log.DebugContext(ctx, "Deleted thread messages", "chat_id", chatID, "count", len(ids), "failed", failed)
	}()
}

// Wait blocks until background deletions finish.
func (o *Orchestrator) Wait() {
	o.cleanup.Wait()
}

// roundTrip sends the thread history to the model, records the reply and
// posts it in chunks. Failures are logged and answered with a generic
// message; the history is not rolled back.
func (o *Orchestrator) roundTrip(ctx context.Context, p telegram.Platform, chatID int64, threadID int, trigger string) error {
	stop := telegram.KeepTyping(ctx, p, o.log, chatID, threadID, o.typingInterval)
	err := o.exchange(ctx, p, chatID, threadID)
	stop()

	if err != nil {
		metrics.RoundTripsTotal.WithLabelValues(trigger, "error").Inc()
		o.log.ErrorContext(ctx, "AI round trip failed", "chat_id", chatID, "thread_id", threadID, "trigger", trigger, "error", err)
		if _, sendErr := telegram.Send(ctx, p, chatID, threadID, o.msgs.AIError, ""); sendErr != nil {
			o.log.ErrorContext(ctx, "Failed to send AI error message", "chat_id", chatID, "thread_id", threadID, "error", sendErr)
		}
		return err
	}

	metrics.RoundTripsTotal.WithLabelValues(trigger, "ok").Inc()
	return nil
}

func (o *Orchestrator) exchange(ctx context.Context, p telegram.Platform, chatID int64, threadID int) error {
	conv, ok := o.store.Conversation(threadID)
	if !ok {
		return ErrNoConversation
	}

	reply, err := o.model.Complete(ctx, conv.History)
	if err != nil {
		return err
	}
	o.store.Append(ctx, threadID, llm.RoleAssistant, reply)

	chunks := SplitMessage(reply, o.maxLen)
	for i, chunk := range chunks {
		if _, err := telegram.SendWithFallback(ctx, p, chatID, threadID, chunk, models.ParseModeMarkdownV1); err != nil {
			return fmt.Errorf("failed to send chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}
	o.log.DebugContext(ctx, "AI reply delivered", "thread_id", threadID, "chunks", len(chunks), "history", len(conv.History)+1)
	return nil
}

func (o *Orchestrator) reply(ctx context.Context, p telegram.Platform, msg *models.Message, text string, mode models.ParseMode) {
	if _, err := telegram.Reply(ctx, p, msg, text, mode); err != nil {
		o.log.ErrorContext(ctx, "Failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}
