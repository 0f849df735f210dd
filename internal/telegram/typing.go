package telegram

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TypingInterval is how often the typing action is repeated; Telegram
// clears it after about five seconds.
const TypingInterval = 4 * time.Second

// SendTyping shows the typing indicator once.
func SendTyping(ctx context.Context, p Platform, chatID int64, threadID int) error {
	_, err := p.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Action:          models.ChatActionTyping,
	})
	return err
}

// KeepTyping sends the typing action immediately and then every interval
// until the returned stop function is called or ctx is done. Failures are
// logged at debug level only.
func KeepTyping(ctx context.Context, p Platform, log *slog.Logger, chatID int64, threadID int, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = TypingInterval
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	if err := SendTyping(ctx, p, chatID, threadID); err != nil {
		log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID, "thread_id", threadID)
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := SendTyping(ctx, p, chatID, threadID); err != nil && ctx.Err() == nil {
					log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID, "thread_id", threadID)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
