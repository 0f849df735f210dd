package telegram_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/telegram"
	"github.com/edgard/facto/internal/telegram/telegramtest"
)

func TestSendWithFallback(t *testing.T) {
	t.Parallel()

	t.Run("formatted accepted", func(t *testing.T) {
		t.Parallel()

		p := &telegramtest.Platform{}
		if _, err := telegram.SendWithFallback(context.Background(), p, 1, 2, "*bold*", models.ParseModeMarkdownV1); err != nil {
			t.Fatal(err)
		}
		sent := p.Messages()
		if len(sent) != 1 || sent[0].ParseMode != models.ParseModeMarkdownV1 || sent[0].ThreadID != 2 {
			t.Errorf("sent = %+v", sent)
		}
	})

	t.Run("falls back to plain text", func(t *testing.T) {
		t.Parallel()

		p := &telegramtest.Platform{RejectParseMode: models.ParseModeMarkdownV1}
		msg, err := telegram.SendWithFallback(context.Background(), p, 1, 2, "*unbalanced", models.ParseModeMarkdownV1)
		if err != nil {
			t.Fatal(err)
		}
		sent := p.Messages()
		if len(sent) != 1 || sent[0].ParseMode != "" || sent[0].Text != "*unbalanced" || msg.ID != sent[0].ID {
			t.Errorf("sent = %+v", sent)
		}
	})

	t.Run("both fail", func(t *testing.T) {
		t.Parallel()

		p := &telegramtest.Platform{RejectText: "nope"}
		if _, err := telegram.SendWithFallback(context.Background(), p, 1, 0, "nope", models.ParseModeMarkdownV1); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestReply(t *testing.T) {
	t.Parallel()

	p := &telegramtest.Platform{}
	ctx := context.Background()

	_, _ = telegram.Reply(ctx, p, &models.Message{Chat: models.Chat{ID: 5}, MessageThreadID: 9, IsTopicMessage: true}, "in topic", "")
	_, _ = telegram.Reply(ctx, p, &models.Message{Chat: models.Chat{ID: 5}, MessageThreadID: 9}, "reply thread", "")

	sent := p.Messages()
	if len(sent) != 2 || sent[0].ThreadID != 9 || sent[1].ThreadID != 0 || sent[0].ChatID != 5 {
		t.Errorf("sent = %+v", sent)
	}
}

func TestMentionHTML(t *testing.T) {
	t.Parallel()

	got := telegram.MentionHTML(&models.User{ID: 42, FirstName: "Ana", LastName: "<B>"})
	want := `<a href="tg://user?id=42">Ana &lt;B&gt;</a>`
	if got != want {
		t.Errorf("MentionHTML() = %q, want %q", got, want)
	}
	if got := telegram.MentionHTML(&models.User{ID: 1, FirstName: "Solo"}); !strings.Contains(got, ">Solo</a>") {
		t.Errorf("MentionHTML() = %q", got)
	}
	if telegram.MentionHTML(nil) != "" {
		t.Error("nil user should render empty")
	}
}
