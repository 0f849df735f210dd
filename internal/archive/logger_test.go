package archive_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/archive"
	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/telegram/telegramtest"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeTitler struct {
	title string
	seeds []string
}

func (f *fakeTitler) Title(_ context.Context, seed string) string {
	f.seeds = append(f.seeds, seed)
	return f.title
}

func newLogger(t *testing.T, store database.LogStore, titles archive.Titler) (*archive.Logger, *archive.Registry) {
	t.Helper()
	reg := archive.NewRegistry(store, nil)
	l := archive.NewLogger(store, reg, titles, config.DefaultLogtaMessages, 4096, nil,
		archive.WithClock(func() time.Time { return fixedNow }))
	return l, reg
}

func groupMessage(id int, text string) *models.Message {
	return &models.Message{
		ID:   id,
		Date: 1700000000 + id,
		Chat: models.Chat{ID: -100, Type: "supergroup", Title: "Team"},
		From: &models.User{ID: 7, FirstName: "Ana"},
		Text: text,
	}
}

func TestLogger_LogMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, reg := newLogger(t, store, nil)

	if err := l.LogMessage(ctx, groupMessage(1, "hello")); err != nil {
		t.Fatalf("LogMessage() error = %v", err)
	}
	if !reg.IsActive(-100) {
		t.Error("chat not activated on first message")
	}

	got, err := store.FindMessage(ctx, -100, 1)
	if err != nil {
		t.Fatalf("FindMessage() error = %v", err)
	}
	if got.Text == nil || *got.Text != "hello" {
		t.Errorf("Text = %v", got.Text)
	}
	if got.FromUser == nil || got.FromUser.ID != 7 {
		t.Errorf("FromUser = %+v", got.FromUser)
	}
	if !got.LoggedAt.Equal(fixedNow) {
		t.Errorf("LoggedAt = %v, want %v", got.LoggedAt, fixedNow)
	}
}

func TestLogger_LogMessageTwiceIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	for range 2 {
		if err := l.LogMessage(ctx, groupMessage(1, "same")); err != nil {
			t.Fatalf("LogMessage() error = %v", err)
		}
	}
	n, err := store.Count(ctx, database.CollectionMessages, 0)
	if err != nil || n != 1 {
		t.Fatalf("Count() = %d, %v; want 1", n, err)
	}
	got, _ := store.FindMessage(ctx, -100, 1)
	if got.WasEdited || len(got.EditHistory) != 0 {
		t.Errorf("duplicate delivery recorded as edit: %+v", got)
	}
}

func TestLogger_LogEditedKeepsHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	if err := l.LogMessage(ctx, groupMessage(1, "before")); err != nil {
		t.Fatal(err)
	}
	edited := groupMessage(1, "after")
	edited.EditDate = 1700000100
	if err := l.LogEdited(ctx, edited); err != nil {
		t.Fatalf("LogEdited() error = %v", err)
	}

	n, _ := store.Count(ctx, database.CollectionMessages, 0)
	if n != 1 {
		t.Fatalf("Count() = %d, want 1", n)
	}
	got, err := store.FindMessage(ctx, -100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text == nil || *got.Text != "after" || !got.WasEdited {
		t.Errorf("stored = text %v, was_edited %v", got.Text, got.WasEdited)
	}
	if len(got.EditHistory) != 1 {
		t.Fatalf("EditHistory = %+v, want one entry", got.EditHistory)
	}
	h := got.EditHistory[0]
	if h.Text == nil || *h.Text != "before" {
		t.Errorf("history text = %v, want before", h.Text)
	}
	if !h.EditedAt.Equal(fixedNow) {
		t.Errorf("history edited_at = %v, want logged_at %v", h.EditedAt, fixedNow)
	}
}

func TestLogger_LogEditedWithoutOriginal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	if err := l.LogEdited(ctx, groupMessage(9, "fresh")); err != nil {
		t.Fatalf("LogEdited() error = %v", err)
	}
	got, err := store.FindMessage(ctx, -100, 9)
	if err != nil {
		t.Fatal(err)
	}
	if !got.WasEdited || len(got.EditHistory) != 0 {
		t.Errorf("stored = %+v", got)
	}
}

func TestLogger_EventsRouteToEventCollection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	msg := groupMessage(2, "")
	msg.NewChatMembers = []models.User{{ID: 8, FirstName: "Bo"}}
	if err := l.LogMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	events, _ := store.Count(ctx, database.CollectionEvents, -100)
	messages, _ := store.Count(ctx, database.CollectionMessages, -100)
	if events != 1 || messages != 0 {
		t.Errorf("events = %d, messages = %d; want 1, 0", events, messages)
	}
}

func TestLogger_LogChannelPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, reg := newLogger(t, store, nil)

	post := &models.Message{
		ID:   4,
		Date: 1700000000,
		Chat: models.Chat{ID: -1009, Type: "channel"},
		Text: "news",
	}
	if err := l.LogChannelPost(ctx, post); err != nil {
		t.Fatalf("LogChannelPost() error = %v", err)
	}
	got, err := store.FindMessage(ctx, -1009, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsChannelPost || got.FromUser != nil {
		t.Errorf("stored = %+v", got)
	}

	chats, _ := store.ActivatedChats(ctx)
	if len(chats) != 1 || chats[0].ChatTitle != "Unknown Channel" || !reg.IsActive(-1009) {
		t.Errorf("activated chats = %+v", chats)
	}
}

func TestLogger_PrivateChatTitleFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	msg := groupMessage(1, "hi")
	msg.Chat = models.Chat{ID: 7, Type: "private"}
	if err := l.LogMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	chats, _ := store.ActivatedChats(ctx)
	if len(chats) != 1 || chats[0].ChatTitle != "Private Chat" {
		t.Errorf("activated chats = %+v", chats)
	}
}

func TestLogger_HandleUpdateSwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := &failingStore{MemoryLogStore: database.NewMemoryLogStore(), failUpsert: true}
	l, reg := newLogger(t, store, nil)

	l.HandleUpdate(ctx, &models.Update{ID: 1, Message: groupMessage(1, "lost")})

	if !reg.IsActive(-100) {
		t.Error("activation skipped when the write failed")
	}
	if err := l.LogMessage(ctx, groupMessage(2, "lost")); !errors.Is(err, errStore) {
		t.Errorf("LogMessage() error = %v, want store error", err)
	}
}

func TestLogger_HandleUpdateDispatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	l.HandleUpdate(ctx, &models.Update{ID: 1, Message: groupMessage(1, "a")})
	edited := groupMessage(1, "b")
	l.HandleUpdate(ctx, &models.Update{ID: 2, EditedMessage: edited})
	l.HandleUpdate(ctx, &models.Update{ID: 3, ChannelPost: &models.Message{
		ID: 1, Chat: models.Chat{ID: -200, Type: "channel", Title: "C"}, Text: "post",
	}})
	l.HandleUpdate(ctx, &models.Update{ID: 4})

	got, _ := store.FindMessage(ctx, -100, 1)
	if got == nil || !got.WasEdited || len(got.EditHistory) != 1 {
		t.Errorf("edited message = %+v", got)
	}
	if n, _ := store.Count(ctx, database.CollectionMessages, 0); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestLogger_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	for i := 1; i <= 3; i++ {
		if err := l.LogMessage(ctx, groupMessage(i, "m")); err != nil {
			t.Fatal(err)
		}
	}
	other := groupMessage(1, "elsewhere")
	other.Chat.ID = -300
	if err := l.LogMessage(ctx, other); err != nil {
		t.Fatal(err)
	}
	event := groupMessage(10, "")
	event.NewChatTitle = "Renamed"
	if err := l.LogMessage(ctx, event); err != nil {
		t.Fatal(err)
	}

	got, err := l.Stats(ctx, -100)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := "Message Logger Stats:\n" +
		"This chat:\n" +
		"  - Messages: 3\n" +
		"  - Events: 1\n" +
		"Total:\n" +
		"  - Messages: 4\n" +
		"  - Events: 1"
	if got != want {
		t.Errorf("Stats() =\n%s\nwant\n%s", got, want)
	}
}

type countingStore struct {
	*database.MemoryLogStore
	n int64
}

func (s countingStore) Count(context.Context, database.Collection, int64) (int64, error) {
	return s.n, nil
}

func TestLogger_StatsThousandsSeparator(t *testing.T) {
	t.Parallel()

	l, _ := newLogger(t, countingStore{MemoryLogStore: database.NewMemoryLogStore(), n: 1234567}, nil)
	got, err := l.Stats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "  - Messages: 1,234,567\n") {
		t.Errorf("Stats() = %q", got)
	}
}

func TestLogger_TopicHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := database.NewMemoryLogStore()
	l, _ := newLogger(t, store, nil)

	empty, err := l.TopicHistory(ctx, -100, 55)
	if err != nil || empty != config.DefaultLogtaMessages.HistoryEmpty {
		t.Fatalf("TopicHistory(empty) = %q, %v", empty, err)
	}

	first := groupMessage(1, "first")
	first.MessageThreadID = 55
	second := groupMessage(2, strings.Repeat("x", 120))
	second.MessageThreadID = 55
	second.From = nil
	photo := groupMessage(3, "")
	photo.MessageThreadID = 55
	photo.Caption = "a caption"
	media := groupMessage(4, "")
	media.MessageThreadID = 55
	outside := groupMessage(5, "other topic")
	outside.MessageThreadID = 56
	for _, m := range []*models.Message{media, photo, second, first, outside} {
		if err := l.LogMessage(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.TopicHistory(ctx, -100, 55)
	if err != nil {
		t.Fatalf("TopicHistory() error = %v", err)
	}
	want := "Topic Conversation (4 messages):\n\n" +
		"• Ana: first\n" +
		"• Unknown: " + strings.Repeat("x", 100) + "...\n" +
		"• Ana: a caption\n" +
		"• Ana: [media]"
	if got != want {
		t.Errorf("TopicHistory() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatHistory_TruncatesToLimit(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("y", 100)
	msgs := make([]database.StoredMessage, 200)
	for i := range msgs {
		msgs[i] = database.StoredMessage{MessageID: i, Text: &text}
	}

	got := archive.FormatHistory(msgs, 4096)
	if n := len([]rune(got)); n != 4096 {
		t.Fatalf("len = %d, want 4096", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got[len(got)-10:])
	}
}

func TestFormatHistory_TinyLimits(t *testing.T) {
	t.Parallel()

	text := "hello"
	msgs := []database.StoredMessage{{MessageID: 1, Text: &text}}
	full := archive.FormatHistory(msgs, 0)

	tests := []struct {
		maxLen int
		want   string
	}{
		{0, full},
		{-1, full},
		{1, "T"},
		{3, "Top"},
		{4, "T..."},
	}
	for _, tt := range tests {
		if got := archive.FormatHistory(msgs, tt.maxLen); got != tt.want {
			t.Errorf("FormatHistory(maxLen=%d) = %q, want %q", tt.maxLen, got, tt.want)
		}
	}
	if !strings.HasPrefix(full, "Topic Conversation (1 messages):") {
		t.Errorf("uncut reply = %q", full)
	}
}

func TestLogger_CreateTopic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := &telegramtest.Platform{}
	titles := &fakeTitler{title: "Database connection issue"}
	l, _ := newLogger(t, database.NewMemoryLogStore(), titles)

	msg := groupMessage(1, "/topic How do I   fix the database?")
	msg.From = &models.User{ID: 7, FirstName: "Ana", LastName: "Lima"}
	if err := l.CreateTopic(ctx, p, msg); err != nil {
		t.Fatalf("CreateTopic() error = %v", err)
	}

	if len(titles.seeds) != 1 || titles.seeds[0] != "How do I fix the database?" {
		t.Errorf("title seeds = %q", titles.seeds)
	}
	if len(p.Topics) != 1 || p.Topics[0] != "Database connection issue" {
		t.Errorf("topics = %q", p.Topics)
	}
	if p.Actions() != 1 {
		t.Errorf("chat actions = %d, want 1", p.Actions())
	}
	sent := p.Messages()
	if len(sent) != 1 {
		t.Fatalf("sent = %+v", sent)
	}
	want := `Topic created by <a href="tg://user?id=7">Ana Lima</a>` + "\n\nHow do I fix the database?"
	if sent[0].Text != want || sent[0].ThreadID != 501 || sent[0].ParseMode != models.ParseModeHTML {
		t.Errorf("sent = %+v", sent[0])
	}
}

func TestLogger_CreateTopicUsage(t *testing.T) {
	t.Parallel()

	p := &telegramtest.Platform{}
	l, _ := newLogger(t, database.NewMemoryLogStore(), nil)

	if err := l.CreateTopic(context.Background(), p, groupMessage(1, "/topic")); err != nil {
		t.Fatalf("CreateTopic() error = %v", err)
	}
	sent := p.Messages()
	if len(sent) != 1 || sent[0].Text != config.DefaultLogtaMessages.TopicUsage || sent[0].ParseMode != models.ParseModeMarkdownV1 {
		t.Errorf("sent = %+v", sent)
	}
	if len(p.Topics) != 0 {
		t.Errorf("topic created without text: %q", p.Topics)
	}
}

func TestLogger_CreateTopicWithoutTitler(t *testing.T) {
	t.Parallel()

	p := &telegramtest.Platform{}
	l, _ := newLogger(t, database.NewMemoryLogStore(), nil)

	long := strings.Repeat("word ", 20)
	if err := l.CreateTopic(context.Background(), p, groupMessage(1, "/topic "+long)); err != nil {
		t.Fatal(err)
	}
	if len(p.Topics) != 1 || len([]rune(p.Topics[0])) != 60 || !strings.HasSuffix(p.Topics[0], "...") {
		t.Errorf("topics = %q", p.Topics)
	}
}

func TestLogger_CreateTopicFailure(t *testing.T) {
	t.Parallel()

	p := &telegramtest.Platform{CreateTopicErr: telegramtest.ErrRejected}
	l, _ := newLogger(t, database.NewMemoryLogStore(), &fakeTitler{title: "t"})

	err := l.CreateTopic(context.Background(), p, groupMessage(1, "/topic hello"))
	if !errors.Is(err, telegramtest.ErrRejected) {
		t.Fatalf("CreateTopic() error = %v, want rejected", err)
	}
	sent := p.Messages()
	if len(sent) != 1 || sent[0].Text != config.DefaultLogtaMessages.TopicFailed {
		t.Errorf("sent = %+v", sent)
	}
}
