package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/llm"
)

func textRecord(messageID int, chatID int64, threadID int, date int64, userID int64, text string) database.Record {
	rec := database.Record{
		"message_id": int64(messageID),
		"chat_id":    chatID,
		"date":       date,
		"text":       text,
		"from_user":  map[string]any{"id": userID, "first_name": "Ana"},
		"logged_at":  time.Now().UTC(),
	}
	if threadID != 0 {
		rec["message_thread_id"] = int64(threadID)
	}
	return rec
}

func TestMemoryLogStore_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := database.NewMemoryLogStore()
	rec := textRecord(1, -100, 0, 1000, 7, "hello")

	inserted, err := s.Upsert(ctx, database.CollectionMessages, rec)
	if err != nil || !inserted {
		t.Fatalf("first Upsert() = %v, %v; want inserted", inserted, err)
	}
	inserted, err = s.Upsert(ctx, database.CollectionMessages, rec)
	if err != nil || inserted {
		t.Fatalf("second Upsert() = %v, %v; want update", inserted, err)
	}

	n, err := s.Count(ctx, database.CollectionMessages, 0)
	if err != nil || n != 1 {
		t.Fatalf("Count() = %d, %v; want 1", n, err)
	}
	got, err := s.FindMessage(ctx, -100, 1)
	if err != nil {
		t.Fatalf("FindMessage() error = %v", err)
	}
	if got.Text == nil || *got.Text != "hello" || got.FromUser == nil || got.FromUser.ID != 7 {
		t.Errorf("FindMessage() = %+v", got)
	}
}

func TestMemoryLogStore_UpsertMergesFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := database.NewMemoryLogStore()

	if _, err := s.Upsert(ctx, database.CollectionMessages, textRecord(1, -100, 0, 1000, 7, "hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upsert(ctx, database.CollectionMessages, database.Record{
		"message_id": int64(1), "chat_id": int64(-100), "caption": "new caption",
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindMessage(ctx, -100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text == nil || *got.Text != "hello" {
		t.Errorf("text should survive a partial $set, got %v", got.Text)
	}
	if got.Caption == nil || *got.Caption != "new caption" {
		t.Errorf("caption = %v, want new caption", got.Caption)
	}
}

func TestMemoryLogStore_UpsertRequiresKey(t *testing.T) {
	t.Parallel()

	s := database.NewMemoryLogStore()
	if _, err := s.Upsert(context.Background(), database.CollectionMessages, database.Record{"text": "x"}); err == nil {
		t.Fatal("Upsert() without identity should fail")
	}
}

func TestMemoryLogStore_Queries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := database.NewMemoryLogStore()
	for _, rec := range []database.Record{
		textRecord(1, -100, 5, 1000, 7, "first"),
		textRecord(2, -100, 5, 3000, 8, "third"),
		textRecord(3, -100, 0, 2000, 7, "second"),
		textRecord(4, -200, 5, 1500, 7, "other chat"),
	} {
		if _, err := s.Upsert(ctx, database.CollectionMessages, rec); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Upsert(ctx, database.CollectionEvents, database.Record{
		"message_id": int64(9), "chat_id": int64(-100), "new_chat_title": "x",
	}); err != nil {
		t.Fatal(err)
	}

	ids := func(msgs []database.StoredMessage) []int {
		out := make([]int, len(msgs))
		for i, m := range msgs {
			out[i] = m.MessageID
		}
		return out
	}
	equal := func(a, b []int) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	byChat, err := s.MessagesByChat(ctx, -100, 0, 0)
	if err != nil || !equal(ids(byChat), []int{2, 3, 1}) {
		t.Errorf("MessagesByChat() = %v, %v; want [2 3 1]", ids(byChat), err)
	}
	paged, err := s.MessagesByChat(ctx, -100, 1, 1)
	if err != nil || !equal(ids(paged), []int{3}) {
		t.Errorf("MessagesByChat(skip 1, limit 1) = %v, %v; want [3]", ids(paged), err)
	}
	byUser, err := s.MessagesByUser(ctx, 7, 0)
	if err != nil || !equal(ids(byUser), []int{3, 4, 1}) {
		t.Errorf("MessagesByUser() = %v, %v; want [3 4 1]", ids(byUser), err)
	}
	byTopic, err := s.MessagesByTopic(ctx, -100, 5, 0)
	if err != nil || !equal(ids(byTopic), []int{1, 2}) {
		t.Errorf("MessagesByTopic() = %v, %v; want [1 2]", ids(byTopic), err)
	}

	counts := []struct {
		coll   database.Collection
		chatID int64
		want   int64
	}{
		{database.CollectionMessages, 0, 4},
		{database.CollectionMessages, -100, 3},
		{database.CollectionMessages, -300, 0},
		{database.CollectionEvents, 0, 1},
		{database.CollectionEvents, -200, 0},
	}
	for _, c := range counts {
		if n, err := s.Count(ctx, c.coll, c.chatID); err != nil || n != c.want {
			t.Errorf("Count(%s, %d) = %d, %v; want %d", c.coll, c.chatID, n, err, c.want)
		}
	}
}

func TestMemoryLogStore_FindMessageNotFound(t *testing.T) {
	t.Parallel()

	_, err := database.NewMemoryLogStore().FindMessage(context.Background(), 1, 1)
	if err != database.ErrNotFound {
		t.Fatalf("FindMessage() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryLogStore_ActivatedChats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := database.NewMemoryLogStore()
	now := time.Now().UTC()

	_ = s.SaveActivatedChat(ctx, database.ActivatedChat{ChatID: 1, ChatTitle: "a", ActivatedAt: now})
	_ = s.SaveActivatedChat(ctx, database.ActivatedChat{ChatID: 1, ChatTitle: "a", ActivatedAt: now})
	_ = s.SaveActivatedChat(ctx, database.ActivatedChat{ChatID: 2, ChatTitle: "b", ActivatedAt: now})

	chats, _ := s.ActivatedChats(ctx)
	if len(chats) != 2 {
		t.Fatalf("ActivatedChats() len = %d, want 2", len(chats))
	}
	_ = s.DeleteActivatedChat(ctx, 1)
	chats, _ = s.ActivatedChats(ctx)
	if len(chats) != 1 || chats[0].ChatID != 2 {
		t.Errorf("ActivatedChats() after delete = %+v", chats)
	}
}

func TestMemoryConversations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := database.NewMemoryConversations()
	if s.Persistent() {
		t.Error("memory backend must not report persistence")
	}

	history := []llm.Message{{Role: llm.RoleSystem, Content: "prompt"}}
	if err := s.SaveConversation(ctx, database.Conversation{ThreadID: 10, History: history}); err != nil {
		t.Fatal(err)
	}
	history[0].Content = "mutated"

	convs, _ := s.Conversations(ctx)
	if len(convs) != 1 || convs[0].History[0].Content != "prompt" {
		t.Errorf("Conversations() = %+v, want stored copy", convs)
	}

	_ = s.DeleteConversation(ctx, 10)
	if convs, _ := s.Conversations(ctx); len(convs) != 0 {
		t.Errorf("Conversations() after delete = %+v", convs)
	}

	_ = s.SaveChatMode(ctx, database.ChatMode{ChatID: 3, Mode: "journal"})
	modes, _ := s.ChatModes(ctx)
	if len(modes) != 1 || modes[0].Mode != "journal" {
		t.Errorf("ChatModes() = %+v", modes)
	}
}
