package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/metrics"
)

// Registry is the set of chats enrolled for logging. Any chat the bot sees
// is activated on first contact; nothing deactivates a chat automatically.
type Registry struct {
	mu    sync.Mutex
	chats map[int64]struct{}
	store database.LogStore
	now   func() time.Time
	log   *slog.Logger
}

// NewRegistry returns an empty registry backed by store.
func NewRegistry(store database.LogStore, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		chats: make(map[int64]struct{}),
		store: store,
		now:   time.Now,
		log:   log.With("component", "activation_registry"),
	}
}

// Load replaces the in-memory set with the chats held by the store.
func (r *Registry) Load(ctx context.Context) error {
	chats, err := r.store.ActivatedChats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load activated chats: %w", err)
	}

	r.mu.Lock()
	r.chats = make(map[int64]struct{}, len(chats))
	for _, c := range chats {
		r.chats[c.ChatID] = struct{}{}
	}
	n := len(r.chats)
	r.mu.Unlock()

	metrics.ActivatedChats.Set(float64(n))
	r.log.InfoContext(ctx, "Loaded activated chats", "count", n)
	return nil
}

// Activate enrolls chatID and reports whether it was newly added. A store
// failure leaves the chat inactive so the next message retries. The store
// write runs without holding the lock; when two callers race on the same
// chat, only the first to finish reports true.
func (r *Registry) Activate(ctx context.Context, chatID int64, title string) (bool, error) {
	if r.IsActive(chatID) {
		return false, nil
	}

	err := r.store.SaveActivatedChat(ctx, database.ActivatedChat{
		ChatID:      chatID,
		ChatTitle:   title,
		ActivatedAt: r.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to activate chat %d: %w", chatID, err)
	}

	r.mu.Lock()
	if _, ok := r.chats[chatID]; ok {
		r.mu.Unlock()
		return false, nil
	}
	r.chats[chatID] = struct{}{}
	n := len(r.chats)
	r.mu.Unlock()

	metrics.ActivatedChats.Set(float64(n))
	r.log.InfoContext(ctx, "Activated chat", "chat_id", chatID, "chat_title", title)
	return true, nil
}

// Deactivate removes chatID and reports whether it was active.
func (r *Registry) Deactivate(ctx context.Context, chatID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[chatID]; !ok {
		return false, nil
	}
	if err := r.store.DeleteActivatedChat(ctx, chatID); err != nil {
		return false, fmt.Errorf("failed to deactivate chat %d: %w", chatID, err)
	}

	delete(r.chats, chatID)
	metrics.ActivatedChats.Set(float64(len(r.chats)))
	r.log.InfoContext(ctx, "Deactivated chat", "chat_id", chatID)
	return true, nil
}

// IsActive reports whether chatID is enrolled.
func (r *Registry) IsActive(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.chats[chatID]
	return ok
}

// Len returns the number of enrolled chats.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chats)
}
