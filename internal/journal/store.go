// Package journal implements the diary conversation flow: thread state,
// the draft, revise and finalize round trips against the language model, and
// the helpers that shape entries and replies for Telegram.
package journal

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/edgard/facto/internal/database"
	"github.com/edgard/facto/internal/llm"
	"github.com/edgard/facto/internal/metrics"
)

// Conversation is a snapshot of one thread's state.
type Conversation struct {
	ThreadID         int
	History          []llm.Message
	PendingDeletions []int

	version uint64
}

type state struct {
	history []llm.Message
	pending []int
	version uint64
}

// threadLock serializes the backend writes of one thread.
type threadLock struct {
	sync.Mutex
	refs int
}

// Store holds active conversations by thread id and chat modes by chat id.
// Memory is authoritative; every change is mirrored to the backend and a
// backend failure is logged without failing the call. Writes of one thread
// reach the backend in order; a snapshot superseded by a later change or by
// End is never written.
type Store struct {
	mu      sync.Mutex
	convs   map[int]*state
	modes   map[int64]ChatMode
	seq     uint64
	locks   map[int]*threadLock
	backend database.ConversationBackend
	log     *slog.Logger
}

// NewStore creates an empty store mirrored to backend. A nil backend keeps
// state in memory only.
func NewStore(backend database.ConversationBackend, log *slog.Logger) *Store {
	if backend == nil {
		backend = database.NewMemoryConversations()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		convs:   make(map[int]*state),
		modes:   make(map[int64]ChatMode),
		locks:   make(map[int]*threadLock),
		backend: backend,
		log:     log.With("component", "conversation_store", "persistent", backend.Persistent()),
	}
}

// Persistent reports whether state survives a restart.
func (s *Store) Persistent() bool {
	return s.backend.Persistent()
}

// Load replaces the in-memory state with the backend's contents.
func (s *Store) Load(ctx context.Context) error {
	convs, err := s.backend.Conversations(ctx)
	if err != nil {
		return err
	}
	modes, err := s.backend.ChatModes(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.convs = make(map[int]*state, len(convs))
	for _, c := range convs {
		s.convs[c.ThreadID] = &state{history: c.History, pending: c.PendingDeletionIDs}
	}
	s.modes = make(map[int64]ChatMode, len(modes))
	for _, m := range modes {
		s.modes[m.ChatID] = ChatMode(m.Mode)
	}
	active := len(s.convs)
	s.mu.Unlock()

	metrics.ActiveConversations.Set(float64(active))
	s.log.InfoContext(ctx, "Loaded conversation state", "conversations", active, "chat_modes", len(modes))
	return nil
}

// SetChatMode records the mode of a chat.
func (s *Store) SetChatMode(ctx context.Context, chatID int64, mode ChatMode) {
	s.mu.Lock()
	s.modes[chatID] = mode
	s.mu.Unlock()

	if err := s.backend.SaveChatMode(ctx, database.ChatMode{ChatID: chatID, Mode: string(mode)}); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist chat mode", "chat_id", chatID, "error", err)
	}
}

// ChatMode returns the mode of a chat, ModeJournal when unset.
func (s *Store) ChatMode(chatID int64) ChatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode, ok := s.modes[chatID]; ok {
		return mode
	}
	return ModeJournal
}

// Start activates threadID with seed as its history, replacing any
// previous conversation on the same thread.
func (s *Store) Start(ctx context.Context, threadID int, seed []llm.Message) {
	s.mu.Lock()
	s.convs[threadID] = &state{history: slices.Clone(seed)}
	s.bumpLocked(threadID)
	snap := s.snapshotLocked(threadID)
	active := len(s.convs)
	s.mu.Unlock()

	metrics.ActiveConversations.Set(float64(active))
	s.persist(ctx, snap)
}

// Conversation returns a copy of the state of threadID.
func (s *Store) Conversation(threadID int) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[threadID]; !ok {
		return Conversation{}, false
	}
	return s.snapshotLocked(threadID), true
}

// Append adds a turn to an active conversation and reports whether the
// thread was active.
func (s *Store) Append(ctx context.Context, threadID int, role llm.Role, content string) bool {
	s.mu.Lock()
	st, ok := s.convs[threadID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	st.history = append(st.history, llm.Message{Role: role, Content: content})
	s.bumpLocked(threadID)
	snap := s.snapshotLocked(threadID)
	s.mu.Unlock()

	s.persist(ctx, snap)
	return true
}

// MarkForDeletion tracks a message to remove when the thread closes.
func (s *Store) MarkForDeletion(ctx context.Context, threadID, messageID int) bool {
	s.mu.Lock()
	st, ok := s.convs[threadID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	st.pending = append(st.pending, messageID)
	s.bumpLocked(threadID)
	snap := s.snapshotLocked(threadID)
	s.mu.Unlock()

	s.persist(ctx, snap)
	return true
}

// PendingDeletions returns the tracked message ids of threadID.
func (s *Store) PendingDeletions(threadID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.convs[threadID]; ok {
		return slices.Clone(st.pending)
	}
	return nil
}

// End removes the conversation of threadID and reports whether one existed.
func (s *Store) End(ctx context.Context, threadID int) bool {
	s.mu.Lock()
	_, ok := s.convs[threadID]
	delete(s.convs, threadID)
	active := len(s.convs)
	s.mu.Unlock()

	if !ok {
		return false
	}
	metrics.ActiveConversations.Set(float64(active))

	unlock := s.lockThread(threadID)
	defer unlock()
	if s.IsActive(threadID) {
		// Restarted while waiting; the new conversation owns the document.
		return true
	}
	if err := s.backend.DeleteConversation(ctx, threadID); err != nil {
		s.log.ErrorContext(ctx, "Failed to delete persisted conversation", "thread_id", threadID, "error", err)
	}
	return true
}

// IsActive reports whether threadID has a conversation.
func (s *Store) IsActive(threadID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.convs[threadID]
	return ok
}

// Len returns the number of active conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

func (s *Store) bumpLocked(threadID int) {
	s.seq++
	s.convs[threadID].version = s.seq
}

func (s *Store) snapshotLocked(threadID int) Conversation {
	st := s.convs[threadID]
	return Conversation{
		ThreadID:         threadID,
		History:          slices.Clone(st.history),
		PendingDeletions: slices.Clone(st.pending),
		version:          st.version,
	}
}

// lockThread acquires the backend write lock of threadID.
func (s *Store) lockThread(threadID int) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[threadID]
	if !ok {
		l = &threadLock{}
		s.locks[threadID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, threadID)
		}
		s.mu.Unlock()
	}
}

// current reports whether c is still the latest state of its thread.
func (s *Store) current(c Conversation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.convs[c.ThreadID]
	return ok && st.version == c.version
}

func (s *Store) persist(ctx context.Context, c Conversation) {
	unlock := s.lockThread(c.ThreadID)
	defer unlock()
	if !s.current(c) {
		return
	}

	err := s.backend.SaveConversation(ctx, database.Conversation{
		ThreadID:           c.ThreadID,
		History:            c.History,
		PendingDeletionIDs: c.PendingDeletions,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to persist conversation", "thread_id", c.ThreadID, "error", err)
	}
}
