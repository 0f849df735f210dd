package database

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryConversations keeps journal state in process memory only.
type MemoryConversations struct {
	mu    sync.RWMutex
	convs map[int]Conversation
	modes map[int64]ChatMode
}

var _ ConversationBackend = (*MemoryConversations)(nil)

// NewMemoryConversations returns an empty non-persistent backend.
func NewMemoryConversations() *MemoryConversations {
	return &MemoryConversations{
		convs: make(map[int]Conversation),
		modes: make(map[int64]ChatMode),
	}
}

func (s *MemoryConversations) Persistent() bool             { return false }
func (s *MemoryConversations) Ping(_ context.Context) error { return nil }

func (s *MemoryConversations) SaveConversation(_ context.Context, conv Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv.History = slices.Clone(conv.History)
	conv.PendingDeletionIDs = slices.Clone(conv.PendingDeletionIDs)
	s.convs[conv.ThreadID] = conv
	return nil
}

func (s *MemoryConversations) DeleteConversation(_ context.Context, threadID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, threadID)
	return nil
}

func (s *MemoryConversations) Conversations(_ context.Context) ([]Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, 0, len(s.convs))
	for _, conv := range s.convs {
		out = append(out, conv)
	}
	return out, nil
}

func (s *MemoryConversations) SaveChatMode(_ context.Context, mode ChatMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[mode.ChatID] = mode
	return nil
}

func (s *MemoryConversations) ChatModes(_ context.Context) ([]ChatMode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.modes)), nil
}

type messageKey struct {
	messageID int
	chatID    int64
}

// MemoryLogStore is an in-process LogStore. Documents go through the BSON
// codec on write so reads behave like the MongoDB store.
type MemoryLogStore struct {
	mu    sync.RWMutex
	docs  map[Collection]map[messageKey]bson.M
	chats map[int64]ActivatedChat
}

var _ LogStore = (*MemoryLogStore)(nil)

// NewMemoryLogStore returns an empty non-persistent log store.
func NewMemoryLogStore() *MemoryLogStore {
	return &MemoryLogStore{
		docs: map[Collection]map[messageKey]bson.M{
			CollectionMessages: {},
			CollectionEvents:   {},
		},
		chats: make(map[int64]ActivatedChat),
	}
}

func (s *MemoryLogStore) Persistent() bool             { return false }
func (s *MemoryLogStore) Ping(_ context.Context) error { return nil }

func (s *MemoryLogStore) Upsert(_ context.Context, coll Collection, rec Record) (bool, error) {
	messageID, chatID, err := RecordKey(rec)
	if err != nil {
		return false, err
	}
	fields, err := roundTrip(rec)
	if err != nil {
		return false, fmt.Errorf("failed to encode record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.docs[coll]
	if !ok {
		return false, fmt.Errorf("unknown collection %q", coll)
	}
	key := messageKey{messageID: messageID, chatID: chatID}
	existing, found := docs[key]
	if !found {
		existing = bson.M{}
	}
	maps.Copy(existing, fields)
	docs[key] = existing
	return !found, nil
}

func (s *MemoryLogStore) FindMessage(_ context.Context, chatID int64, messageID int) (*StoredMessage, error) {
	s.mu.RLock()
	doc, ok := s.docs[CollectionMessages][messageKey{messageID: messageID, chatID: chatID}]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	msg, err := decodeMessage(doc)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *MemoryLogStore) MessagesByChat(_ context.Context, chatID int64, skip, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	msgs, err := s.filter(func(m StoredMessage) bool { return m.ChatID == chatID })
	if err != nil {
		return nil, err
	}
	sortByDate(msgs, true)
	return page(msgs, skip, limit), nil
}

func (s *MemoryLogStore) MessagesByUser(_ context.Context, userID int64, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	msgs, err := s.filter(func(m StoredMessage) bool { return m.FromUser != nil && m.FromUser.ID == userID })
	if err != nil {
		return nil, err
	}
	sortByDate(msgs, true)
	return page(msgs, 0, limit), nil
}

func (s *MemoryLogStore) MessagesByTopic(_ context.Context, chatID int64, threadID int, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultTopicLimit
	}
	msgs, err := s.filter(func(m StoredMessage) bool {
		return m.ChatID == chatID && m.MessageThreadID == threadID
	})
	if err != nil {
		return nil, err
	}
	sortByDate(msgs, false)
	return page(msgs, 0, limit), nil
}

func (s *MemoryLogStore) Count(_ context.Context, coll Collection, chatID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.docs[coll]
	if !ok {
		return 0, fmt.Errorf("unknown collection %q", coll)
	}
	if chatID == 0 {
		return int64(len(docs)), nil
	}
	var n int64
	for key := range docs {
		if key.chatID == chatID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryLogStore) SaveActivatedChat(_ context.Context, chat ActivatedChat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.ChatID] = chat
	return nil
}

func (s *MemoryLogStore) DeleteActivatedChat(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, chatID)
	return nil
}

func (s *MemoryLogStore) ActivatedChats(_ context.Context) ([]ActivatedChat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.chats)), nil
}

func (s *MemoryLogStore) filter(match func(StoredMessage) bool) ([]StoredMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StoredMessage
	for _, doc := range s.docs[CollectionMessages] {
		msg, err := decodeMessage(doc)
		if err != nil {
			return nil, err
		}
		if match(msg) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func sortByDate(msgs []StoredMessage, desc bool) {
	slices.SortStableFunc(msgs, func(a, b StoredMessage) int {
		if desc {
			a, b = b, a
		}
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return a.MessageID - b.MessageID
	})
}

func page(msgs []StoredMessage, skip, limit int64) []StoredMessage {
	if skip >= int64(len(msgs)) {
		return nil
	}
	msgs = msgs[skip:]
	if limit < int64(len(msgs)) {
		msgs = msgs[:limit]
	}
	return msgs
}

// roundTrip normalizes rec through the BSON codec.
func roundTrip(rec Record) (bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeMessage(doc bson.M) (StoredMessage, error) {
	var msg StoredMessage
	raw, err := bson.Marshal(doc)
	if err != nil {
		return msg, fmt.Errorf("failed to encode stored message: %w", err)
	}
	if err := bson.Unmarshal(raw, &msg); err != nil {
		return msg, fmt.Errorf("failed to decode stored message: %w", err)
	}
	return msg, nil
}
