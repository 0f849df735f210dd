// Package database provides the document-store layer shared by both bots:
// conversation persistence for the journal bot and message logging for the
// logger bot. MongoDB and in-memory implementations satisfy the same
// interfaces; Persistent reports which one is in use.
package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("document not found")

// Collection names a logical collection of the logger store.
type Collection string

const (
	CollectionMessages       Collection = "messages"
	CollectionEvents         Collection = "events"
	CollectionActivatedChats Collection = "activated_chats"
	CollectionConversations  Collection = "conversations"
	CollectionChatModes      Collection = "chat_modes"
)

// Record is a generic document as written to the store. Writes merge the
// record's top-level fields over any existing document with the same key.
type Record = bson.M

// Pinger is implemented by stores that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
	Persistent() bool
}

// ConversationBackend mirrors journal conversations and chat modes.
type ConversationBackend interface {
	Pinger

	SaveConversation(ctx context.Context, conv Conversation) error
	DeleteConversation(ctx context.Context, threadID int) error
	Conversations(ctx context.Context) ([]Conversation, error)

	SaveChatMode(ctx context.Context, mode ChatMode) error
	ChatModes(ctx context.Context) ([]ChatMode, error)
}

// LogStore persists logged messages, events and the set of activated chats.
type LogStore interface {
	Pinger

	// Upsert writes rec into coll keyed by its message_id and chat_id and
	// reports whether a new document was inserted.
	Upsert(ctx context.Context, coll Collection, rec Record) (bool, error)
	FindMessage(ctx context.Context, chatID int64, messageID int) (*StoredMessage, error)

	MessagesByChat(ctx context.Context, chatID int64, skip, limit int64) ([]StoredMessage, error)
	MessagesByUser(ctx context.Context, userID int64, limit int64) ([]StoredMessage, error)
	MessagesByTopic(ctx context.Context, chatID int64, threadID int, limit int64) ([]StoredMessage, error)

	// Count counts documents in coll; a zero chatID counts across all chats.
	Count(ctx context.Context, coll Collection, chatID int64) (int64, error)

	SaveActivatedChat(ctx context.Context, chat ActivatedChat) error
	DeleteActivatedChat(ctx context.Context, chatID int64) error
	ActivatedChats(ctx context.Context) ([]ActivatedChat, error)
}

// Default query limits.
const (
	DefaultChatLimit  int64 = 100
	DefaultUserLimit  int64 = 100
	DefaultTopicLimit int64 = 500
)
