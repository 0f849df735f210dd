package database

import (
	"time"

	"github.com/edgard/facto/internal/llm"
)

// Conversation is the persisted form of a journal thread.
type Conversation struct {
	ThreadID           int           `bson:"thread_id"`
	History            []llm.Message `bson:"history"`
	PendingDeletionIDs []int         `bson:"msg_ids_to_delete"`
}

// ChatMode stores which prompt seeds new conversations in a chat.
type ChatMode struct {
	ChatID int64  `bson:"chat_id"`
	Mode   string `bson:"mode"`
}

// ActivatedChat is a chat enrolled for message logging.
type ActivatedChat struct {
	ChatID      int64     `bson:"chat_id"`
	ChatTitle   string    `bson:"chat_title"`
	ActivatedAt time.Time `bson:"activated_at"`
}

// User is the hoisted sender sub-document of a logged message.
type User struct {
	ID        int64  `bson:"id"`
	IsBot     bool   `bson:"is_bot,omitempty"`
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name,omitempty"`
	Username  string `bson:"username,omitempty"`
}

// EditRecord captures a message revision before it was overwritten.
type EditRecord struct {
	Text     *string   `bson:"text"`
	Caption  *string   `bson:"caption"`
	EditedAt time.Time `bson:"edited_at"`
}

// StoredMessage is the typed read view of a logged message. Only the fields
// the bots read back are decoded; the rest of the payload stays in the store.
type StoredMessage struct {
	MessageID       int          `bson:"message_id"`
	ChatID          int64        `bson:"chat_id"`
	MessageThreadID int          `bson:"message_thread_id,omitempty"`
	Date            int64        `bson:"date"`
	EditDate        int64        `bson:"edit_date,omitempty"`
	Text            *string      `bson:"text,omitempty"`
	Caption         *string      `bson:"caption,omitempty"`
	FromUser        *User        `bson:"from_user,omitempty"`
	EditHistory     []EditRecord `bson:"edit_history,omitempty"`
	WasEdited       bool         `bson:"was_edited,omitempty"`
	IsChannelPost   bool         `bson:"is_channel_post,omitempty"`
	LoggedAt        time.Time    `bson:"logged_at"`
}
