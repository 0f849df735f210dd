package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Upsert writes rec keyed by (message_id, chat_id) with $set semantics.
func (m *Mongo) Upsert(ctx context.Context, coll Collection, rec Record) (bool, error) {
	messageID, chatID, err := RecordKey(rec)
	if err != nil {
		return false, err
	}
	inserted, err := m.upsert(ctx, coll, bson.M{"message_id": messageID, "chat_id": chatID}, rec)
	if err != nil {
		return false, fmt.Errorf("failed to upsert into %s: %w", coll, err)
	}
	return inserted, nil
}

// FindMessage returns the stored message or ErrNotFound.
func (m *Mongo) FindMessage(ctx context.Context, chatID int64, messageID int) (*StoredMessage, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	var msg StoredMessage
	err := m.collection(CollectionMessages).FindOne(ctx, bson.M{"message_id": messageID, "chat_id": chatID}).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find message %d in chat %d: %w", messageID, chatID, err)
	}
	return &msg, nil
}

// MessagesByChat returns a chat's messages, newest first.
func (m *Mongo) MessagesByChat(ctx context.Context, chatID int64, skip, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultChatLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetSkip(skip).SetLimit(limit)
	msgs, err := findAll[StoredMessage](ctx, m, CollectionMessages, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages of chat %d: %w", chatID, err)
	}
	return msgs, nil
}

// MessagesByUser returns a sender's messages across chats, newest first.
func (m *Mongo) MessagesByUser(ctx context.Context, userID int64, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	msgs, err := findAll[StoredMessage](ctx, m, CollectionMessages, bson.M{"from_user.id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages of user %d: %w", userID, err)
	}
	return msgs, nil
}

// MessagesByTopic returns a forum topic's messages, oldest first.
func (m *Mongo) MessagesByTopic(ctx context.Context, chatID int64, threadID int, limit int64) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = DefaultTopicLimit
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}}).SetLimit(limit)
	filter := bson.M{"chat_id": chatID, "message_thread_id": threadID}
	msgs, err := findAll[StoredMessage](ctx, m, CollectionMessages, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic %d of chat %d: %w", threadID, chatID, err)
	}
	return msgs, nil
}

// Count counts the documents of coll, optionally restricted to one chat.
func (m *Mongo) Count(ctx context.Context, coll Collection, chatID int64) (int64, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	filter := bson.M{}
	if chatID != 0 {
		filter["chat_id"] = chatID
	}
	n, err := m.collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", coll, err)
	}
	return n, nil
}

// SaveActivatedChat upserts chat by chat id.
func (m *Mongo) SaveActivatedChat(ctx context.Context, chat ActivatedChat) error {
	if _, err := m.upsert(ctx, CollectionActivatedChats, bson.M{"chat_id": chat.ChatID}, chat); err != nil {
		return fmt.Errorf("failed to activate chat %d: %w", chat.ChatID, err)
	}
	return nil
}

// DeleteActivatedChat removes chatID from the activated chats.
func (m *Mongo) DeleteActivatedChat(ctx context.Context, chatID int64) error {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if _, err := m.collection(CollectionActivatedChats).DeleteOne(ctx, bson.M{"chat_id": chatID}); err != nil {
		return fmt.Errorf("failed to deactivate chat %d: %w", chatID, err)
	}
	return nil
}

// ActivatedChats returns every activated chat.
func (m *Mongo) ActivatedChats(ctx context.Context) ([]ActivatedChat, error) {
	chats, err := findAll[ActivatedChat](ctx, m, CollectionActivatedChats, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to load activated chats: %w", err)
	}
	return chats, nil
}
