package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SaveConversation upserts conv by thread id.
func (m *Mongo) SaveConversation(ctx context.Context, conv Conversation) error {
	if _, err := m.upsert(ctx, CollectionConversations, bson.M{"thread_id": conv.ThreadID}, conv); err != nil {
		return fmt.Errorf("failed to save conversation %d: %w", conv.ThreadID, err)
	}
	return nil
}

// DeleteConversation removes the conversation of threadID.
func (m *Mongo) DeleteConversation(ctx context.Context, threadID int) error {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if _, err := m.collection(CollectionConversations).DeleteOne(ctx, bson.M{"thread_id": threadID}); err != nil {
		return fmt.Errorf("failed to delete conversation %d: %w", threadID, err)
	}
	return nil
}

// Conversations returns every stored conversation.
func (m *Mongo) Conversations(ctx context.Context) ([]Conversation, error) {
	convs, err := findAll[Conversation](ctx, m, CollectionConversations, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to load conversations: %w", err)
	}
	return convs, nil
}

// SaveChatMode upserts mode by chat id.
func (m *Mongo) SaveChatMode(ctx context.Context, mode ChatMode) error {
	if _, err := m.upsert(ctx, CollectionChatModes, bson.M{"chat_id": mode.ChatID}, mode); err != nil {
		return fmt.Errorf("failed to save chat mode for %d: %w", mode.ChatID, err)
	}
	return nil
}

// ChatModes returns every stored chat mode.
func (m *Mongo) ChatModes(ctx context.Context) ([]ChatMode, error) {
	modes, err := findAll[ChatMode](ctx, m, CollectionChatModes, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to load chat modes: %w", err)
	}
	return modes, nil
}
