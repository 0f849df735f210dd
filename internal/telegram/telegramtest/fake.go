// Package telegramtest provides an in-memory telegram.Platform for tests.
package telegramtest

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrRejected is returned by the fake for injected failures.
var ErrRejected = errors.New("telegramtest: rejected")

// Sent is a message accepted by the fake.
type Sent struct {
	ID        int
	ChatID    int64
	ThreadID  int
	Text      string
	ParseMode models.ParseMode
}

// Platform records every call. Zero value is ready to use; the exported
// knobs inject failures.
type Platform struct {
	mu sync.Mutex

	// RejectParseMode fails sends that use this parse mode.
	RejectParseMode models.ParseMode
	// RejectText fails every send whose text equals it.
	RejectText     string
	CreateTopicErr error
	DeleteTopicErr error
	// DeleteMessageErr fails deletion of the listed message ids.
	DeleteMessageErr map[int]error

	nextID   int
	threadID int

	Sent           []Sent
	Topics         []string
	DeletedTopics  []int
	DeletedIDs     []int
	ChatActions    int
	deleteNotifies chan int
}

func (p *Platform) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.RejectParseMode != "" && params.ParseMode == p.RejectParseMode {
		return nil, ErrRejected
	}
	if p.RejectText != "" && params.Text == p.RejectText {
		return nil, ErrRejected
	}
	p.nextID++
	chatID, _ := params.ChatID.(int64)
	p.Sent = append(p.Sent, Sent{
		ID:        1000 + p.nextID,
		ChatID:    chatID,
		ThreadID:  params.MessageThreadID,
		Text:      params.Text,
		ParseMode: params.ParseMode,
	})
	return &models.Message{
		ID:              1000 + p.nextID,
		MessageThreadID: params.MessageThreadID,
		Chat:            models.Chat{ID: chatID},
		Text:            params.Text,
	}, nil
}

func (p *Platform) CreateForumTopic(_ context.Context, params *bot.CreateForumTopicParams) (*models.ForumTopic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateTopicErr != nil {
		return nil, p.CreateTopicErr
	}
	p.threadID++
	p.Topics = append(p.Topics, params.Name)
	return &models.ForumTopic{MessageThreadID: 500 + p.threadID, Name: params.Name}, nil
}

func (p *Platform) DeleteForumTopic(_ context.Context, params *bot.DeleteForumTopicParams) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.DeleteTopicErr != nil {
		return false, p.DeleteTopicErr
	}
	p.DeletedTopics = append(p.DeletedTopics, params.MessageThreadID)
	return true, nil
}

func (p *Platform) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	p.mu.Lock()
	err := p.DeleteMessageErr[params.MessageID]
	if err == nil {
		p.DeletedIDs = append(p.DeletedIDs, params.MessageID)
	}
	notify := p.deleteNotifies
	p.mu.Unlock()

	if notify != nil {
		notify <- params.MessageID
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Platform) SendChatAction(_ context.Context, _ *bot.SendChatActionParams) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ChatActions++
	return true, nil
}

// NotifyDeletes returns a channel receiving every attempted message
// deletion, successful or not. It must be called before the deletions
// happen.
func (p *Platform) NotifyDeletes(buffer int) <-chan int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteNotifies = make(chan int, buffer)
	return p.deleteNotifies
}

// Messages returns a copy of the accepted messages.
func (p *Platform) Messages() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Sent(nil), p.Sent...)
}

// Deleted returns a copy of the successfully deleted message ids.
func (p *Platform) Deleted() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.DeletedIDs...)
}

// Actions returns how many chat actions were sent.
func (p *Platform) Actions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ChatActions
}
