// Package llm wraps chat-completion backends behind a single stateless call
// that turns an ordered list of role tagged turns into the assistant's reply.
package llm

import (
	"context"
)

// Role tags a conversation turn.
type Role string

// Supported roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role tagged turn of a conversation.
type Message struct {
	Role    Role   `bson:"role"    json:"role"`
	Content string `bson:"content" json:"content"`
}

// Client issues one chat-completion request per call.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts ...Option) (string, error)
}

// Options tunes a single request.
type Options struct {
	MaxTokens   int
	Temperature *float32
}

// Option mutates request options.
type Option func(*Options)

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *Options) { o.Temperature = &t }
}

func applyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
