package llm

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/metrics"
)

// openAIClient talks to any OpenAI compatible chat-completions endpoint.
type openAIClient struct {
	client *openai.Client
	model  string
	retry  retryer
	log    *slog.Logger
}

func newOpenAIClient(cfg config.AIConfig, log *slog.Logger) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key is required for the openai backend")
	}

	openAICfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openAICfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	openAICfg.HTTPClient = newHTTPClient(cfg.Timeout, cfg.ConnectTimeout)

	c := &openAIClient{
		client: openai.NewClientWithConfig(openAICfg),
		model:  cfg.Model,
		log:    log.With("component", "llm", "backend", "openai"),
	}
	c.retry = retryer{retries: cfg.MaxRetries, retryable: isTransientOpenAI}
	return c, nil
}

// newHTTPClient bounds the whole request by total and the TCP/TLS setup by
// connect.
func newHTTPClient(total, connect time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: total,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   connect,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if len(messages) == 0 {
		return "", &Error{Kind: KindOther, Err: ErrEmptyMessages}
	}
	o := applyOptions(opts)

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}

	c.log.DebugContext(ctx, "Sending chat completion", "model", c.model, "message_count", len(messages))
	start := time.Now()
	reply, err := c.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			c.log.WarnContext(ctx, "Chat completion attempt failed", "error", err)
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}
		return resp.Choices[0].Message.Content, nil
	})
	metrics.ModelRequestDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())

	if err != nil {
		wrapped := wrap(err)
		metrics.ModelRequestsTotal.WithLabelValues("openai", wrapped.Kind.String()).Inc()
		c.log.ErrorContext(ctx, "Chat completion failed", "kind", wrapped.Kind.String(), "error", err)
		return "", wrapped
	}

	metrics.ModelRequestsTotal.WithLabelValues("openai", "ok").Inc()
	return reply, nil
}

// isTransientOpenAI reports whether a failed request is worth repeating:
// timeouts, connection failures, rate limits and server errors.
func isTransientOpenAI(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if classify(err) != KindOther {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return transientStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= http.StatusInternalServerError
}
