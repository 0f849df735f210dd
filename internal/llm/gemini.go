package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/facto/internal/config"
	"github.com/edgard/facto/internal/metrics"
)

// geminiClient maps role tagged turns onto the Gemini content API. System
// turns become the system instruction, assistant turns the model role.
type geminiClient struct {
	client *genai.Client
	model  string
	retry  retryer
	log    *slog.Logger
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key is required for the gemini backend")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(cfg.Timeout, cfg.ConnectTimeout),
	})
	if err != nil {
		return nil, err
	}

	c := &geminiClient{
		client: gi,
		model:  cfg.Model,
		log:    log.With("component", "llm", "backend", "gemini"),
	}
	c.retry = retryer{retries: cfg.MaxRetries, retryable: isTransientGemini}
	return c, nil
}

func (c *geminiClient) Complete(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if len(messages) == 0 {
		return "", &Error{Kind: KindOther, Err: ErrEmptyMessages}
	}
	o := applyOptions(opts)

	contents, system := toGeminiContents(messages)
	genCfg := &genai.GenerateContentConfig{}
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if o.Temperature != nil {
		genCfg.Temperature = o.Temperature
	}

	start := time.Now()
	reply, err := c.retry.do(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genCfg)
		if err != nil {
			c.log.WarnContext(ctx, "Gemini attempt failed", "error", err)
			return "", err
		}
		text := resp.Text()
		if text == "" {
			return "", ErrNoChoices
		}
		return text, nil
	})
	metrics.ModelRequestDuration.WithLabelValues("gemini").Observe(time.Since(start).Seconds())

	if err != nil {
		wrapped := wrap(err)
		metrics.ModelRequestsTotal.WithLabelValues("gemini", wrapped.Kind.String()).Inc()
		c.log.ErrorContext(ctx, "Gemini generation failed", "kind", wrapped.Kind.String(), "error", err)
		return "", wrapped
	}

	metrics.ModelRequestsTotal.WithLabelValues("gemini", "ok").Inc()
	return reply, nil
}

// toGeminiContents splits system turns out of the history; several system
// turns are joined with blank lines.
func toGeminiContents(messages []Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func isTransientGemini(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if classify(err) != KindOther {
		return true
	}
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.Code)
	}
	return false
}
