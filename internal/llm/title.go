package llm

import (
	"context"
	"log/slog"
	"strings"
)

const (
	maxTitleLength   = 60
	titleTruncateLen = 57
)

// TitlePrompt instructs the model to answer with a bare title.
const TitlePrompt = `Generate a concise topic title (max 60 characters) for a forum discussion based on the user's message.
Return ONLY the title, nothing else. No quotes, no explanation.
The title should capture the main subject or question.`

// TitleGenerator turns free text into a forum topic title. It never fails:
// without a client, or when the model call errors, the seed is truncated.
type TitleGenerator struct {
	client Client
	log    *slog.Logger
}

// NewTitleGenerator returns a generator; client may be nil.
func NewTitleGenerator(client Client, log *slog.Logger) *TitleGenerator {
	if log == nil {
		log = slog.Default()
	}
	return &TitleGenerator{client: client, log: log.With("component", "title_generator")}
}

// Title returns a title of at most 60 characters for seed.
func (g *TitleGenerator) Title(ctx context.Context, seed string) string {
	if g == nil || g.client == nil {
		return TruncateTitle(seed)
	}

	reply, err := g.client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: TitlePrompt},
		{Role: RoleUser, Content: seed},
	}, WithMaxTokens(50), WithTemperature(0.3))
	if err != nil {
		g.log.ErrorContext(ctx, "AI title generation failed", "kind", KindOf(err).String(), "error", err)
		return TruncateTitle(seed)
	}

	title := strings.TrimSpace(reply)
	if title == "" {
		g.log.WarnContext(ctx, "AI returned an empty title, truncating seed")
		return TruncateTitle(seed)
	}
	return TruncateTitle(title)
}

// TruncateTitle cuts s to 57 characters plus an ellipsis when it is longer
// than 60 characters.
func TruncateTitle(s string) string {
	r := []rune(s)
	if len(r) <= maxTitleLength {
		return s
	}
	return string(r[:titleTruncateLen]) + "..."
}
