package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edgard/facto/internal/llm"
)

type fakeClient struct {
	reply string
	err   error
	got   []llm.Message
	opts  llm.Options
}

func (f *fakeClient) Complete(_ context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	f.got = messages
	for _, opt := range opts {
		opt(&f.opts)
	}
	return f.reply, f.err
}

func TestTruncateTitle(t *testing.T) {
	t.Parallel()

	sixty := strings.Repeat("a", 60)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "short", input: "Database issue", want: "Database issue"},
		{name: "exactly sixty", input: sixty, want: sixty},
		{name: "sixty one", input: sixty + "b", want: strings.Repeat("a", 57) + "..."},
		{name: "multibyte", input: strings.Repeat("é", 70), want: strings.Repeat("é", 57) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := llm.TruncateTitle(tt.input); got != tt.want {
				t.Errorf("TruncateTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleGenerator(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 20)

	t.Run("uses model reply", func(t *testing.T) {
		t.Parallel()

		fc := &fakeClient{reply: "  Fixing the DB connection \n"}
		got := llm.NewTitleGenerator(fc, nil).Title(context.Background(), "How do I fix the database connection issue?")
		if got != "Fixing the DB connection" {
			t.Errorf("Title() = %q", got)
		}
		if len(fc.got) != 2 || fc.got[0].Role != llm.RoleSystem || fc.got[0].Content != llm.TitlePrompt {
			t.Errorf("unexpected prompt: %+v", fc.got)
		}
		if fc.opts.MaxTokens != 50 || fc.opts.Temperature == nil || *fc.opts.Temperature != 0.3 {
			t.Errorf("unexpected options: %+v", fc.opts)
		}
	})

	t.Run("truncates long model reply", func(t *testing.T) {
		t.Parallel()

		fc := &fakeClient{reply: long}
		got := llm.NewTitleGenerator(fc, nil).Title(context.Background(), "seed")
		if len([]rune(got)) != 60 || !strings.HasSuffix(got, "...") {
			t.Errorf("Title() = %q, want 60 characters ending in ellipsis", got)
		}
	})

	t.Run("falls back on error", func(t *testing.T) {
		t.Parallel()

		fc := &fakeClient{err: errors.New("down")}
		got := llm.NewTitleGenerator(fc, nil).Title(context.Background(), long)
		if got != llm.TruncateTitle(long) {
			t.Errorf("Title() = %q, want truncated seed", got)
		}
	})

	t.Run("falls back on empty reply", func(t *testing.T) {
		t.Parallel()

		fc := &fakeClient{reply: "   "}
		if got := llm.NewTitleGenerator(fc, nil).Title(context.Background(), "short seed"); got != "short seed" {
			t.Errorf("Title() = %q, want seed", got)
		}
	})

	t.Run("no client", func(t *testing.T) {
		t.Parallel()

		if got := llm.NewTitleGenerator(nil, nil).Title(context.Background(), "short seed"); got != "short seed" {
			t.Errorf("Title() = %q, want seed", got)
		}
	})
}
