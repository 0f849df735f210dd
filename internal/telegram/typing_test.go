package telegram_test

import (
	"context"
	"testing"
	"time"

	"github.com/edgard/facto/internal/telegram"
	"github.com/edgard/facto/internal/telegram/telegramtest"
)

func TestKeepTyping(t *testing.T) {
	t.Parallel()

	p := &telegramtest.Platform{}
	stop := telegram.KeepTyping(context.Background(), p, nil, 1, 2, 5*time.Millisecond)
	if p.Actions() < 1 {
		t.Fatal("typing action should be sent immediately")
	}

	deadline := time.After(2 * time.Second)
	for p.Actions() < 3 {
		select {
		case <-deadline:
			t.Fatalf("typing repeated %d times, want at least 3", p.Actions())
		case <-time.After(5 * time.Millisecond):
		}
	}
	stop()

	after := p.Actions()
	time.Sleep(20 * time.Millisecond)
	if p.Actions() != after {
		t.Error("typing continued after stop")
	}
}
