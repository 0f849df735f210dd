package telegram

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type fakeRegistrar struct {
	byPattern []string
	byFunc    int
}

func (f *fakeRegistrar) RegisterHandler(_ bot.HandlerType, pattern string, _ bot.MatchType, _ bot.HandlerFunc, _ ...bot.Middleware) string {
	f.byPattern = append(f.byPattern, pattern)
	return pattern
}

func (f *fakeRegistrar) RegisterHandlerMatchFunc(_ bot.MatchFunc, _ bot.HandlerFunc, _ ...bot.Middleware) string {
	f.byFunc++
	return "func"
}

func TestRegisterHandlers(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *bot.Bot, *models.Update) {}
	r := &fakeRegistrar{}
	err := RegisterHandlers(r, nil, map[string]RegisteredHandler{
		"/stats": {HandlerType: bot.HandlerTypeMessageText, Pattern: "stats", MatchType: bot.MatchTypeCommand, Handler: noop},
		"/done":  {Match: func(*models.Update) bool { return true }, Handler: noop},
		"nil":    {Pattern: "nil"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.byPattern) != 1 || r.byPattern[0] != "stats" || r.byFunc != 1 {
		t.Errorf("registrations = %+v", r)
	}
	if err := RegisterHandlers(nil, nil, nil); err == nil {
		t.Error("nil registrar should fail")
	}
}

func TestApplyMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, u *models.Update) {
				order = append(order, name)
				next(ctx, b, u)
			}
		}
	}
	h := applyMiddleware(func(context.Context, *bot.Bot, *models.Update) { order = append(order, "handler") },
		[]bot.Middleware{mw("outer"), mw("inner")})
	h(context.Background(), nil, &models.Update{})

	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Errorf("order = %v", order)
	}
}

func TestTokenPrefix(t *testing.T) {
	t.Parallel()

	if got := tokenPrefix("123456789:ABC"); got != "12345678..." {
		t.Errorf("tokenPrefix() = %q", got)
	}
	if got := tokenPrefix("short"); got != "..." {
		t.Errorf("tokenPrefix() = %q", got)
	}
}
