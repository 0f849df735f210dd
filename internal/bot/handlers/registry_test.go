package handlers_test

import (
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/bot/handlers"
)

func TestRegisterFactoCommands(t *testing.T) {
	t.Parallel()

	got := handlers.RegisterFactoCommands(handlers.FactoDeps{Logger: discardLogger(), Journal: &fakeJournal{}})

	for _, name := range []string{"journal", "done", "delete"} {
		h, ok := got["/"+name]
		if !ok {
			t.Fatalf("missing /%s", name)
		}
		if h.Handler == nil || h.Match == nil {
			t.Fatalf("/%s has no handler or matcher", name)
		}
		if !h.Match(groupUpdate("/"+name, 5, 1)) {
			t.Errorf("/%s does not match its command", name)
		}
		if h.Match(groupUpdate("/"+name+"x", 5, 1)) {
			t.Errorf("/%s matches a longer command", name)
		}
		if len(h.Middleware) != 0 {
			t.Errorf("/%s has middleware", name)
		}
	}
	if !got["/journal"].Match(groupUpdate("/journal@facto_bot Today", 0, 1)) {
		t.Error("/journal does not match the addressed form")
	}
}

func TestRegisterLogtaCommands(t *testing.T) {
	t.Parallel()

	got := handlers.RegisterLogtaCommands(handlers.LogtaDeps{Logger: discardLogger(), Archive: &fakeArchive{}, OwnerID: 42})

	wantMiddleware := map[string]int{"/stats": 1, "/topic": 0, "/history": 1}
	if len(got) != len(wantMiddleware) {
		t.Fatalf("registered %d commands, want %d", len(got), len(wantMiddleware))
	}
	for name, n := range wantMiddleware {
		h, ok := got[name]
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if len(h.Middleware) != n {
			t.Errorf("%s middleware = %d, want %d", name, len(h.Middleware), n)
		}
		if !h.Match(groupUpdate(name, 0, 1)) {
			t.Errorf("%s does not match its command", name)
		}
	}
	if got["/stats"].Match(&models.Update{ChannelPost: &models.Message{Text: "/stats"}}) {
		t.Error("/stats matches channel posts")
	}
}
