package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/facto/internal/telegram"
)

// RegisterFactoCommands returns the journal bot commands. Plain replies are
// served by NewConversationHandler as the default handler.
func RegisterFactoCommands(deps FactoDeps) map[string]telegram.RegisteredHandler {
	handlers := make(map[string]telegram.RegisteredHandler)

	handlers["/journal"] = telegram.RegisteredHandler{
		Pattern: "journal",
		Handler: NewJournalHandler(deps),
		Match:   telegram.MatchCommand("journal"),
	}
	handlers["/done"] = telegram.RegisteredHandler{
		Pattern: "done",
		Handler: NewDoneHandler(deps),
		Match:   telegram.MatchCommand("done"),
	}
	handlers["/delete"] = telegram.RegisteredHandler{
		Pattern: "delete",
		Handler: NewDeleteHandler(deps),
		Match:   telegram.MatchCommand("delete"),
	}

	return handlers
}

// RegisterLogtaCommands returns the logger bot commands. Logging itself runs
// in the ArchiveUpdates middleware.
func RegisterLogtaCommands(deps LogtaDeps) map[string]telegram.RegisteredHandler {
	handlers := make(map[string]telegram.RegisteredHandler)

	ownerMiddleware := []tgbot.Middleware{OwnerOnly(deps.OwnerID, deps.Logger)}

	handlers["/stats"] = telegram.RegisteredHandler{
		Pattern:    "stats",
		Handler:    NewStatsHandler(deps),
		Match:      telegram.MatchCommand("stats"),
		Middleware: ownerMiddleware,
	}
	handlers["/topic"] = telegram.RegisteredHandler{
		Pattern: "topic",
		Handler: NewTopicHandler(deps),
		Match:   telegram.MatchCommand("topic"),
	}
	handlers["/history"] = telegram.RegisteredHandler{
		Pattern:    "history",
		Handler:    NewHistoryHandler(deps),
		Match:      telegram.MatchCommand("history"),
		Middleware: ownerMiddleware,
	}

	return handlers
}
