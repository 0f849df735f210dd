package telegram

import (
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// IsCommand reports whether text starts with /name, optionally addressed
// as /name@botname, followed by the end of text or whitespace.
func IsCommand(text, name string) bool {
	rest, ok := strings.CutPrefix(text, "/"+name)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '\n', '\r':
		return true
	case '@':
		i := strings.IndexAny(rest, " \t\n\r")
		if i < 0 {
			i = len(rest)
		}
		return i > 1
	}
	return false
}

// IsAnyCommand reports whether text starts with a bot command.
func IsAnyCommand(text string) bool {
	return len(text) > 1 && text[0] == '/' && text[1] != ' '
}

// CommandArgs returns the whitespace separated arguments after the command.
func CommandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// MatchCommand routes plain messages starting with the named command.
func MatchCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && IsCommand(update.Message.Text, name)
	}
}
