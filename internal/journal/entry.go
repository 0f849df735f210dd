package journal

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const topicNameLength = 60

var journalCommand = regexp.MustCompile(`^/journal(?:@\w+)?[ \t]*\n*`)

// ParseJournalCommand returns the diary text following /journal, trimmed.
// Text not starting with the command yields an empty string.
func ParseJournalCommand(text string) string {
	loc := journalCommand.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(text[loc[1]:])
}

// FormatEntryDate renders t as "9th September, Tuesday".
func FormatEntryDate(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%d%s %s, %s", day, daySuffix(day), t.Month(), t.Weekday())
}

func daySuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// DatedEntry prefixes the diary text with the formatted date of t.
func DatedEntry(t time.Time, text string) string {
	return "Today's date is: " + FormatEntryDate(t) + "\n\nMy diary entry:\n" + text
}

// TopicName is the first 60 characters of entry, marked with ".." when cut.
func TopicName(entry string) string {
	r := []rune(entry)
	if len(r) <= topicNameLength {
		return entry
	}
	return string(r[:topicNameLength]) + ".."
}
