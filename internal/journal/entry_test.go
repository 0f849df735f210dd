package journal_test

import (
	"strings"
	"testing"
	"time"

	"github.com/edgard/facto/internal/journal"
)

func TestParseJournalCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/journal Today I was late.", "Today I was late."},
		{"/journal@facto_bot   Today", "Today"},
		{"/journal\n\nLine one\nLine two  ", "Line one\nLine two"},
		{"/journal", ""},
		{"/journal    \n  ", ""},
		{"hello /journal x", ""},
	}
	for _, tt := range tests {
		if got := journal.ParseJournalCommand(tt.in); got != tt.want {
			t.Errorf("ParseJournalCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatEntryDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		day  int
		want string
	}{
		{1, "1st September, Monday"},
		{2, "2nd September, Tuesday"},
		{3, "3rd September, Wednesday"},
		{4, "4th September, Thursday"},
		{9, "9th September, Tuesday"},
		{11, "11th September, Thursday"},
		{12, "12th September, Friday"},
		{13, "13th September, Saturday"},
		{21, "21st September, Sunday"},
		{22, "22nd September, Monday"},
		{23, "23rd September, Tuesday"},
	}
	for _, tt := range tests {
		d := time.Date(2025, time.September, tt.day, 12, 0, 0, 0, time.UTC)
		if got := journal.FormatEntryDate(d); got != tt.want {
			t.Errorf("FormatEntryDate(%d) = %q, want %q", tt.day, got, tt.want)
		}
	}
}

func TestDatedEntryAndTopicName(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, time.September, 9, 8, 0, 0, 0, time.UTC)
	entry := journal.DatedEntry(d, "Today I was late.")
	if want := "Today's date is: 9th September, Tuesday\n\nMy diary entry:\nToday I was late."; entry != want {
		t.Errorf("DatedEntry() = %q, want %q", entry, want)
	}

	name := journal.TopicName(entry)
	if !strings.HasSuffix(name, "..") || len([]rune(name)) != 62 || !strings.HasPrefix(entry, strings.TrimSuffix(name, "..")) {
		t.Errorf("TopicName() = %q", name)
	}
	if got := journal.TopicName("short"); got != "short" {
		t.Errorf("TopicName(short) = %q", got)
	}
}

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	p := journal.SystemPrompt(journal.ModeJournal)
	if !strings.HasPrefix(p, "You are an expert English Editor") || !strings.Contains(p, "PHASE 3 - FINALIZE") {
		t.Errorf("unexpected journal prompt: %.60q", p)
	}
	if journal.SystemPrompt("unknown") != p {
		t.Error("unknown modes should fall back to the journal prompt")
	}
}
