package archive

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/edgard/facto/internal/database"
)

// eventFields mark service messages that are stored as events.
var eventFields = []string{
	"new_chat_member",
	"new_chat_members",
	"left_chat_member",
	"new_chat_participant",
	"left_chat_participant",
	"new_chat_title",
	"new_chat_photo",
	"delete_chat_photo",
	"group_chat_created",
	"supergroup_chat_created",
	"channel_chat_created",
	"migrate_to_chat_id",
	"migrate_from_chat_id",
	"pinned_message",
}

// IsEvent reports whether rec carries a non-empty service field.
func IsEvent(rec database.Record) bool {
	for _, f := range eventFields {
		if truthy(rec[f]) {
			return true
		}
	}
	return false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

// BuildRecord converts msg into the document stored for it: the full Bot API
// payload with chat_id hoisted to the top level, the sender copied to
// from_user, and channel posts marked with is_channel_post.
func BuildRecord(msg *models.Message, channelPost bool) (database.Record, error) {
	if msg == nil {
		return nil, fmt.Errorf("nil message")
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message %d: %w", msg.ID, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode message %d: %w", msg.ID, err)
	}

	rec := database.Record(normalize(fields).(map[string]any))
	rec["chat_id"] = msg.Chat.ID
	if channelPost {
		rec["is_channel_post"] = true
	} else if from, ok := rec["from"]; ok {
		rec["from_user"] = from
	}
	return rec, nil
}

// normalize turns json.Number values into int64 where they fit and float64
// otherwise so ids keep their integer type in the store.
func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	}
	return v
}
