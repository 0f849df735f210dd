package database

import (
	"fmt"
	"maps"
	"time"
)

// PrepareEdit returns the record to write for an edited message. When prev
// carried a text or caption, that revision is appended to the edit history
// inherited from prev; the result is always marked as edited and stamped
// with now.
func PrepareEdit(prev *StoredMessage, rec Record, now time.Time) Record {
	out := maps.Clone(rec)
	if out == nil {
		out = Record{}
	}

	if prev != nil {
		history := make([]EditRecord, 0, len(prev.EditHistory)+1)
		history = append(history, prev.EditHistory...)
		if prev.Text != nil || prev.Caption != nil {
			editedAt := prev.LoggedAt
			if prev.EditDate != 0 {
				editedAt = time.Unix(prev.EditDate, 0).UTC()
			}
			history = append(history, EditRecord{
				Text:     prev.Text,
				Caption:  prev.Caption,
				EditedAt: editedAt,
			})
		}
		out["edit_history"] = history
	}

	out["logged_at"] = now
	out["was_edited"] = true
	return out
}

// RecordKey extracts the (message_id, chat_id) identity of rec.
func RecordKey(rec Record) (int, int64, error) {
	messageID, ok := AsInt64(rec["message_id"])
	if !ok {
		return 0, 0, fmt.Errorf("record has no numeric message_id: %v", rec["message_id"])
	}
	chatID, ok := AsInt64(rec["chat_id"])
	if !ok {
		return 0, 0, fmt.Errorf("record has no numeric chat_id: %v", rec["chat_id"])
	}
	return int(messageID), chatID, nil
}

// AsInt64 converts the integer representations a decoded document may hold.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
