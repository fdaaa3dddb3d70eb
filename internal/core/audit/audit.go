// Package audit contains the pure business logic for card audit logs and
// initial snapshots. Log entries are only ever appended.
package audit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/example/routecard/internal/models"
)

// Action labels.
const (
	ActionCardCreated      = "Card created"
	ActionCopyCreated      = "Copy created"
	ActionFieldChanged     = "Field changed"
	ActionCardStatus       = "Card status"
	ActionArchived         = "Archived"
	ActionAttachments      = "Attachments"
	ActionOperationAdded   = "Operation added"
	ActionOperationChanged = "Operation changed"
	ActionOperationRemoved = "Operation removed"
	ActionExecutor         = "Executor"
	ActionExtraExecutor    = "Additional executor"
	ActionPlannedTime      = "Planned time"
	ActionOperationOrder   = "Operation order"
	ActionOperationStatus  = "Operation status"
	ActionActualTime       = "Actual time"
	ActionQuantity         = "Quantity"
	ActionItemQuantity     = "Item quantity"
	ActionItemName         = "Item name"
	ActionComment          = "Comment"
)

// ObjectCard is the object label for card-level entries.
const ObjectCard = "Card"

// Entry is a log record before it receives an id and timestamp.
type Entry struct {
	Action   string
	Object   string
	Field    string
	TargetID string
	OldValue any
	NewValue any
}

// FormatValue serializes a logged value: strings verbatim, numbers and
// booleans in their plain form, nil as "", anything else as JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case models.Status:
		return string(val)
	case models.Quantity:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// NewLogEntry stamps e with an id, a timestamp and the acting user.
func NewLogEntry(e Entry, id string, now time.Time, actor string) models.LogEntry {
	action := e.Action
	if action == "" {
		action = "update"
	}
	return models.LogEntry{
		ID:        id,
		Timestamp: now,
		Action:    action,
		Object:    e.Object,
		Field:     e.Field,
		TargetID:  e.TargetID,
		OldValue:  FormatValue(e.OldValue),
		NewValue:  FormatValue(e.NewValue),
		Actor:     actor,
	}
}

// Append adds one entry to the card's log.
func Append(card *models.Card, e Entry, id string, now time.Time, actor string) {
	card.Logs = append(card.Logs, NewLogEntry(e, id, now, actor))
}

// Snapshot returns a deep copy of card without logs or a nested snapshot.
func Snapshot(card *models.Card) *models.Card {
	snap := card.Clone()
	snap.Logs = []models.LogEntry{}
	snap.InitialSnapshot = nil
	return snap
}

// EnsureSnapshot takes the initial snapshot if the card has none yet.
// An existing snapshot is never replaced. It reports whether one was taken.
func EnsureSnapshot(card *models.Card) bool {
	if card.InitialSnapshot != nil {
		return false
	}
	card.InitialSnapshot = Snapshot(card)
	return true
}
