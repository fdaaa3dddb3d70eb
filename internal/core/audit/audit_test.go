package audit

import (
	"testing"
	"time"

	"github.com/example/routecard/internal/models"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "abc", "abc"},
		{"int", 42, "42"},
		{"float", 12.5, "12.5"},
		{"bool", true, "true"},
		{"status", models.StatusDone, "DONE"},
		{"unset quantity", models.Quantity{}, ""},
		{"quantity", models.Qty(3), "3"},
		{"object", map[string]int{"a": 1}, `{"a":1}`},
		{"slice", []string{"x", "y"}, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppend(t *testing.T) {
	card := &models.Card{}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	Append(card, Entry{Action: ActionQuantity, Object: "[010] Turning", Field: "goodCount", TargetID: "op_1", OldValue: 0, NewValue: 7}, "log_1", now, "alice")

	if len(card.Logs) != 1 {
		t.Fatalf("len(logs) = %d", len(card.Logs))
	}
	got := card.Logs[0]
	if got.ID != "log_1" || !got.Timestamp.Equal(now) || got.OldValue != "0" || got.NewValue != "7" || got.Actor != "alice" {
		t.Errorf("entry = %+v", got)
	}
}

func TestEnsureSnapshot_NeverOverwrites(t *testing.T) {
	card := &models.Card{Name: "Shaft", Logs: []models.LogEntry{{ID: "log_1"}}}

	if !EnsureSnapshot(card) {
		t.Fatal("expected snapshot to be taken")
	}
	if card.InitialSnapshot.Name != "Shaft" || len(card.InitialSnapshot.Logs) != 0 {
		t.Errorf("snapshot = %+v", card.InitialSnapshot)
	}

	for i := 0; i < 3; i++ {
		card.Name = "Shaft v" + string(rune('2'+i))
		if EnsureSnapshot(card) {
			t.Fatal("snapshot must not be retaken")
		}
	}
	if card.InitialSnapshot.Name != "Shaft" {
		t.Errorf("snapshot name changed to %q", card.InitialSnapshot.Name)
	}
}

func TestDiff(t *testing.T) {
	original := &models.Card{
		Name:     "Shaft",
		Quantity: models.Qty(10),
		Status:   models.StatusNotStarted,
		Operations: []*models.Operation{
			{ID: "op_1", OpCode: "010", OpName: "Turning", CenterName: "Lathe", Executor: "Ivanov", PlannedMinutes: 30, Order: 1},
			{ID: "op_2", OpCode: "020", OpName: "Milling", CenterName: "Mill", Order: 2},
		},
	}
	updated := original.Clone()
	updated.Name = "Shaft A"
	updated.Quantity = models.Quantity{}
	updated.Attachments = []*models.Attachment{{ID: "file_1"}}
	updated.Operations[0].Executor = "Petrov"
	updated.Operations[0].PlannedMinutes = 45
	updated.Operations = []*models.Operation{
		updated.Operations[0],
		{ID: "op_3", OpCode: "030", OpName: "Grinding", CenterName: "Grinder", Order: 3},
	}

	entries := Diff(original, updated)

	want := []struct{ action, field, old, new string }{
		{ActionFieldChanged, "name", "Shaft", "Shaft A"},
		{ActionFieldChanged, "quantity", "10", ""},
		{ActionAttachments, "attachments", "0", "1"},
		{ActionExecutor, "executor", "Ivanov", "Petrov"},
		{ActionPlannedTime, "plannedMinutes", "30", "45"},
		{ActionOperationAdded, "", "", "Grinder /"},
		{ActionOperationRemoved, "", "Mill /", ""},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, w := range want {
		e := entries[i]
		if e.Action != w.action || e.Field != w.field || FormatValue(e.OldValue) != w.old || FormatValue(e.NewValue) != w.new {
			t.Errorf("entry %d = %+v, want %+v", i, e, w)
		}
	}
}

func TestDiff_NoChanges(t *testing.T) {
	card := &models.Card{Name: "Shaft", Operations: []*models.Operation{{ID: "op_1"}}}
	if got := Diff(card, card.Clone()); len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}
