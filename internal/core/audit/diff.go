package audit

import (
	"strings"

	"github.com/example/routecard/internal/models"
)

// Diff compares a stored card with its edited replacement and returns one
// entry per changed field. Operations are matched by id.
func Diff(original, updated *models.Card) []Entry {
	if original == nil || updated == nil {
		return nil
	}
	var out []Entry

	fields := []struct {
		name     string
		old, new any
	}{
		{"name", original.Name, updated.Name},
		{"orderNo", original.OrderNo, updated.OrderNo},
		{"desc", original.Desc, updated.Desc},
		{"quantity", original.Quantity, updated.Quantity},
		{"drawing", original.Drawing, updated.Drawing},
		{"material", original.Material, updated.Material},
		{"contractNumber", original.ContractNumber, updated.ContractNumber},
		{"useItemList", original.UseItemList, updated.UseItemList},
	}
	for _, f := range fields {
		if FormatValue(f.old) != FormatValue(f.new) {
			out = append(out, Entry{Action: ActionFieldChanged, Object: ObjectCard, Field: f.name, OldValue: f.old, NewValue: f.new})
		}
	}

	if original.Status != updated.Status {
		out = append(out, Entry{Action: ActionCardStatus, Object: ObjectCard, Field: "status", OldValue: original.Status, NewValue: updated.Status})
	}
	if original.Archived != updated.Archived {
		out = append(out, Entry{Action: ActionArchived, Object: ObjectCard, Field: "archived", OldValue: original.Archived, NewValue: updated.Archived})
	}
	if len(original.Attachments) != len(updated.Attachments) {
		out = append(out, Entry{Action: ActionAttachments, Object: ObjectCard, Field: "attachments", OldValue: len(original.Attachments), NewValue: len(updated.Attachments)})
	}

	prevByID := make(map[string]*models.Operation, len(original.Operations))
	for _, op := range original.Operations {
		prevByID[op.ID] = op
	}
	nextByID := make(map[string]bool, len(updated.Operations))

	for _, op := range updated.Operations {
		nextByID[op.ID] = true
		prev, ok := prevByID[op.ID]
		if !ok {
			out = append(out, Entry{Action: ActionOperationAdded, Object: op.Label(), TargetID: op.ID, NewValue: placement(op)})
			continue
		}
		if prev.CenterName != op.CenterName {
			out = append(out, Entry{Action: ActionOperationChanged, Object: op.Label(), Field: "centerName", TargetID: op.ID, OldValue: prev.CenterName, NewValue: op.CenterName})
		}
		if prev.OpCode != op.OpCode || prev.OpName != op.OpName {
			out = append(out, Entry{Action: ActionOperationChanged, Object: op.Label(), Field: "operation", TargetID: op.ID, OldValue: prev.Label(), NewValue: op.Label()})
		}
		if prev.Executor != op.Executor {
			out = append(out, Entry{Action: ActionExecutor, Object: op.Label(), Field: "executor", TargetID: op.ID, OldValue: prev.Executor, NewValue: op.Executor})
		}
		if prev.PlannedMinutes != op.PlannedMinutes {
			out = append(out, Entry{Action: ActionPlannedTime, Object: op.Label(), Field: "plannedMinutes", TargetID: op.ID, OldValue: prev.PlannedMinutes, NewValue: op.PlannedMinutes})
		}
		if prev.Order != op.Order {
			out = append(out, Entry{Action: ActionOperationOrder, Object: op.Label(), Field: "order", TargetID: op.ID, OldValue: prev.Order, NewValue: op.Order})
		}
	}

	for _, op := range original.Operations {
		if !nextByID[op.ID] {
			out = append(out, Entry{Action: ActionOperationRemoved, Object: op.Label(), TargetID: op.ID, OldValue: placement(op)})
		}
	}
	return out
}

func placement(op *models.Operation) string {
	return strings.TrimSpace(op.CenterName + " / " + op.Executor)
}
