package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

func cardDraft(name string, qty models.Quantity, perItem bool) primary.CardDraft {
	return primary.CardDraft{Name: name, OrderNo: "ORD-1", Quantity: qty, UseItemList: perItem}
}

func addStepRequest(cardRef, opRef, centerRef string) primary.AddRouteStepRequest {
	return primary.AddRouteStepRequest{CardRef: cardRef, OpRef: opRef, CenterRef: centerRef, Executor: "Ivanov"}
}

func intPtr(n int) *int { return &n }

func act(t *testing.T, svc *CardServiceImpl, cardRef, opRef, action string) *primary.ActionResult {
	t.Helper()
	res, err := svc.ApplyOperationAction(context.Background(), primary.OperationActionRequest{CardRef: cardRef, OpRef: opRef, Action: action})
	if err != nil {
		t.Fatalf("ApplyOperationAction(%s) failed: %v", action, err)
	}
	return res
}

// finishRoute starts and stops every step of a card whose quantity is unset.
func finishRoute(t *testing.T, svc *CardServiceImpl, clock *testClock, card *models.Card) {
	t.Helper()
	for _, op := range card.Operations {
		act(t, svc, card.ID, op.ID, "start")
		clock.Advance(time.Minute)
		if res := act(t, svc, card.ID, op.ID, "stop"); !res.Applied {
			t.Fatalf("stop rejected: %s", res.Reason)
		}
	}
}

func countLogs(c *models.Card, action, targetID string) int {
	n := 0
	for _, e := range c.Logs {
		if e.Action == action && (targetID == "" || e.TargetID == targetID) {
			n++
		}
	}
	return n
}

func TestApplyOperationAction_QuantityGate(t *testing.T) {
	svc, store, clock := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Qty(10), false)
	op := card.Operations[0]

	act(t, svc, card.ID, op.ID, "start")
	clock.Advance(90 * time.Second)

	if _, err := svc.RecordCounts(ctx, primary.RecordCountsRequest{CardRef: card.ID, OpRef: op.ID, Good: intPtr(7), Scrap: intPtr(2), Hold: intPtr(0)}); err != nil {
		t.Fatalf("RecordCounts failed: %v", err)
	}
	savesBefore := store.saves

	res := act(t, svc, card.ID, op.ID, "stop")
	if res.Applied {
		t.Fatal("expected stop to be rejected")
	}
	if !strings.Contains(res.Reason, "9≠10") {
		t.Errorf("expected reason to mention 9≠10, got %q", res.Reason)
	}
	if res.Operation.Status != models.StatusInProgress {
		t.Errorf("expected operation to stay IN_PROGRESS, got %s", res.Operation.Status)
	}
	if res.Operation.FinishedAt != nil || res.Operation.ActualSeconds != nil {
		t.Error("expected rejected stop to leave timestamps untouched")
	}
	if store.saves != savesBefore {
		t.Errorf("expected rejected stop not to save, saves went %d -> %d", savesBefore, store.saves)
	}

	if _, err := svc.RecordCounts(ctx, primary.RecordCountsRequest{CardRef: card.ID, OpRef: op.ID, Hold: intPtr(1)}); err != nil {
		t.Fatalf("RecordCounts failed: %v", err)
	}
	res = act(t, svc, card.ID, op.ID, "stop")
	if !res.Applied {
		t.Fatalf("expected stop to succeed, got %q", res.Reason)
	}
	if res.NewStatus != models.StatusDone {
		t.Errorf("expected DONE, got %s", res.NewStatus)
	}
	if res.Operation.ActualSeconds == nil || *res.Operation.ActualSeconds != 90 {
		t.Errorf("expected actualSeconds 90, got %v", res.Operation.ActualSeconds)
	}
	if res.CardStatus != models.StatusPaused {
		t.Errorf("expected card PAUSED with one step left, got %s", res.CardStatus)
	}
	if !res.Persisted {
		t.Error("expected result to be persisted")
	}
	if got := countLogs(res.Card, audit.ActionActualTime, op.ID); got != 1 {
		t.Errorf("expected 1 actual time entry, got %d", got)
	}
	if got := countLogs(res.Card, audit.ActionQuantity, op.ID); got != 3 {
		t.Errorf("expected 3 quantity entries (good, scrap, hold), got %d", got)
	}
}

func TestApplyOperationAction_Errors(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Quantity{}, false)
	op := card.Operations[0]

	tests := []struct {
		name    string
		req     primary.OperationActionRequest
		wantErr error
	}{
		{
			name:    "unknown action",
			req:     primary.OperationActionRequest{CardRef: card.ID, OpRef: op.ID, Action: "explode"},
			wantErr: primary.ErrInvalidAction,
		},
		{
			name:    "unknown card",
			req:     primary.OperationActionRequest{CardRef: "card_missing", OpRef: op.ID, Action: "start"},
			wantErr: primary.ErrCardNotFound,
		},
		{
			name:    "unknown operation",
			req:     primary.OperationActionRequest{CardRef: card.ID, OpRef: "op_missing", Action: "start"},
			wantErr: primary.ErrOperationNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyOperationAction(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyOperationAction_LookupByBarcodeAndCode(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Quantity{}, false)

	res := act(t, svc, card.Barcode, card.Operations[1].OpCode, "start")
	if !res.Applied {
		t.Fatalf("expected start to apply, got %q", res.Reason)
	}
	if res.Operation.ID != card.Operations[1].ID {
		t.Errorf("expected operation %s, got %s", card.Operations[1].ID, res.Operation.ID)
	}
}

func TestApplyOperationAction_GuardRejection(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Quantity{}, false)

	res := act(t, svc, card.ID, card.Operations[0].ID, "pause")
	if res.Applied {
		t.Fatal("expected pause of a NOT_STARTED operation to be rejected")
	}
	if res.Reason == "" {
		t.Error("expected a reason")
	}
}

func TestApplyOperationAction_ResumeFromDoneLogsSecondCompletion(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	card := createRouteCard(t, svc, models.Quantity{}, false)
	op := card.Operations[0]

	act(t, svc, card.ID, op.ID, "start")
	clock.Advance(30 * time.Second)
	act(t, svc, card.ID, op.ID, "stop")
	act(t, svc, card.ID, op.ID, "resume")
	clock.Advance(30 * time.Second)
	res := act(t, svc, card.ID, op.ID, "stop")

	if !res.Applied {
		t.Fatalf("expected second stop to apply, got %q", res.Reason)
	}
	if *res.Operation.ActualSeconds != 60 {
		t.Errorf("expected actualSeconds 60, got %v", *res.Operation.ActualSeconds)
	}
	if got := countLogs(res.Card, audit.ActionOperationStatus, op.ID); got != 4 {
		t.Errorf("expected 4 status entries, got %d", got)
	}
	if got := countLogs(res.Card, audit.ActionActualTime, op.ID); got != 2 {
		t.Errorf("expected 2 actual time entries, got %d", got)
	}
}

func TestApplyOperationAction_SaveFailureKeepsChange(t *testing.T) {
	svc, store, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Quantity{}, false)
	op := card.Operations[0]

	store.saveErr = errors.New("disk full")
	res := act(t, svc, card.ID, op.ID, "start")
	if !res.Applied {
		t.Fatalf("expected start to apply, got %q", res.Reason)
	}
	if res.Persisted {
		t.Error("expected Persisted=false on save failure")
	}
	status := svc.SyncStatus()
	if !status.Degraded || !strings.Contains(status.LastError, "disk full") {
		t.Errorf("expected degraded status with error, got %+v", status)
	}
	view, err := svc.GetCard(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if view.Card.Operations[0].Status != models.StatusInProgress {
		t.Errorf("expected in-memory change to survive, got %s", view.Card.Operations[0].Status)
	}

	store.saveErr = nil
	res = act(t, svc, card.ID, op.ID, "pause")
	if !res.Persisted {
		t.Error("expected next action to resync")
	}
	if svc.SyncStatus().Degraded {
		t.Error("expected degraded flag to clear")
	}
	stored := store.col.FindCard(card.ID)
	if stored.Operations[0].Status != models.StatusPaused {
		t.Errorf("expected stored operation PAUSED, got %s", stored.Operations[0].Status)
	}
}

func TestAddRouteStep(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	card, err := svc.CreateCard(ctx, cardDraft("Bushing", models.Quantity{}, false))
	if err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}

	tests := []struct {
		name        string
		req         primary.AddRouteStepRequest
		wantApplied bool
		wantReason  string
	}{
		{
			name:        "catalog operation by name",
			req:         addStepRequest(card.ID, "Turning", "Machining"),
			wantApplied: true,
		},
		{
			name:        "catalog operation by code",
			req:         addStepRequest(card.ID, "OP-0003", "Quality control"),
			wantApplied: true,
		},
		{
			name:       "missing operation",
			req:        addStepRequest(card.ID, "Grinding", "Machining"),
			wantReason: "missing catalog reference",
		},
		{
			name:       "missing center",
			req:        addStepRequest(card.ID, "Turning", "Paint shop"),
			wantReason: "missing catalog reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.AddRouteStep(ctx, tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Applied != tt.wantApplied {
				t.Errorf("expected applied=%v, got %v (%s)", tt.wantApplied, resp.Applied, resp.Reason)
			}
			if tt.wantReason != "" && !strings.Contains(resp.Reason, tt.wantReason) {
				t.Errorf("expected reason containing %q, got %q", tt.wantReason, resp.Reason)
			}
		})
	}

	view, _ := svc.GetCard(ctx, card.ID)
	if len(view.Card.Operations) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(view.Card.Operations))
	}
	if got := countLogs(view.Card, audit.ActionOperationAdded, ""); got != 2 {
		t.Errorf("expected 2 added entries, got %d", got)
	}
	if view.Card.Operations[0].PlannedMinutes != 40 {
		t.Errorf("expected planned minutes from catalog (40), got %d", view.Card.Operations[0].PlannedMinutes)
	}
}

func TestAddRouteStep_DoneCardBecomesPaused(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Quantity{}, false)
	finishRoute(t, svc, clock, card)

	view, _ := svc.GetCard(ctx, card.ID)
	if view.Card.Status != models.StatusDone {
		t.Fatalf("expected DONE, got %s", view.Card.Status)
	}

	resp, err := svc.AddRouteStep(ctx, addStepRequest(card.ID, "Dimensional inspection", "Quality control"))
	if err != nil || !resp.Applied {
		t.Fatalf("AddRouteStep failed: %v %s", err, resp.Reason)
	}
	if resp.Card.Status != models.StatusPaused {
		t.Errorf("expected PAUSED after adding a step to a DONE card, got %s", resp.Card.Status)
	}
	if got := countLogs(resp.Card, audit.ActionCardStatus, ""); got == 0 {
		t.Error("expected a card status entry")
	}
}

func TestRemoveRouteStep(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Quantity{}, false)
	running := card.Operations[0]
	act(t, svc, card.ID, running.ID, "start")

	resp, err := svc.RemoveRouteStep(ctx, card.ID, running.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Applied {
		t.Error("expected removal of a running step to be rejected")
	}

	resp, err = svc.RemoveRouteStep(ctx, card.ID, card.Operations[1].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Applied {
		t.Fatalf("expected removal to apply, got %q", resp.Reason)
	}
	if len(resp.Card.Operations) != 1 {
		t.Errorf("expected 1 step left, got %d", len(resp.Card.Operations))
	}
	if got := countLogs(resp.Card, audit.ActionOperationRemoved, card.Operations[1].ID); got != 1 {
		t.Errorf("expected 1 removed entry, got %d", got)
	}
}

func TestMoveRouteStep(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Quantity{}, false)
	first, second := card.Operations[0], card.Operations[1]

	moved, err := svc.MoveRouteStep(ctx, card.ID, second.ID, -1)
	if err != nil {
		t.Fatalf("MoveRouteStep failed: %v", err)
	}
	if moved.Operations[0].ID != second.ID || moved.Operations[1].ID != first.ID {
		t.Errorf("expected steps swapped, got %s, %s", moved.Operations[0].ID, moved.Operations[1].ID)
	}
	if got := countLogs(moved, audit.ActionOperationOrder, ""); got != 2 {
		t.Errorf("expected 2 order entries, got %d", got)
	}

	if _, err := svc.MoveRouteStep(ctx, card.ID, second.ID, 2); !errors.Is(err, primary.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for delta 2, got %v", err)
	}
}

func TestUpdateCard_LogsDiffAndKeepsSnapshot(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Qty(5), false)
	snapName := card.InitialSnapshot.Name

	name := "Shaft rev. B"
	qty := models.Qty(6)
	updated, err := svc.UpdateCard(ctx, primary.UpdateCardRequest{Ref: card.ID, Name: &name, Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateCard failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("expected name %q, got %q", name, updated.Name)
	}
	if updated.InitialSnapshot.Name != snapName {
		t.Errorf("expected snapshot name %q to survive, got %q", snapName, updated.InitialSnapshot.Name)
	}

	var fields []string
	for _, e := range updated.Logs {
		if e.Action == audit.ActionFieldChanged {
			fields = append(fields, e.Field)
		}
	}
	if strings.Join(fields, ",") != "name,quantity" {
		t.Errorf("expected name and quantity entries, got %v", fields)
	}
}

func TestUpdateCard_RejectedEditLeavesCardUntouched(t *testing.T) {
	svc, store, _ := newTestCardService(t)
	ctx := context.Background()
	template := createRouteCard(t, svc, models.Qty(2), false)
	resp, err := svc.CreateGroup(ctx, primary.CreateGroupRequest{TemplateRef: template.ID, Name: "Batch 7", Count: 2})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := resp.Group
	logsBefore := len(group.Logs)

	name := "Renamed"
	perItem := true
	_, err = svc.UpdateCard(ctx, primary.UpdateCardRequest{Ref: group.ID, Name: &name, UseItemList: &perItem})
	if !errors.Is(err, primary.ErrIsAGroup) {
		t.Fatalf("expected ErrIsAGroup, got %v", err)
	}

	view, err := svc.GetCard(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if view.Card.Name != group.Name || view.Card.UseItemList {
		t.Errorf("rejected edit leaked into memory: name=%q perItem=%v", view.Card.Name, view.Card.UseItemList)
	}
	if len(view.Card.Logs) != logsBefore {
		t.Errorf("expected %d log entries, got %d", logsBefore, len(view.Card.Logs))
	}

	// An unrelated save must not persist the rejected edit either.
	if _, err := svc.DuplicateCard(ctx, template.ID); err != nil {
		t.Fatalf("DuplicateCard failed: %v", err)
	}
	if stored := store.col.FindCard(group.ID); stored == nil || stored.Name != group.Name {
		t.Errorf("rejected edit was persisted: %+v", stored)
	}

	updated, err := svc.UpdateCard(ctx, primary.UpdateCardRequest{Ref: group.ID, Name: &name})
	if err != nil {
		t.Fatalf("UpdateCard failed: %v", err)
	}
	if updated.Name != name || len(updated.Logs) != logsBefore+1 {
		t.Errorf("expected rename with one log entry, got name=%q logs=%d", updated.Name, len(updated.Logs))
	}
	if stored := store.col.FindCard(group.ID); stored == nil || stored.Name != name {
		t.Errorf("rename was not persisted: %+v", stored)
	}
}

func TestUpdateCard_NoChangesSkipsSave(t *testing.T) {
	svc, store, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Qty(2), false)
	saves := store.saves

	same := card.Name
	if _, err := svc.UpdateCard(context.Background(), primary.UpdateCardRequest{Ref: card.ID, Name: &same}); err != nil {
		t.Fatalf("UpdateCard failed: %v", err)
	}
	if store.saves != saves {
		t.Errorf("expected no save for an unchanged card, got %d new saves", store.saves-saves)
	}
}

func TestItemLimit(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()

	_, err := svc.CreateCard(ctx, cardDraft("Washer", models.Qty(quantity.MaxItems+1), true))
	if !errors.Is(err, primary.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for an oversized per-item card, got %v", err)
	}

	card := createRouteCard(t, svc, models.Qty(quantity.MaxItems+1), false)
	perItem := true
	_, err = svc.UpdateCard(ctx, primary.UpdateCardRequest{Ref: card.ID, UseItemList: &perItem})
	if !errors.Is(err, primary.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument when switching to per-item, got %v", err)
	}
	view, err := svc.GetCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if view.Card.UseItemList || len(view.Card.Operations[0].Items) != 0 {
		t.Errorf("rejected switch changed the card: perItem=%v items=%d", view.Card.UseItemList, len(view.Card.Operations[0].Items))
	}

	small := createRouteCard(t, svc, models.Qty(2), true)
	resp, err := svc.AddRouteStep(ctx, primary.AddRouteStepRequest{
		CardRef: small.ID, OpRef: "Turning", CenterRef: "Machining", Quantity: models.Qty(quantity.MaxItems + 1),
	})
	if err != nil {
		t.Fatalf("AddRouteStep failed: %v", err)
	}
	if resp.Applied || !strings.Contains(resp.Reason, "at most") {
		t.Errorf("expected the step to be refused, got applied=%v reason=%q", resp.Applied, resp.Reason)
	}
}

func TestRecordCounts_Clamps(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Qty(3), false)

	op, err := svc.RecordCounts(context.Background(), primary.RecordCountsRequest{CardRef: card.ID, OpRef: card.Operations[0].ID, Good: intPtr(-4), Scrap: intPtr(2)})
	if err != nil {
		t.Fatalf("RecordCounts failed: %v", err)
	}
	if op.GoodCount != 0 || op.ScrapCount != 2 {
		t.Errorf("expected good=0 scrap=2, got good=%d scrap=%d", op.GoodCount, op.ScrapCount)
	}
}

func TestPerItemMode(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Qty(2), true)
	op := card.Operations[0]

	if len(op.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(op.Items))
	}
	if _, err := svc.RecordCounts(ctx, primary.RecordCountsRequest{CardRef: card.ID, OpRef: op.ID, Good: intPtr(2)}); !errors.Is(err, primary.ErrInvalidArgument) {
		t.Errorf("expected aggregate counts to be refused in per-item mode, got %v", err)
	}

	name := "SN-001"
	it, err := svc.RecordItem(ctx, primary.RecordItemRequest{CardRef: card.ID, OpRef: op.ID, ItemRef: "1", Name: &name, Good: intPtr(1), Scrap: intPtr(1)})
	if err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}
	if it.Name != name || it.GoodCount != 1 || it.ScrapCount != 0 {
		t.Errorf("expected named item with good=1 scrap=0, got %+v", it)
	}

	act(t, svc, card.ID, op.ID, "start")
	clock.Advance(time.Minute)
	res := act(t, svc, card.ID, op.ID, "stop")
	if res.Applied {
		t.Fatal("expected stop to be rejected with one item unaccounted")
	}
	if !strings.Contains(res.Reason, "item") || !strings.Contains(res.Reason, "mismatch") {
		t.Errorf("expected item mismatch reason, got %q", res.Reason)
	}

	if _, err := svc.RecordItem(ctx, primary.RecordItemRequest{CardRef: card.ID, OpRef: op.ID, ItemRef: op.Items[1].ID, Hold: intPtr(1)}); err != nil {
		t.Fatalf("RecordItem failed: %v", err)
	}
	res = act(t, svc, card.ID, op.ID, "stop")
	if !res.Applied {
		t.Fatalf("expected stop to apply, got %q", res.Reason)
	}
	if res.Operation.GoodCount != 1 || res.Operation.HoldCount != 1 {
		t.Errorf("expected aggregate sums good=1 hold=1, got %d/%d", res.Operation.GoodCount, res.Operation.HoldCount)
	}
	if got := countLogs(res.Card, audit.ActionItemName, ""); got != 1 {
		t.Errorf("expected 1 item name entry, got %d", got)
	}

	if _, err := svc.RecordItem(ctx, primary.RecordItemRequest{CardRef: card.ID, OpRef: op.ID, ItemRef: "9", Good: intPtr(1)}); !errors.Is(err, primary.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRecordItem_AggregateCardRefused(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	card := createRouteCard(t, svc, models.Qty(2), false)
	_, err := svc.RecordItem(context.Background(), primary.RecordItemRequest{CardRef: card.ID, OpRef: card.Operations[0].ID, ItemRef: "1", Good: intPtr(1)})
	if !errors.Is(err, primary.ErrNotPerItem) {
		t.Errorf("expected ErrNotPerItem, got %v", err)
	}
}

func TestSetExecutorAndComment(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Quantity{}, false)
	op := card.Operations[0]

	_, err := svc.SetExecutor(ctx, primary.SetExecutorRequest{CardRef: card.ID, OpRef: op.ID, Executor: "Petrov", Additional: []string{"A", "B", "C"}})
	if !errors.Is(err, primary.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for 3 additional executors, got %v", err)
	}

	got, err := svc.SetExecutor(ctx, primary.SetExecutorRequest{CardRef: card.ID, OpRef: op.ID, Executor: "Petrov", Additional: []string{"Sidorov", " "}})
	if err != nil {
		t.Fatalf("SetExecutor failed: %v", err)
	}
	if got.Executor != "Petrov" || len(got.AdditionalExecutors) != 1 {
		t.Errorf("expected Petrov + 1 extra, got %q %v", got.Executor, got.AdditionalExecutors)
	}

	long := strings.Repeat("é", 50)
	got, err = svc.SetComment(ctx, card.ID, op.ID, long)
	if err != nil {
		t.Fatalf("SetComment failed: %v", err)
	}
	if n := len([]rune(got.Comment)); n != models.MaxCommentLength {
		t.Errorf("expected comment truncated to %d runes, got %d", models.MaxCommentLength, n)
	}

	log, err := svc.GetCardLog(ctx, card.ID)
	if err != nil {
		t.Fatalf("GetCardLog failed: %v", err)
	}
	for _, action := range []string{audit.ActionExecutor, audit.ActionExtraExecutor, audit.ActionComment} {
		if countLogs(log.Card, action, op.ID) != 1 {
			t.Errorf("expected one %q entry", action)
		}
	}
}

func TestArchiveAndRepeat(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	ctx := context.Background()
	card := createRouteCard(t, svc, models.Quantity{}, false)

	if _, err := svc.ArchiveCard(ctx, card.ID); !errors.Is(err, primary.ErrNotDone) {
		t.Errorf("expected ErrNotDone, got %v", err)
	}
	if _, err := svc.RepeatCard(ctx, card.ID); !errors.Is(err, primary.ErrNotArchived) {
		t.Errorf("expected ErrNotArchived, got %v", err)
	}

	finishRoute(t, svc, clock, card)
	archived, err := svc.ArchiveCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("ArchiveCard failed: %v", err)
	}
	if !archived.Archived {
		t.Error("expected card archived")
	}

	repeated, err := svc.RepeatCard(ctx, card.ID)
	if err != nil {
		t.Fatalf("RepeatCard failed: %v", err)
	}
	if repeated.ID == card.ID || repeated.Barcode == card.Barcode {
		t.Error("expected fresh identity")
	}
	if repeated.Status != models.StatusNotStarted || repeated.Archived {
		t.Errorf("expected a live NOT_STARTED copy, got %s archived=%v", repeated.Status, repeated.Archived)
	}
	for _, op := range repeated.Operations {
		if op.Status != models.StatusNotStarted || op.ActualSeconds != nil {
			t.Errorf("expected reset operation, got %+v", op)
		}
	}
	if len(repeated.Logs) != 1 || repeated.Logs[0].Action != audit.ActionCopyCreated {
		t.Errorf("expected only the copy entry, got %v", repeated.Logs)
	}

	live, _ := svc.ListCards(ctx, primary.CardFilters{})
	arch, _ := svc.ListCards(ctx, primary.CardFilters{Archived: true})
	if len(live) != 1 || len(arch) != 1 {
		t.Errorf("expected 1 live and 1 archived card, got %d and %d", len(live), len(arch))
	}
}

func TestDuplicateCard(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	card := createRouteCard(t, svc, models.Qty(1), false)
	act(t, svc, card.ID, card.Operations[0].ID, "start")
	clock.Advance(time.Minute)

	cp, err := svc.DuplicateCard(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("DuplicateCard failed: %v", err)
	}
	if cp.Name != "Shaft (copy)" {
		t.Errorf("expected copy name, got %q", cp.Name)
	}
	if cp.Operations[0].Status != models.StatusNotStarted || cp.Operations[0].StartedAt != nil {
		t.Error("expected copied operation reset")
	}
	if cp.Operations[0].Executor != "Ivanov" {
		t.Errorf("expected executor kept, got %q", cp.Operations[0].Executor)
	}
}

func TestGroups(t *testing.T) {
	svc, _, clock := newTestCardService(t)
	ctx := context.Background()
	template := createRouteCard(t, svc, models.Quantity{}, false)

	resp, err := svc.CreateGroup(ctx, primary.CreateGroupRequest{TemplateRef: template.ID, Name: "Batch 7", Count: 3})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(resp.Children) != 3 || resp.Children[0].Name != "1. Shaft" || resp.Children[2].Name != "3. Shaft" {
		t.Fatalf("unexpected children: %+v", resp.Children)
	}
	group := resp.Group

	finishRoute(t, svc, clock, resp.Children[0])
	finishRoute(t, svc, clock, resp.Children[1])
	third := resp.Children[2]
	act(t, svc, third.ID, third.Operations[0].ID, "start")
	clock.Advance(time.Minute)
	act(t, svc, third.ID, third.Operations[0].ID, "pause")

	view, err := svc.GetCard(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if view.ProcessState != models.ProcessMixed {
		t.Errorf("expected group MIXED, got %s", view.ProcessState)
	}
	if len(view.Children) != 3 {
		t.Errorf("expected 3 children in view, got %d", len(view.Children))
	}

	setResp, err := svc.SetGroupExecutor(ctx, primary.SetGroupExecutorRequest{GroupRef: group.ID, OpCode: "op-0001", Executor: "Kuznetsov"})
	if err != nil {
		t.Fatalf("SetGroupExecutor failed: %v", err)
	}
	if setResp.Matched != 3 || setResp.Updated != 3 {
		t.Errorf("expected 3 matched and updated, got %+v", setResp)
	}

	if _, err := svc.ArchiveCard(ctx, third.ID); !errors.Is(err, primary.ErrInvalidArgument) {
		t.Errorf("expected child archive to be refused, got %v", err)
	}

	dup, err := svc.DuplicateGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("DuplicateGroup failed: %v", err)
	}
	if dup.Group.Name != "Batch 7 (copy)" || len(dup.Children) != 3 {
		t.Errorf("unexpected duplicate: %q with %d children", dup.Group.Name, len(dup.Children))
	}

	removed, err := svc.DeleteGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if removed != 4 {
		t.Errorf("expected 4 cards removed, got %d", removed)
	}
	if _, err := svc.DeleteGroup(ctx, template.ID); !errors.Is(err, primary.ErrNotAGroup) {
		t.Errorf("expected ErrNotAGroup, got %v", err)
	}
}

func TestListCards_Filters(t *testing.T) {
	svc, _, _ := newTestCardService(t)
	ctx := context.Background()
	template := createRouteCard(t, svc, models.Quantity{}, false)
	if _, err := svc.CreateGroup(ctx, primary.CreateGroupRequest{TemplateRef: template.ID, Count: 2}); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	act(t, svc, template.ID, template.Operations[0].ID, "start")

	tests := []struct {
		name    string
		filters primary.CardFilters
		want    int
	}{
		{"top level only", primary.CardFilters{}, 2},
		{"with children", primary.CardFilters{IncludeChildren: true}, 4},
		{"by status", primary.CardFilters{Status: models.StatusInProgress}, 1},
		{"by barcode query", primary.CardFilters{Query: template.Barcode}, 1},
		{"archived", primary.CardFilters{Archived: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.ListCards(ctx, tt.filters)
			if err != nil {
				t.Fatalf("ListCards failed: %v", err)
			}
			if len(views) != tt.want {
				t.Errorf("expected %d cards, got %d", tt.want, len(views))
			}
		})
	}
}
