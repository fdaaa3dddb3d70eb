package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/routecard/internal/core/operation"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// CardAdapter is a thin adapter that translates CLI operations to CardService calls.
// It depends only on the CardService interface, enabling easy testing with mocks.
type CardAdapter struct {
	service primary.CardService
	out     io.Writer
	now     func() time.Time
}

// NewCardAdapter creates a new CardAdapter with the given service.
func NewCardAdapter(service primary.CardService, out io.Writer) *CardAdapter {
	return &CardAdapter{service: service, out: out, now: time.Now}
}

// List lists cards matching filters.
func (a *CardAdapter) List(ctx context.Context, filters primary.CardFilters) ([]*primary.CardView, error) {
	views, err := a.service.ListCards(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	if len(views) == 0 {
		fmt.Fprintln(a.out, "No cards found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first card:")
		fmt.Fprintln(a.out, "  routecard card create \"Drive shaft\" --qty 10")
		return views, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BARCODE\tNAME\tSTATUS\tSTATE\tCURRENT\tQTY")
	fmt.Fprintln(w, "-------\t----\t------\t-----\t-------\t---")
	for _, v := range views {
		current := "-"
		if v.Current != nil {
			current = v.Current.Label()
		}
		name := v.Card.Name
		if v.Card.IsGroup {
			name = fmt.Sprintf("%s (group of %d)", name, len(v.Children))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Card.Barcode,
			name,
			StatusLabel(v.Card.Status),
			StateLabel(v.ProcessState),
			current,
			orDash(v.Card.Quantity.String()),
		)
	}
	w.Flush()
	a.banner()
	return views, nil
}

// Show displays a card with its route and final results.
func (a *CardAdapter) Show(ctx context.Context, ref string) (*primary.CardView, error) {
	v, err := a.service.GetCard(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	c := v.Card

	fmt.Fprintf(a.out, "\nCard: %s\n", c.Name)
	fmt.Fprintf(a.out, "ID:       %s\n", c.ID)
	fmt.Fprintf(a.out, "Barcode:  %s\n", c.Barcode)
	if c.OrderNo != "" {
		fmt.Fprintf(a.out, "Order:    %s\n", c.OrderNo)
	}
	if c.Drawing != "" {
		fmt.Fprintf(a.out, "Drawing:  %s\n", c.Drawing)
	}
	if c.Material != "" {
		fmt.Fprintf(a.out, "Material: %s\n", c.Material)
	}
	fmt.Fprintf(a.out, "Quantity: %s\n", orDash(c.Quantity.String()))
	fmt.Fprintf(a.out, "Status:   %s (%s)\n", StatusLabel(c.Status), StateLabel(v.ProcessState))
	if c.Archived {
		fmt.Fprintln(a.out, "Archived: yes")
	}

	if c.IsGroup {
		fmt.Fprintln(a.out, "\nChildren:")
		for _, child := range v.Children {
			fmt.Fprintf(a.out, "  %s  %-30s %s\n", child.Card.Barcode, child.Card.Name, StatusLabel(child.Card.Status))
		}
		fmt.Fprintln(a.out)
		a.banner()
		return v, nil
	}

	fmt.Fprintln(a.out)
	a.printRoute(c)

	r := v.Results
	fmt.Fprintf(a.out, "\nResults: good %d, scrap %d, held %d of %d", r.Good, r.Scrap, r.Hold, r.InitialQuantity)
	if !r.OK {
		fmt.Fprintf(a.out, " %s", failMark())
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out)
	a.banner()
	return v, nil
}

func (a *CardAdapter) printRoute(c *models.Card) {
	if len(c.Operations) == 0 {
		fmt.Fprintln(a.out, "Route is empty. Add a step:")
		fmt.Fprintf(a.out, "  routecard op add %s <catalog-op> <center>\n", c.Barcode)
		return
	}
	now := a.now()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCODE\tOPERATION\tCENTER\tEXECUTOR\tSTATUS\tTIME\tGOOD/SCRAP/HELD")
	for i, op := range route.Sorted(c.Operations) {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d/%d/%d\n",
			i+1,
			op.OpCode,
			op.OpName,
			op.CenterName,
			orDash(executors(op)),
			StatusLabel(op.Status),
			operation.FormatHMS(operation.ElapsedSeconds(op, now)),
			op.GoodCount, op.ScrapCount, op.HoldCount,
		)
	}
	w.Flush()
}

// Create creates a card and prints its barcode.
func (a *CardAdapter) Create(ctx context.Context, draft primary.CardDraft) (*models.Card, error) {
	c, err := a.service.CreateCard(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Created card %s: %s\n", okMark(), c.Barcode, c.Name)
	a.banner()
	return c, nil
}

// Update applies field changes to a card.
func (a *CardAdapter) Update(ctx context.Context, req primary.UpdateCardRequest) (*models.Card, error) {
	c, err := a.service.UpdateCard(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Card %s updated\n", okMark(), c.Barcode)
	a.banner()
	return c, nil
}

// Delete deletes a card.
func (a *CardAdapter) Delete(ctx context.Context, ref string) error {
	if err := a.service.DeleteCard(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Deleted card %s\n", okMark(), ref)
	a.banner()
	return nil
}

// Act runs an operation action and reports the transition or the rejection.
func (a *CardAdapter) Act(ctx context.Context, cardRef, opRef, action string) (*primary.ActionResult, error) {
	res, err := a.service.ApplyOperationAction(ctx, primary.OperationActionRequest{
		CardRef: cardRef,
		OpRef:   opRef,
		Action:  action,
	})
	if err != nil {
		return nil, err
	}
	label := opRef
	if res.Operation != nil {
		label = res.Operation.Label()
	}
	if !res.Applied {
		fmt.Fprintf(a.out, "%s %s: %s\n", failMark(), label, res.Reason)
		return res, nil
	}
	fmt.Fprintf(a.out, "%s %s: %s → %s\n", okMark(), label, res.PrevStatus, StatusLabel(res.NewStatus))
	if res.Operation != nil && res.Operation.ActualSeconds != nil && res.NewStatus == models.StatusDone {
		fmt.Fprintf(a.out, "  Actual time: %s\n", operation.FormatHMS(*res.Operation.ActualSeconds))
	}
	fmt.Fprintf(a.out, "  Card status: %s\n", StatusLabel(res.CardStatus))
	if !res.Persisted {
		a.banner()
	}
	return res, nil
}

// Log prints a card's audit log.
func (a *CardAdapter) Log(ctx context.Context, ref string) (*primary.CardLog, error) {
	log, err := a.service.GetCardLog(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get card log: %w", err)
	}
	if len(log.Entries) == 0 {
		fmt.Fprintln(a.out, "No log entries.")
		return log, nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTOR\tACTION\tOBJECT\tOLD\tNEW")
	for _, e := range log.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			orDash(e.Actor),
			e.Action,
			e.Object,
			orDash(e.OldValue),
			orDash(e.NewValue),
		)
	}
	w.Flush()
	return log, nil
}

// Archive archives a DONE card or group.
func (a *CardAdapter) Archive(ctx context.Context, ref string) (*models.Card, error) {
	c, err := a.service.ArchiveCard(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to archive card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Archived %s: %s\n", okMark(), c.Barcode, c.Name)
	a.banner()
	return c, nil
}

// Repeat creates a fresh copy of an archived card.
func (a *CardAdapter) Repeat(ctx context.Context, ref string) (*models.Card, error) {
	c, err := a.service.RepeatCard(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to repeat card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Repeated as %s: %s\n", okMark(), c.Barcode, c.Name)
	a.banner()
	return c, nil
}

// Duplicate creates a reset copy of a card.
func (a *CardAdapter) Duplicate(ctx context.Context, ref string) (*models.Card, error) {
	c, err := a.service.DuplicateCard(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate card: %w", err)
	}
	fmt.Fprintf(a.out, "%s Duplicated as %s: %s\n", okMark(), c.Barcode, c.Name)
	a.banner()
	return c, nil
}

func (a *CardAdapter) banner() {
	PrintSyncBanner(a.out, a.service.SyncStatus())
}
