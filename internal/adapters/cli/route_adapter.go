package cli

import (
	"context"
	"fmt"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// AddStep appends a route step. A rejected edit is printed, not returned as an error.
func (a *CardAdapter) AddStep(ctx context.Context, req primary.AddRouteStepRequest) (*primary.RouteStepResponse, error) {
	res, err := a.service.AddRouteStep(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add step: %w", err)
	}
	if !res.Applied {
		fmt.Fprintf(a.out, "%s Step not added: %s\n", failMark(), res.Reason)
		return res, nil
	}
	fmt.Fprintf(a.out, "%s Added %s at position %d\n", okMark(), res.Operation.Label(), res.Operation.Order)
	a.banner()
	return res, nil
}

// RemoveStep removes a route step.
func (a *CardAdapter) RemoveStep(ctx context.Context, cardRef, opRef string) (*primary.RouteStepResponse, error) {
	res, err := a.service.RemoveRouteStep(ctx, cardRef, opRef)
	if err != nil {
		return nil, fmt.Errorf("failed to remove step: %w", err)
	}
	if !res.Applied {
		fmt.Fprintf(a.out, "%s Step not removed: %s\n", failMark(), res.Reason)
		return res, nil
	}
	fmt.Fprintf(a.out, "%s Removed %s\n", okMark(), res.Operation.Label())
	a.banner()
	return res, nil
}

// MoveStep moves a route step up (-1) or down (+1).
func (a *CardAdapter) MoveStep(ctx context.Context, cardRef, opRef string, delta int) (*models.Card, error) {
	c, err := a.service.MoveRouteStep(ctx, cardRef, opRef, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to move step: %w", err)
	}
	fmt.Fprintf(a.out, "%s Route of %s reordered\n", okMark(), c.Barcode)
	a.printRoute(c)
	a.banner()
	return c, nil
}

// Counts records aggregate counters.
func (a *CardAdapter) Counts(ctx context.Context, req primary.RecordCountsRequest) (*models.Operation, error) {
	op, err := a.service.RecordCounts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record counts: %w", err)
	}
	fmt.Fprintf(a.out, "%s %s: good %d, scrap %d, held %d\n", okMark(), op.Label(), op.GoodCount, op.ScrapCount, op.HoldCount)
	a.banner()
	return op, nil
}

// Item records one item's counters or name.
func (a *CardAdapter) Item(ctx context.Context, req primary.RecordItemRequest) (*models.Item, error) {
	it, err := a.service.RecordItem(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record item: %w", err)
	}
	fmt.Fprintf(a.out, "%s %s: good %d, scrap %d, held %d\n", okMark(), orDash(it.Name), it.GoodCount, it.ScrapCount, it.HoldCount)
	a.banner()
	return it, nil
}

// Executor sets a step's executors.
func (a *CardAdapter) Executor(ctx context.Context, req primary.SetExecutorRequest) (*models.Operation, error) {
	op, err := a.service.SetExecutor(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to set executor: %w", err)
	}
	fmt.Fprintf(a.out, "%s %s: %s\n", okMark(), op.Label(), orDash(executors(op)))
	a.banner()
	return op, nil
}

// Comment sets a step's comment.
func (a *CardAdapter) Comment(ctx context.Context, cardRef, opRef, comment string) (*models.Operation, error) {
	op, err := a.service.SetComment(ctx, cardRef, opRef, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to set comment: %w", err)
	}
	fmt.Fprintf(a.out, "%s %s: %q\n", okMark(), op.Label(), op.Comment)
	a.banner()
	return op, nil
}
