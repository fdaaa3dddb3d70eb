package app

import (
	"context"
	"fmt"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// AddRouteStep appends a step from the catalog to a card's route.
// A missing catalog reference is a rejection, not an error.
func (s *CardServiceImpl) AddRouteStep(ctx context.Context, req primary.AddRouteStepRequest) (*primary.RouteStepResponse, error) {
	resp := &primary.RouteStepResponse{}
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, req.CardRef)
		if err != nil {
			return false, err
		}
		catalogOp := col.FindOp(req.OpRef)
		center := col.FindCenter(req.CenterRef)

		guard := route.CanAddStep(route.AddStepContext{
			CardID:       c.ID,
			IsGroup:      c.IsGroup,
			OpRef:        req.OpRef,
			OpExists:     catalogOp != nil,
			CenterRef:    req.CenterRef,
			CenterExists: center != nil,
		})
		if guard.Allowed && c.UseItemList {
			guard = route.GuardResult(quantity.CanTrackItems(req.Quantity.Value()))
		}
		if !guard.Allowed {
			resp.Reason = guard.Reason
			resp.Card = c.Clone()
			return false, nil
		}

		original := c.Clone()
		watch := watchStatus(col, c)
		step := route.NewStep(env.NewID("op"), catalogOp, center, route.NextOrder(c), route.StepOptions{
			Executor:       req.Executor,
			PlannedMinutes: req.PlannedMinutes,
			Quantity:       req.Quantity,
			AutoCode:       req.AutoCode,
		})
		c.Operations = append(c.Operations, step)
		route.RenumberAutoCodes(c)
		if c.UseItemList {
			quantity.NormalizeItems(c, step, env.ItemID())
		}
		collection.Recalc(col, c)

		logRouteDiff(original, c, env)
		watch.log(env)
		resp.Applied = true
		resp.Card = c.Clone()
		resp.Operation = step.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveRouteStep removes a step from a card's route. A running or paused
// step is not removed.
func (s *CardServiceImpl) RemoveRouteStep(ctx context.Context, cardRef, opRef string) (*primary.RouteStepResponse, error) {
	resp := &primary.RouteStepResponse{}
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, cardRef)
		if err != nil {
			return false, err
		}
		op, err := findOperation(c, opRef)
		if err != nil {
			return false, err
		}
		if guard := route.CanRemoveStep(route.EditContext{OperationID: op.ID, Status: op.Status}); !guard.Allowed {
			resp.Reason = guard.Reason
			resp.Card = c.Clone()
			resp.Operation = op.Clone()
			return false, nil
		}

		original := c.Clone()
		watch := watchStatus(col, c)
		removed := route.Remove(c, op.ID)
		collection.Recalc(col, c)

		logRouteDiff(original, c, env)
		watch.log(env)
		resp.Applied = true
		resp.Card = c.Clone()
		resp.Operation = removed.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MoveRouteStep swaps a step with its neighbour (delta -1 up, +1 down).
// Moving past either end of the route changes nothing.
func (s *CardServiceImpl) MoveRouteStep(ctx context.Context, cardRef, opRef string, delta int) (*models.Card, error) {
	if delta != -1 && delta != 1 {
		return nil, fmt.Errorf("%w: move delta must be -1 or 1, got %d", primary.ErrInvalidArgument, delta)
	}
	var out *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, cardRef)
		if err != nil {
			return false, err
		}
		op, err := findOperation(c, opRef)
		if err != nil {
			return false, err
		}
		original := c.Clone()
		moved := route.Move(c, op.ID, delta)
		if moved {
			logRouteDiff(original, c, env)
		}
		out = c.Clone()
		return moved, nil
	})
	return out, err
}

// logRouteDiff logs the operation-level differences of a route edit.
// Card status changes are logged separately by statusWatch.
func logRouteDiff(original, updated *models.Card, env collection.Env) {
	for _, e := range audit.Diff(original, updated) {
		if e.Action == audit.ActionCardStatus {
			continue
		}
		env.Log(updated, e)
	}
}
