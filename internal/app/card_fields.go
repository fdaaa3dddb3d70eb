package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// RecordCounts sets an operation's aggregate good/scrap/held counters.
// Values are clamped to non-negative integers. Each changed counter is logged.
func (s *CardServiceImpl) RecordCounts(ctx context.Context, req primary.RecordCountsRequest) (*models.Operation, error) {
	var out *models.Operation
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, op, err := findStep(col, req.CardRef, req.OpRef)
		if err != nil {
			return false, err
		}
		if c.UseItemList {
			return false, fmt.Errorf("%w: card %s counts per item", primary.ErrInvalidArgument, c.ID)
		}

		prev := quantity.OperationCounts(op)
		next := prev
		applyCount(&next.Good, req.Good)
		applyCount(&next.Scrap, req.Scrap)
		applyCount(&next.Hold, req.Hold)
		next = quantity.ClampCounts(next)
		quantity.SetOperationCounts(op, next)

		changed := logCounts(c, op.Label(), op.ID, audit.ActionQuantity, prev, next, env)
		out = op.Clone()
		return changed, nil
	})
	return out, err
}

// RecordItem sets one item's counters and/or name in per-item mode.
// ItemRef is an item id or a 1-based position.
func (s *CardServiceImpl) RecordItem(ctx context.Context, req primary.RecordItemRequest) (*models.Item, error) {
	var out *models.Item
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, op, err := findStep(col, req.CardRef, req.OpRef)
		if err != nil {
			return false, err
		}
		if !c.UseItemList {
			return false, fmt.Errorf("%w: %s", primary.ErrNotPerItem, c.ID)
		}
		quantity.NormalizeItems(c, op, env.ItemID())
		it, err := findItem(op, req.ItemRef)
		if err != nil {
			return false, err
		}

		changed := false
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name != it.Name {
				env.Log(c, audit.Entry{
					Action:   audit.ActionItemName,
					Object:   op.Label(),
					Field:    "name",
					TargetID: it.ID,
					OldValue: it.Name,
					NewValue: name,
				})
				it.Name = name
				changed = true
			}
		}

		prev := quantity.ItemCounts(it)
		next := prev
		applyCount(&next.Good, req.Good)
		applyCount(&next.Scrap, req.Scrap)
		applyCount(&next.Hold, req.Hold)
		next = quantity.ClampItemCounts(next)
		quantity.SetItemCounts(it, next)
		if logCounts(c, op.Label(), it.ID, audit.ActionItemQuantity, prev, next, env) {
			changed = true
		}

		if changed {
			quantity.NormalizeItems(c, op, env.ItemID())
		}
		cp := *it
		out = &cp
		return changed, nil
	})
	return out, err
}

func applyCount(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// logCounts logs each counter that differs between prev and next.
func logCounts(c *models.Card, object, targetID, action string, prev, next quantity.Counts, env collection.Env) bool {
	changed := false
	for _, f := range []struct {
		field     string
		old, into int
	}{
		{"goodCount", prev.Good, next.Good},
		{"scrapCount", prev.Scrap, next.Scrap},
		{"holdCount", prev.Hold, next.Hold},
	} {
		if f.old == f.into {
			continue
		}
		env.Log(c, audit.Entry{Action: action, Object: object, Field: f.field, TargetID: targetID, OldValue: f.old, NewValue: f.into})
		changed = true
	}
	return changed
}

// SetExecutor sets an operation's executor and additional executors.
func (s *CardServiceImpl) SetExecutor(ctx context.Context, req primary.SetExecutorRequest) (*models.Operation, error) {
	extras := make([]string, 0, len(req.Additional))
	for _, name := range req.Additional {
		if name = strings.TrimSpace(name); name != "" {
			extras = append(extras, name)
		}
	}
	if len(extras) > models.MaxAdditionalExecutors {
		return nil, fmt.Errorf("%w: at most %d additional executors, got %d",
			primary.ErrInvalidArgument, models.MaxAdditionalExecutors, len(extras))
	}

	var out *models.Operation
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, op, err := findStep(col, req.CardRef, req.OpRef)
		if err != nil {
			return false, err
		}
		changed := false
		executor := strings.TrimSpace(req.Executor)
		if executor != op.Executor {
			env.Log(c, audit.Entry{
				Action:   audit.ActionExecutor,
				Object:   op.Label(),
				Field:    "executor",
				TargetID: op.ID,
				OldValue: op.Executor,
				NewValue: executor,
			})
			op.Executor = executor
			changed = true
		}
		if strings.Join(extras, ", ") != strings.Join(op.AdditionalExecutors, ", ") {
			env.Log(c, audit.Entry{
				Action:   audit.ActionExtraExecutor,
				Object:   op.Label(),
				Field:    "additionalExecutors",
				TargetID: op.ID,
				OldValue: strings.Join(op.AdditionalExecutors, ", "),
				NewValue: strings.Join(extras, ", "),
			})
			op.AdditionalExecutors = extras
			changed = true
		}
		out = op.Clone()
		return changed, nil
	})
	return out, err
}

// SetComment sets an operation's comment, truncated to the maximum length.
func (s *CardServiceImpl) SetComment(ctx context.Context, cardRef, opRef, comment string) (*models.Operation, error) {
	comment = strings.TrimSpace(comment)
	if r := []rune(comment); len(r) > models.MaxCommentLength {
		comment = string(r[:models.MaxCommentLength])
	}
	var out *models.Operation
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, op, err := findStep(col, cardRef, opRef)
		if err != nil {
			return false, err
		}
		if comment == op.Comment {
			out = op.Clone()
			return false, nil
		}
		env.Log(c, audit.Entry{
			Action:   audit.ActionComment,
			Object:   op.Label(),
			Field:    "comment",
			TargetID: op.ID,
			OldValue: op.Comment,
			NewValue: comment,
		})
		op.Comment = comment
		out = op.Clone()
		return true, nil
	})
	return out, err
}

func findStep(col *models.Collection, cardRef, opRef string) (*models.Card, *models.Operation, error) {
	c, err := findCard(col, cardRef)
	if err != nil {
		return nil, nil, err
	}
	op, err := findOperation(c, opRef)
	if err != nil {
		return nil, nil, err
	}
	return c, op, nil
}

func findItem(op *models.Operation, ref string) (*models.Item, error) {
	ref = strings.TrimSpace(ref)
	if it := op.FindItem(ref); it != nil {
		return it, nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(op.Items) {
		return op.Items[n-1], nil
	}
	return nil, fmt.Errorf("%w: %s on %s", primary.ErrItemNotFound, ref, op.Label())
}
