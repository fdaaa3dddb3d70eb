package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// ArchiveCard archives a DONE card, or a DONE group with its children.
// Cards inside a group are archived together with their group only.
func (s *CardServiceImpl) ArchiveCard(ctx context.Context, ref string) (*models.Card, error) {
	var out *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, ref)
		if err != nil {
			return false, err
		}
		if c.GroupID != "" {
			return false, fmt.Errorf("%w: card %s belongs to group %s; archive the group", primary.ErrInvalidArgument, c.ID, c.GroupID)
		}
		if c.Status != models.StatusDone {
			return false, fmt.Errorf("%w: %s is %s", primary.ErrNotDone, c.ID, c.Status)
		}
		if c.Archived {
			out = c.Clone()
			return false, nil
		}

		archive(c, env)
		if c.IsGroup {
			for _, child := range collection.Children(col, c.ID, false) {
				archive(child, env)
			}
		}
		collection.Recalc(col, c)
		out = c.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("card archived", zap.String("card_id", out.ID), zap.Bool("group", out.IsGroup))
	return out, nil
}

func archive(c *models.Card, env collection.Env) {
	c.Archived = true
	env.Log(c, audit.Entry{Action: audit.ActionArchived, Object: audit.ObjectCard, Field: "archived", OldValue: false, NewValue: true})
}

// RepeatCard creates a fresh copy of an archived card or group.
func (s *CardServiceImpl) RepeatCard(ctx context.Context, ref string) (*models.Card, error) {
	var out *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, ref)
		if err != nil {
			return false, err
		}
		if !c.Archived {
			return false, fmt.Errorf("%w: %s", primary.ErrNotArchived, c.ID)
		}
		out = collection.Repeat(col, c, env).Clone()
		return true, nil
	})
	return out, err
}

// DuplicateCard creates a reset copy of a card.
func (s *CardServiceImpl) DuplicateCard(ctx context.Context, ref string) (*models.Card, error) {
	var out *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, ref)
		if err != nil {
			return false, err
		}
		if c.IsGroup {
			return false, fmt.Errorf("%w: duplicate %s as a group", primary.ErrIsAGroup, c.ID)
		}
		out = collection.DuplicateCard(col, c, env).Clone()
		return true, nil
	})
	return out, err
}

// CreateGroup creates a group with count children copied from a draft or
// from an existing card.
func (s *CardServiceImpl) CreateGroup(ctx context.Context, req primary.CreateGroupRequest) (*primary.GroupResponse, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("%w: group size must be at least 1, got %d", primary.ErrInvalidArgument, req.Count)
	}
	if req.TemplateRef == "" && strings.TrimSpace(req.Draft.Name) == "" {
		return nil, fmt.Errorf("%w: card name is required", primary.ErrInvalidArgument)
	}

	var resp *primary.GroupResponse
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		var draft *models.Card
		if req.TemplateRef != "" {
			tpl, err := findCard(col, req.TemplateRef)
			if err != nil {
				return false, err
			}
			if tpl.IsGroup {
				return false, fmt.Errorf("%w: template %s", primary.ErrIsAGroup, tpl.ID)
			}
			draft = tpl.Clone()
		} else {
			draft = cardFromDraft(req.Draft)
			collection.NormalizeCard(draft, env)
		}

		group, children := collection.CreateGroup(col, draft, req.Name, req.Count, env)
		route.EnsureCodes(col, env.NewCode)
		resp = groupResponse(group, children)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("group created", zap.String("group_id", resp.Group.ID), zap.Int("children", len(resp.Children)))
	return resp, nil
}

// DuplicateGroup creates a reset copy of a group and its live children.
func (s *CardServiceImpl) DuplicateGroup(ctx context.Context, ref string) (*primary.GroupResponse, error) {
	var resp *primary.GroupResponse
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		g, err := findGroup(col, ref)
		if err != nil {
			return false, err
		}
		group, children := collection.DuplicateGroup(col, g, false, env)
		resp = groupResponse(group, children)
		return true, nil
	})
	return resp, err
}

// DeleteGroup deletes a group and its children.
func (s *CardServiceImpl) DeleteGroup(ctx context.Context, ref string) (int, error) {
	removed := 0
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		g, err := findGroup(col, ref)
		if err != nil {
			return false, err
		}
		removed = collection.DeleteGroup(col, g.ID)
		return removed > 0, nil
	})
	return removed, err
}

// SetGroupExecutor assigns an executor to every step with the given op code
// across the group's live children. Additional executors are cleared.
func (s *CardServiceImpl) SetGroupExecutor(ctx context.Context, req primary.SetGroupExecutorRequest) (*primary.GroupExecutorResponse, error) {
	code := strings.TrimSpace(req.OpCode)
	if code == "" {
		return nil, fmt.Errorf("%w: op code is required", primary.ErrInvalidArgument)
	}
	executor := strings.TrimSpace(req.Executor)

	resp := &primary.GroupExecutorResponse{}
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		g, err := findGroup(col, req.GroupRef)
		if err != nil {
			return false, err
		}
		for _, child := range collection.Children(col, g.ID, false) {
			for _, op := range child.Operations {
				if !strings.EqualFold(op.OpCode, code) {
					continue
				}
				resp.Matched++
				if op.Executor == executor && len(op.AdditionalExecutors) == 0 {
					continue
				}
				env.Log(child, audit.Entry{
					Action:   audit.ActionExecutor,
					Object:   op.Label(),
					Field:    "executor",
					TargetID: op.ID,
					OldValue: op.Executor,
					NewValue: executor,
				})
				op.Executor = executor
				op.AdditionalExecutors = []string{}
				resp.Updated++
			}
		}
		return resp.Updated > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func findGroup(col *models.Collection, ref string) (*models.Card, error) {
	g, err := findCard(col, ref)
	if err != nil {
		return nil, err
	}
	if !g.IsGroup {
		return nil, fmt.Errorf("%w: %s", primary.ErrNotAGroup, g.ID)
	}
	return g, nil
}

func groupResponse(group *models.Card, children []*models.Card) *primary.GroupResponse {
	resp := &primary.GroupResponse{Group: group.Clone(), Children: make([]*models.Card, 0, len(children))}
	for _, c := range children {
		resp.Children = append(resp.Children, c.Clone())
	}
	return resp
}
