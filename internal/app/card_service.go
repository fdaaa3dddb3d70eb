// Package app contains the application services that orchestrate route card logic.
package app

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/barcode"
	corecard "github.com/example/routecard/internal/core/card"
	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/operation"
	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// CardServiceImpl implements the CardService interface.
type CardServiceImpl struct {
	repo   *CardRepository
	logger *zap.Logger
}

// NewCardService creates a new CardService with injected dependencies.
func NewCardService(repo *CardRepository, logger *zap.Logger) *CardServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardServiceImpl{repo: repo, logger: logger}
}

// ListCards lists cards with optional filters.
func (s *CardServiceImpl) ListCards(ctx context.Context, filters primary.CardFilters) ([]*primary.CardView, error) {
	var views []*primary.CardView
	err := s.repo.View(func(col *models.Collection) error {
		query := strings.ToLower(strings.TrimSpace(filters.Query))
		for _, c := range col.Cards {
			if c.Archived != filters.Archived {
				continue
			}
			if filters.GroupID != "" && c.GroupID != filters.GroupID {
				continue
			}
			if filters.GroupID == "" && !filters.IncludeChildren && c.GroupID != "" {
				continue
			}
			if filters.Status != "" && c.Status != filters.Status {
				continue
			}
			if query != "" && !matchesQuery(c, query) {
				continue
			}
			v := buildView(col, c, !filters.IncludeChildren)
			if filters.ProcessState != "" && v.ProcessState != filters.ProcessState {
				continue
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func matchesQuery(c *models.Card, query string) bool {
	for _, field := range []string{c.Name, c.Barcode, c.OrderNo, c.ContractNumber, c.Drawing} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// GetCard retrieves a card by id or barcode.
func (s *CardServiceImpl) GetCard(ctx context.Context, ref string) (*primary.CardView, error) {
	var view *primary.CardView
	err := s.repo.View(func(col *models.Collection) error {
		c, err := findCard(col, ref)
		if err != nil {
			return err
		}
		view = buildView(col, c, true)
		return nil
	})
	return view, err
}

// buildView projects a card. Group views carry their children when withChildren is set.
func buildView(col *models.Collection, c *models.Card, withChildren bool) *primary.CardView {
	v := &primary.CardView{Card: c.Clone()}
	if c.IsGroup {
		v.ProcessState = corecard.GroupProcessState(collection.StatusChildren(col, c))
		if withChildren {
			for _, child := range collection.Children(col, c.ID, true) {
				v.Children = append(v.Children, buildView(col, child, false))
			}
		}
		return v
	}
	v.ProcessState = corecard.ProcessState(c.Operations)
	if cur := corecard.CurrentOperation(c.Operations); cur != nil {
		v.Current = cur.Clone()
	}
	initial, _ := c.Quantity.Get()
	if c.InitialSnapshot != nil {
		if q, ok := c.InitialSnapshot.Quantity.Get(); ok {
			initial = q
		}
	}
	v.Results = quantity.CalculateFinalResults(c.Operations, initial)
	return v
}

// CreateCard creates a new card from a draft.
func (s *CardServiceImpl) CreateCard(ctx context.Context, draft primary.CardDraft) (*models.Card, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, fmt.Errorf("%w: card name is required", primary.ErrInvalidArgument)
	}
	var created *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c := cardFromDraft(draft)
		if err := checkItemLimit(c); err != nil {
			return false, err
		}
		c.ID = env.NewID("card")
		c.Barcode = barcode.GenerateUnique(collection.Barcodes(col))
		c.CreatedAt = env.Now
		collection.NormalizeCard(c, env)
		col.Cards = append(col.Cards, c)
		route.EnsureCodes(col, env.NewCode)
		collection.Recalc(col, c)
		audit.EnsureSnapshot(c)
		env.Log(c, audit.Entry{Action: audit.ActionCardCreated, Object: audit.ObjectCard, NewValue: c.Barcode})
		created = c.Clone()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("card created", zap.String("card_id", created.ID), zap.String("barcode", created.Barcode))
	return created, nil
}

func cardFromDraft(d primary.CardDraft) *models.Card {
	c := &models.Card{
		Name:           strings.TrimSpace(d.Name),
		OrderNo:        d.OrderNo,
		ContractNumber: d.ContractNumber,
		Desc:           d.Desc,
		Drawing:        d.Drawing,
		Material:       d.Material,
		Quantity:       d.Quantity,
		UseItemList:    d.UseItemList,
		Status:         models.StatusNotStarted,
		Operations:     []*models.Operation{},
		Attachments:    []*models.Attachment{},
		Logs:           []models.LogEntry{},
	}
	for _, op := range d.Operations {
		c.Operations = append(c.Operations, op.Clone())
	}
	for _, a := range d.Attachments {
		ac := *a
		c.Attachments = append(c.Attachments, &ac)
	}
	return c
}

// UpdateCard replaces a card's editable fields and logs the differences.
// The edit is applied to a copy that replaces the stored card only once it
// is accepted.
func (s *CardServiceImpl) UpdateCard(ctx context.Context, req primary.UpdateCardRequest) (*models.Card, error) {
	var updated *models.Card
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		original, err := findCard(col, req.Ref)
		if err != nil {
			return false, err
		}
		if original.IsGroup && req.UseItemList != nil && *req.UseItemList {
			return false, fmt.Errorf("%w: %s has no operations to track items on", primary.ErrIsAGroup, original.ID)
		}

		c := original.Clone()
		setString(&c.Name, req.Name)
		setString(&c.OrderNo, req.OrderNo)
		setString(&c.ContractNumber, req.ContractNumber)
		setString(&c.Desc, req.Desc)
		setString(&c.Drawing, req.Drawing)
		setString(&c.Material, req.Material)
		if req.Quantity != nil {
			c.Quantity = *req.Quantity
		}
		if req.UseItemList != nil {
			c.UseItemList = *req.UseItemList
		}
		if strings.TrimSpace(c.Name) == "" {
			c.Name = original.Name
		}
		if err := checkItemLimit(c); err != nil {
			return false, err
		}

		collection.NormalizeCard(c, env)
		entries := audit.Diff(original, c)
		if len(entries) == 0 {
			updated = original.Clone()
			return false, nil
		}

		replaceCard(col, original, c)
		route.EnsureCodes(col, env.NewCode)
		collection.Recalc(col, c)
		for _, e := range entries {
			env.Log(c, e)
		}
		updated = c.Clone()
		return true, nil
	})
	return updated, err
}

// checkItemLimit rejects a per-item card whose quantities cannot be tracked item by item.
func checkItemLimit(c *models.Card) error {
	if !c.UseItemList {
		return nil
	}
	qtys := []models.Quantity{c.Quantity}
	for _, op := range c.Operations {
		qtys = append(qtys, op.Quantity)
	}
	for _, q := range qtys {
		if g := quantity.CanTrackItems(q.Value()); !g.Allowed {
			return fmt.Errorf("%w: %s", primary.ErrInvalidArgument, g.Reason)
		}
	}
	return nil
}

func replaceCard(col *models.Collection, old, next *models.Card) {
	for i, c := range col.Cards {
		if c == old {
			col.Cards[i] = next
			return
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// DeleteCard deletes a single card.
func (s *CardServiceImpl) DeleteCard(ctx context.Context, ref string) error {
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, ref)
		if err != nil {
			return false, err
		}
		if c.IsGroup {
			return false, fmt.Errorf("%w: use group delete for %s", primary.ErrIsAGroup, c.ID)
		}
		return collection.DeleteCard(col, c.ID), nil
	})
	return err
}

// ApplyOperationAction runs start, pause, resume or stop on an operation.
// A rejection is reported in the result, not as an error.
func (s *CardServiceImpl) ApplyOperationAction(ctx context.Context, req primary.OperationActionRequest) (*primary.ActionResult, error) {
	action, err := operation.ParseAction(req.Action)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", primary.ErrInvalidAction, err)
	}

	var result *primary.ActionResult
	persisted, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		c, err := findCard(col, req.CardRef)
		if err != nil {
			return false, err
		}
		if c.IsGroup {
			return false, fmt.Errorf("%w: %s has no operations", primary.ErrIsAGroup, c.ID)
		}
		op, err := findOperation(c, req.OpRef)
		if err != nil {
			return false, err
		}

		watch := watchStatus(col, c)
		res := operation.Apply(c, op, action, env.Now, env.ItemID())
		result = &primary.ActionResult{
			Applied:    res.Applied,
			Reason:     res.Reason,
			PrevStatus: res.PrevStatus,
			NewStatus:  res.NewStatus,
		}
		if !res.Applied {
			result.Card = c.Clone()
			result.Operation = op.Clone()
			result.CardStatus = c.Status
			return false, nil
		}

		collection.Recalc(col, c)
		if res.NewStatus != res.PrevStatus {
			env.Log(c, audit.Entry{
				Action:   audit.ActionOperationStatus,
				Object:   op.Label(),
				Field:    "status",
				TargetID: op.ID,
				OldValue: res.PrevStatus,
				NewValue: res.NewStatus,
			})
		}
		if res.ElapsedChanged {
			env.Log(c, audit.Entry{
				Action:   audit.ActionActualTime,
				Object:   op.Label(),
				Field:    "actualSeconds",
				TargetID: op.ID,
				OldValue: int(math.Round(res.PrevElapsed)),
				NewValue: int(math.Round(res.NewElapsed)),
			})
		}
		watch.log(env)

		result.Card = c.Clone()
		result.Operation = op.Clone()
		result.CardStatus = c.Status
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.repo.Metrics().ObserveAction(string(action), result.Applied)
	if !result.Applied {
		s.logger.Debug("operation action rejected",
			zap.String("action", string(action)),
			zap.String("card_id", result.Card.ID),
			zap.String("operation_id", result.Operation.ID),
			zap.String("reason", result.Reason))
	}
	result.Persisted = persisted
	return result, nil
}

// statusWatch remembers the statuses of a card and its group before a
// mutation so that changes can be logged afterwards.
type statusWatch struct {
	card      *models.Card
	prev      models.Status
	group     *models.Card
	groupPrev models.Status
}

func watchStatus(col *models.Collection, c *models.Card) statusWatch {
	w := statusWatch{card: c, prev: c.Status}
	if c.GroupID != "" {
		if g := col.FindCard(c.GroupID); g != nil && g.IsGroup {
			w.group, w.groupPrev = g, g.Status
		}
	}
	return w
}

func (w statusWatch) log(env collection.Env) {
	logCardStatus(w.card, w.prev, env)
	if w.group != nil {
		logCardStatus(w.group, w.groupPrev, env)
	}
}

// logCardStatus records a card status change, if any.
func logCardStatus(c *models.Card, prev models.Status, env collection.Env) {
	if c.Status == prev {
		return
	}
	env.Log(c, audit.Entry{
		Action:   audit.ActionCardStatus,
		Object:   audit.ObjectCard,
		Field:    "status",
		OldValue: prev,
		NewValue: c.Status,
	})
}

// GetCardLog returns a card's audit log and initial snapshot.
func (s *CardServiceImpl) GetCardLog(ctx context.Context, ref string) (*primary.CardLog, error) {
	var out *primary.CardLog
	err := s.repo.View(func(col *models.Collection) error {
		c, err := findCard(col, ref)
		if err != nil {
			return err
		}
		cp := c.Clone()
		out = &primary.CardLog{Card: cp, Entries: cp.Logs, InitialSnapshot: cp.InitialSnapshot}
		return nil
	})
	return out, err
}

// SyncStatus reports whether the last save reached the store.
func (s *CardServiceImpl) SyncStatus() primary.SyncStatus {
	return s.repo.Status()
}

func findCard(col *models.Collection, ref string) (*models.Card, error) {
	c := col.FindCard(strings.TrimSpace(ref))
	if c == nil {
		return nil, fmt.Errorf("%w: %s", primary.ErrCardNotFound, ref)
	}
	return c, nil
}

func findOperation(c *models.Card, ref string) (*models.Operation, error) {
	op := c.FindOperation(strings.TrimSpace(ref))
	if op == nil {
		return nil, fmt.Errorf("%w: %s on card %s", primary.ErrOperationNotFound, ref, c.ID)
	}
	return op, nil
}

// Ensure CardServiceImpl implements the interface
var _ primary.CardService = (*CardServiceImpl)(nil)
