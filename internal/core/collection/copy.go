package collection

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/barcode"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

// CopySuffix is appended to the name of a duplicated card or group.
const CopySuffix = " (copy)"

var positionPrefix = regexp.MustCompile(`^\s*\d+\.\s*`)

// CopyCard builds a fresh NOT_STARTED card from template. The copy gets new
// ids and a new barcode, keeps the route and executors, and starts with no
// log, no snapshot and zeroed counters. It is not added to col.
func CopyCard(col *models.Collection, template *models.Card, name, groupID string, env Env) *models.Card {
	cp := template.Clone()
	cp.ID = env.NewID("card")
	cp.Barcode = barcode.GenerateUnique(Barcodes(col))
	cp.Name = name
	cp.GroupID = groupID
	cp.IsGroup = false
	cp.Status = models.StatusNotStarted
	cp.Archived = false
	cp.CreatedAt = env.Now
	cp.Logs = []models.LogEntry{}
	cp.InitialSnapshot = nil

	for _, a := range cp.Attachments {
		a.ID = env.NewID("file")
		a.CreatedAt = env.Now
	}
	for _, op := range cp.Operations {
		resetOperation(op, env)
	}
	route.RenumberAutoCodes(cp)
	return cp
}

func resetOperation(op *models.Operation, env Env) {
	op.ID = env.NewID("op")
	op.Status = models.StatusNotStarted
	op.FirstStartedAt = nil
	op.StartedAt = nil
	op.LastPausedAt = nil
	op.FinishedAt = nil
	op.ElapsedSeconds = models.Seconds(0)
	op.ActualSeconds = nil
	op.Comment = ""
	op.GoodCount, op.ScrapCount, op.HoldCount = 0, 0, 0
	for _, it := range op.Items {
		it.ID = env.NewID("item")
		it.Quantity = 1
		it.GoodCount, it.ScrapCount, it.HoldCount = 0, 0, 0
	}
}

// register adds a new card to col, takes its snapshot and logs its origin.
func register(col *models.Collection, c *models.Card, from string, env Env) {
	col.Cards = append(col.Cards, c)
	audit.EnsureSnapshot(c)
	env.Log(c, audit.Entry{Action: audit.ActionCopyCreated, Object: audit.ObjectCard, OldValue: from, NewValue: c.Barcode})
}

// DuplicateCard adds a copy of c named "<name> (copy)" to col.
func DuplicateCard(col *models.Collection, c *models.Card, env Env) *models.Card {
	cp := CopyCard(col, c, c.Name+CopySuffix, c.GroupID, env)
	register(col, cp, c.Barcode, env)
	Recalc(col, cp)
	return cp
}

// Repeat adds a fresh copy of an archived card to col under the same name.
// A group is repeated with all of its children, archived ones included.
func Repeat(col *models.Collection, c *models.Card, env Env) *models.Card {
	if c.IsGroup {
		g, _ := copyGroup(col, c, c.Name, true, env)
		return g
	}
	cp := CopyCard(col, c, c.Name, "", env)
	register(col, cp, c.Barcode, env)
	Recalc(col, cp)
	return cp
}

// DuplicateGroup adds a copy of group and of its children to col. Children
// are renamed "1. <name>", "2. <name>", ... in their current order.
func DuplicateGroup(col *models.Collection, group *models.Card, includeArchived bool, env Env) (*models.Card, []*models.Card) {
	return copyGroup(col, group, group.Name+CopySuffix, includeArchived, env)
}

func copyGroup(col *models.Collection, group *models.Card, name string, includeArchived bool, env Env) (*models.Card, []*models.Card) {
	children := Children(col, group.ID, includeArchived)
	ng := newGroup(col, group, name, env)
	for _, a := range group.Attachments {
		ac := *a
		ac.ID = env.NewID("file")
		ac.CreatedAt = env.Now
		ng.Attachments = append(ng.Attachments, &ac)
	}
	register(col, ng, group.Barcode, env)

	copies := make([]*models.Card, 0, len(children))
	for i, child := range children {
		base := positionPrefix.ReplaceAllString(child.Name, "")
		if base == "" {
			base = group.Name
		}
		cp := CopyCard(col, child, positionName(i, base), ng.ID, env)
		register(col, cp, child.Barcode, env)
		copies = append(copies, cp)
	}
	RecalcAll(col)
	return ng, copies
}

// CreateGroup adds a group with count children copied from draft.
func CreateGroup(col *models.Collection, draft *models.Card, name string, count int, env Env) (*models.Card, []*models.Card) {
	if count < 1 {
		count = 1
	}
	base := strings.TrimSpace(draft.Name)
	if base == "" {
		base = "Card"
	}
	if strings.TrimSpace(name) == "" {
		name = base
	}

	g := newGroup(col, draft, name, env)
	col.Cards = append(col.Cards, g)
	audit.EnsureSnapshot(g)
	env.Log(g, audit.Entry{Action: audit.ActionCardCreated, Object: audit.ObjectCard, NewValue: g.Barcode})

	children := make([]*models.Card, 0, count)
	for i := 0; i < count; i++ {
		child := CopyCard(col, draft, positionName(i, base), g.ID, env)
		col.Cards = append(col.Cards, child)
		audit.EnsureSnapshot(child)
		env.Log(child, audit.Entry{Action: audit.ActionCardCreated, Object: audit.ObjectCard, NewValue: child.Barcode})
		children = append(children, child)
	}
	RecalcAll(col)
	return g, children
}

func newGroup(col *models.Collection, from *models.Card, name string, env Env) *models.Card {
	return &models.Card{
		ID:             env.NewID("group"),
		Barcode:        barcode.GenerateUnique(Barcodes(col)),
		Name:           name,
		OrderNo:        from.OrderNo,
		ContractNumber: from.ContractNumber,
		IsGroup:        true,
		Status:         models.StatusNotStarted,
		CreatedAt:      env.Now,
		Operations:     []*models.Operation{},
		Attachments:    []*models.Attachment{},
		Logs:           []models.LogEntry{},
	}
}

func positionName(i int, base string) string {
	return fmt.Sprintf("%d. %s", i+1, base)
}

// DeleteCard removes a single non-group card. It reports whether one was removed.
func DeleteCard(col *models.Collection, id string) bool {
	for i, c := range col.Cards {
		if c.ID == id && !c.IsGroup {
			col.Cards = append(col.Cards[:i:i], col.Cards[i+1:]...)
			if c.GroupID != "" {
				if g := col.FindCard(c.GroupID); g != nil {
					Recalc(col, g)
				}
			}
			return true
		}
	}
	return false
}

// DeleteGroup removes a group and all of its children. It returns the
// number of cards removed.
func DeleteGroup(col *models.Collection, groupID string) int {
	kept := col.Cards[:0:0]
	removed := 0
	for _, c := range col.Cards {
		if c.ID == groupID || c.GroupID == groupID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	col.Cards = kept
	return removed
}
