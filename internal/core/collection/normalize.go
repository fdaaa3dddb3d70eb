package collection

import (
	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/barcode"
	"github.com/example/routecard/internal/core/card"
	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

// Report counts the repairs made by Normalize.
type Report struct {
	Barcodes  int
	Codes     int
	Snapshots int
	Backfills int
}

// Repaired reports whether Normalize changed anything worth persisting.
func (r Report) Repaired() bool {
	return r.Barcodes+r.Codes+r.Snapshots+r.Backfills > 0
}

// Normalize repairs a loaded collection in place. It never fails: invalid
// or duplicate barcodes are reissued, missing codes are assigned, missing
// fields get safe defaults and every status is recomputed.
func Normalize(col *models.Collection, env Env) Report {
	var rep Report
	if col.Cards == nil {
		col.Cards = []*models.Card{}
	}
	if col.Ops == nil {
		col.Ops = []*models.OpCatalogEntry{}
	}
	if col.Centers == nil {
		col.Centers = []*models.WorkCenter{}
	}
	for _, op := range col.Ops {
		if op.ID == "" {
			op.ID = env.NewID("catalog")
			rep.Backfills++
		}
	}
	for _, wc := range col.Centers {
		if wc.ID == "" {
			wc.ID = env.NewID("center")
			rep.Backfills++
		}
	}

	rep.Barcodes = ensureBarcodes(col)
	rep.Codes = route.EnsureCodes(col, env.NewCode)
	for _, c := range col.Cards {
		rep.Backfills += NormalizeCard(c, env)
		if audit.EnsureSnapshot(c) {
			rep.Snapshots++
		}
	}
	RecalcAll(col)
	return rep
}

// ensureBarcodes reissues every missing, malformed or duplicate barcode.
func ensureBarcodes(col *models.Collection) int {
	seen := make(map[string]bool, len(col.Cards))
	var broken []*models.Card
	for _, c := range col.Cards {
		if !barcode.Valid(c.Barcode) || seen[c.Barcode] {
			broken = append(broken, c)
			continue
		}
		seen[c.Barcode] = true
	}
	for _, c := range broken {
		c.Barcode = barcode.GenerateUnique(Barcodes(col))
	}
	return len(broken)
}

// NormalizeCard backfills missing fields on one card and its operations.
// It returns the number of fields it had to fill in.
func NormalizeCard(c *models.Card, env Env) int {
	n := 0
	if c.ID == "" {
		c.ID = env.NewID("card")
		n++
	}
	if c.Name == "" {
		c.Name = "Card"
		n++
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = env.Now
		n++
	}
	if !c.Status.Valid() {
		c.Status = models.StatusNotStarted
	}
	if c.Logs == nil {
		c.Logs = []models.LogEntry{}
	}
	if c.Attachments == nil {
		c.Attachments = []*models.Attachment{}
	}
	for _, a := range c.Attachments {
		if a.ID == "" {
			a.ID = env.NewID("file")
			n++
		}
		if a.Name == "" {
			a.Name = "file"
		}
		if a.Type == "" {
			a.Type = "application/octet-stream"
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = env.Now
		}
	}
	if c.IsGroup {
		c.Operations = []*models.Operation{}
		return n
	}
	if c.Operations == nil {
		c.Operations = []*models.Operation{}
	}
	for _, op := range c.Operations {
		n += normalizeOperation(c, op, env)
	}
	route.RenumberAutoCodes(c)
	return n
}

func normalizeOperation(c *models.Card, op *models.Operation, env Env) int {
	n := 0
	if op.ID == "" {
		op.ID = env.NewID("op")
		n++
	}
	if !op.Status.Valid() {
		op.Status = models.StatusNotStarted
		n++
	}
	if op.ElapsedSeconds == nil {
		if op.ActualSeconds != nil {
			op.ElapsedSeconds = models.Seconds(*op.ActualSeconds)
		} else {
			op.ElapsedSeconds = models.Seconds(0)
		}
		n++
	}
	if op.FirstStartedAt == nil && op.StartedAt != nil {
		op.FirstStartedAt = models.TimePtr(*op.StartedAt)
		n++
	}
	if op.Status == models.StatusInProgress && op.StartedAt == nil {
		op.StartedAt = models.TimePtr(env.Now)
		n++
	}
	if op.Status != models.StatusInProgress && op.StartedAt != nil {
		op.StartedAt = nil
		n++
	}
	if op.Status == models.StatusDone && op.ActualSeconds == nil {
		op.ActualSeconds = models.Seconds(*op.ElapsedSeconds)
		n++
	}
	if op.AdditionalExecutors == nil {
		op.AdditionalExecutors = []string{}
	}
	if len(op.AdditionalExecutors) > models.MaxAdditionalExecutors {
		op.AdditionalExecutors = op.AdditionalExecutors[:models.MaxAdditionalExecutors]
		n++
	}
	if r := []rune(op.Comment); len(r) > models.MaxCommentLength {
		op.Comment = string(r[:models.MaxCommentLength])
		n++
	}
	quantity.SetOperationCounts(op, quantity.OperationCounts(op))
	quantity.NormalizeItems(c, op, env.ItemID())
	return n
}

// Children returns the cards belonging to a group.
func Children(col *models.Collection, groupID string, includeArchived bool) []*models.Card {
	var out []*models.Card
	for _, c := range col.Cards {
		if c.GroupID == groupID && !c.IsGroup && (includeArchived || !c.Archived) {
			out = append(out, c)
		}
	}
	return out
}

// StatusChildren returns the children a group's status is derived from:
// the live ones, or all of them once the group itself is archived.
func StatusChildren(col *models.Collection, group *models.Card) []*models.Card {
	return Children(col, group.ID, group.Archived)
}

// Recalc recomputes the status of c and, for a child card, of its group.
func Recalc(col *models.Collection, c *models.Card) {
	card.Recalc(c, StatusChildren(col, c))
	if c.GroupID == "" {
		return
	}
	if g := col.FindCard(c.GroupID); g != nil && g.IsGroup {
		card.Recalc(g, StatusChildren(col, g))
	}
}

// RecalcAll recomputes every card, then every group.
func RecalcAll(col *models.Collection) {
	for _, c := range col.Cards {
		if !c.IsGroup {
			card.Recalc(c, nil)
		}
	}
	for _, c := range col.Cards {
		if c.IsGroup {
			card.Recalc(c, StatusChildren(col, c))
		}
	}
}
