// Package quantity contains the pure business logic for the quantity ledger.
// This is part of the Functional Core - no I/O, only pure functions.
package quantity

import (
	"fmt"

	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

// Counts is a good/scrap/held triple.
type Counts struct {
	Good  int
	Scrap int
	Hold  int
}

// Total returns good+scrap+held.
func (c Counts) Total() int {
	return c.Good + c.Scrap + c.Hold
}

// Clamp returns n, or 0 when n is negative.
func Clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ClampCounts clamps every counter to be non-negative.
func ClampCounts(c Counts) Counts {
	return Counts{Good: Clamp(c.Good), Scrap: Clamp(c.Scrap), Hold: Clamp(c.Hold)}
}

// ClampItemCounts clamps an item triple so that it totals at most 1.
// Good takes precedence over scrap, scrap over held.
func ClampItemCounts(c Counts) Counts {
	c = ClampCounts(c)
	left := 1
	c.Good = min(c.Good, left)
	left -= c.Good
	c.Scrap = min(c.Scrap, left)
	left -= c.Scrap
	c.Hold = min(c.Hold, left)
	return c
}

// OperationCounts returns the aggregate counters of op.
func OperationCounts(op *models.Operation) Counts {
	return Counts{Good: op.GoodCount, Scrap: op.ScrapCount, Hold: op.HoldCount}
}

// ItemCounts returns the counters of a single item.
func ItemCounts(it *models.Item) Counts {
	return Counts{Good: it.GoodCount, Scrap: it.ScrapCount, Hold: it.HoldCount}
}

// SumItems adds up the counters of every item.
func SumItems(items []*models.Item) Counts {
	var sum Counts
	for _, it := range items {
		if it == nil {
			continue
		}
		c := ClampCounts(ItemCounts(it))
		sum.Good += c.Good
		sum.Scrap += c.Scrap
		sum.Hold += c.Hold
	}
	return sum
}

// SetOperationCounts stores clamped aggregate counters on op.
func SetOperationCounts(op *models.Operation, c Counts) {
	c = ClampCounts(c)
	op.GoodCount, op.ScrapCount, op.HoldCount = c.Good, c.Scrap, c.Hold
}

// SetItemCounts stores clamped counters on a single item.
func SetItemCounts(it *models.Item, c Counts) {
	c = ClampItemCounts(c)
	it.GoodCount, it.ScrapCount, it.HoldCount = c.Good, c.Scrap, c.Hold
}

// Resolve returns the target quantity of op within card.
//
// Lookup order: the operation's own quantity, the card quantity, the
// initial snapshot (its quantity, then the matching operation's item count),
// then the current item count. known is false when nothing yields a value.
func Resolve(card *models.Card, op *models.Operation) (qty int, known bool) {
	if n, ok := op.Quantity.Get(); ok {
		return n, true
	}
	if card != nil {
		if n, ok := card.Quantity.Get(); ok {
			return n, true
		}
		if snap := card.InitialSnapshot; snap != nil {
			if n, ok := snap.Quantity.Get(); ok {
				return n, true
			}
			if snapOp := snap.FindOperation(op.ID); snapOp != nil && len(snapOp.Items) > 0 {
				return len(snapOp.Items), true
			}
		}
	}
	if len(op.Items) > 0 {
		return len(op.Items), true
	}
	return 0, false
}

// BuildItems returns qty blank items, reusing ids and names from template by position.
func BuildItems(template []*models.Item, qty int, newID func() string) []*models.Item {
	items := make([]*models.Item, 0, Clamp(qty))
	for i := 0; i < qty; i++ {
		item := &models.Item{Quantity: 1}
		if i < len(template) && template[i] != nil {
			item.ID = template[i].ID
			item.Name = template[i].Name
		}
		if item.ID == "" {
			item.ID = newID()
		}
		items = append(items, item)
	}
	return items
}

// MaxItems is the largest quantity that can be tracked item by item.
const MaxItems = 10_000

// CanTrackItems reports whether a per-item card can hold qty items.
func CanTrackItems(qty int) GuardResult {
	if qty > MaxItems {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("per-item tracking supports at most %d items, got %d", MaxItems, qty),
		}
	}
	return GuardResult{Allowed: true}
}

// NormalizeItems reconciles op's items and aggregate counters with the
// card's accounting mode.
//
// In per-item mode the list is resized to the resolved quantity (existing
// items keep their id, name and counters by position) and the aggregate
// counters become the item sums. In aggregate mode the items stay as they
// are and zero aggregate counters are seeded from the item sums, so that
// switching modes back and forth loses nothing. The item list never grows
// past MaxItems.
func NormalizeItems(card *models.Card, op *models.Operation, newID func() string) {
	if op.Items == nil {
		op.Items = []*models.Item{}
	}

	if !card.UseItemList {
		totals := SumItems(op.Items)
		if op.GoodCount <= 0 {
			op.GoodCount = totals.Good
		}
		if op.ScrapCount <= 0 {
			op.ScrapCount = totals.Scrap
		}
		if op.HoldCount <= 0 {
			op.HoldCount = totals.Hold
		}
		SetOperationCounts(op, OperationCounts(op))
		for _, it := range op.Items {
			normalizeItem(it, newID)
		}
		return
	}

	target, _ := Resolve(card, op)
	if target > MaxItems {
		target = MaxItems
	}
	normalized := make([]*models.Item, 0, target)
	for i := 0; i < target; i++ {
		var it *models.Item
		if i < len(op.Items) && op.Items[i] != nil {
			it = op.Items[i]
		} else {
			it = &models.Item{}
		}
		normalizeItem(it, newID)
		normalized = append(normalized, it)
	}
	op.Items = normalized
	SetOperationCounts(op, SumItems(normalized))
}

func normalizeItem(it *models.Item, newID func() string) {
	if it.ID == "" {
		it.ID = newID()
	}
	it.Quantity = 1
	SetItemCounts(it, ItemCounts(it))
}

// FinalResults summarizes the yield of a card's route.
type FinalResults struct {
	InitialQuantity int
	Good            int
	Scrap           int
	Hold            int
	// OK is true when the last operation accounts for the initial quantity.
	OK bool
}

// CalculateFinalResults reads the counters of the last operation in route order.
func CalculateFinalResults(ops []*models.Operation, initialQty int) FinalResults {
	total := Clamp(initialQty)
	sorted := route.Sorted(ops)

	res := FinalResults{InitialQuantity: total}
	if len(sorted) > 0 {
		c := ClampCounts(OperationCounts(sorted[len(sorted)-1]))
		res.Good, res.Scrap, res.Hold = c.Good, c.Scrap, c.Hold
	}
	res.OK = total == 0 || res.Good+res.Scrap+res.Hold == total
	return res
}
