package quantity

import (
	"fmt"

	"github.com/example/routecard/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanComplete evaluates the completion gate for op.
// Rules:
//   - Aggregate mode: when the target is known and positive, good+scrap+held must equal it
//   - Per-item mode: every item with a positive expected quantity must total exactly that,
//     and the target may not exceed MaxItems
//
// Callers in per-item mode should run NormalizeItems first.
func CanComplete(card *models.Card, op *models.Operation) GuardResult {
	if card.UseItemList {
		if target, known := Resolve(card, op); known {
			if g := CanTrackItems(target); !g.Allowed {
				return g
			}
		}
		for i, it := range op.Items {
			expected := Clamp(it.Quantity)
			if expected <= 0 {
				continue
			}
			got := ClampCounts(ItemCounts(it)).Total()
			if got != expected {
				return GuardResult{
					Allowed: false,
					Reason:  fmt.Sprintf("item %s mismatch on %s: %d≠%d", itemLabel(it, i), op.Label(), got, expected),
				}
			}
		}
		return GuardResult{Allowed: true}
	}

	target, known := Resolve(card, op)
	if !known || target <= 0 {
		return GuardResult{Allowed: true}
	}
	got := ClampCounts(OperationCounts(op)).Total()
	if got != target {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("quantity mismatch on %s: %d≠%d", op.Label(), got, target),
		}
	}
	return GuardResult{Allowed: true}
}

func itemLabel(it *models.Item, idx int) string {
	if it.Name != "" {
		return fmt.Sprintf("%q", it.Name)
	}
	return fmt.Sprintf("#%d", idx+1)
}
