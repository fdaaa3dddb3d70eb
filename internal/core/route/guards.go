// Package route contains the pure business logic for editing a card's route:
// adding, removing and reordering steps, and keeping operation codes unique.
package route

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

// AddStepContext provides context for adding a route step.
type AddStepContext struct {
	CardID       string
	IsGroup      bool
	OpRef        string
	OpExists     bool
	CenterRef    string
	CenterExists bool
}

// CanAddStep evaluates whether a step can be added to a card's route.
// Rules:
// - Group cards have no route of their own
// - The catalog operation must exist
// - The work center must exist
func CanAddStep(ctx AddStepContext) GuardResult {
	if ctx.IsGroup {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("card %s is a group and has no route of its own", ctx.CardID),
		}
	}
	if !ctx.OpExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("missing catalog reference: operation %q not found", ctx.OpRef),
		}
	}
	if !ctx.CenterExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("missing catalog reference: work center %q not found", ctx.CenterRef),
		}
	}
	return GuardResult{Allowed: true}
}

// EditContext provides context for editing an existing step.
type EditContext struct {
	OperationID string
	Status      models.Status
}

// CanRemoveStep evaluates whether a step can be removed.
// Rules:
// - A running or paused step cannot be removed
func CanRemoveStep(ctx EditContext) GuardResult {
	if ctx.Status == models.StatusInProgress || ctx.Status == models.StatusPaused {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot remove operation %s while it is %s", ctx.OperationID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}
