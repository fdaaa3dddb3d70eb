// Package operation contains the pure business logic for the operation state machine.
// Guards are pure functions that evaluate preconditions without side effects.
package operation

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

// TransitionContext provides context for transition guards.
type TransitionContext struct {
	OperationID string
	Status      models.Status
}

// CanStart evaluates whether an operation can be started.
// Rules:
// - Status must be NOT_STARTED (or absent)
func CanStart(ctx TransitionContext) GuardResult {
	if ctx.Status != "" && ctx.Status != models.StatusNotStarted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only start operations that have not started (operation %s is %s)", ctx.OperationID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanPause evaluates whether an operation can be paused.
// Rules:
// - Status must be IN_PROGRESS
func CanPause(ctx TransitionContext) GuardResult {
	if ctx.Status != models.StatusInProgress {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only pause running operations (operation %s is %s)", ctx.OperationID, statusOrNotStarted(ctx.Status)),
		}
	}
	return GuardResult{Allowed: true}
}

// CanResume evaluates whether an operation can be resumed.
// Rules:
// - Status must be PAUSED or DONE (re-opening a completed operation)
func CanResume(ctx TransitionContext) GuardResult {
	if ctx.Status != models.StatusPaused && ctx.Status != models.StatusDone {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only resume paused or completed operations (operation %s is %s)", ctx.OperationID, statusOrNotStarted(ctx.Status)),
		}
	}
	return GuardResult{Allowed: true}
}

// CanStop evaluates whether an operation can be stopped.
// Rules:
// - Status must be IN_PROGRESS or PAUSED
// The quantity gate is evaluated separately by quantity.CanComplete.
func CanStop(ctx TransitionContext) GuardResult {
	if ctx.Status != models.StatusInProgress && ctx.Status != models.StatusPaused {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("can only stop running or paused operations (operation %s is %s)", ctx.OperationID, statusOrNotStarted(ctx.Status)),
		}
	}
	return GuardResult{Allowed: true}
}

func statusOrNotStarted(s models.Status) models.Status {
	if s == "" {
		return models.StatusNotStarted
	}
	return s
}
