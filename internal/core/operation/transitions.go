package operation

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/routecard/internal/models"
)

// Action is one of the four operation actions.
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
)

// ParseAction parses an action name, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionStart, ActionPause, ActionResume, ActionStop:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q (want start, pause, resume or stop)", s)
}

// Guard returns the guard for action applied to op.
func Guard(action Action, op *models.Operation) GuardResult {
	ctx := TransitionContext{OperationID: op.ID, Status: op.Status}
	switch action {
	case ActionStart:
		return CanStart(ctx)
	case ActionPause:
		return CanPause(ctx)
	case ActionResume:
		return CanResume(ctx)
	case ActionStop:
		return CanStop(ctx)
	}
	return GuardResult{Allowed: false, Reason: fmt.Sprintf("unknown action %q", action)}
}

// Start begins op from scratch. Elapsed time is reset to zero.
func Start(op *models.Operation, now time.Time) {
	if op.FirstStartedAt == nil {
		op.FirstStartedAt = models.TimePtr(now)
	}
	op.StartedAt = models.TimePtr(now)
	op.LastPausedAt = nil
	op.FinishedAt = nil
	op.ActualSeconds = nil
	op.ElapsedSeconds = models.Seconds(0)
	op.Status = models.StatusInProgress
}

// Pause banks the running interval into elapsed time.
func Pause(op *models.Operation, now time.Time) {
	flush(op, now)
	op.LastPausedAt = models.TimePtr(now)
	op.Status = models.StatusPaused
}

// Resume restarts the clock without resetting elapsed time.
// Resuming a completed operation seeds elapsed time from its actual time.
func Resume(op *models.Operation, now time.Time) {
	if op.Status == models.StatusDone && op.ElapsedSeconds == nil && op.ActualSeconds != nil {
		op.ElapsedSeconds = models.Seconds(*op.ActualSeconds)
	}
	if op.ElapsedSeconds == nil {
		op.ElapsedSeconds = models.Seconds(0)
	}
	if op.FirstStartedAt == nil {
		op.FirstStartedAt = models.TimePtr(now)
	}
	op.StartedAt = models.TimePtr(now)
	op.LastPausedAt = nil
	op.FinishedAt = nil
	op.Status = models.StatusInProgress
}

// Stop completes op and freezes its actual time. The quantity gate must
// have passed before calling Stop.
func Stop(op *models.Operation, now time.Time) {
	flush(op, now)
	op.FinishedAt = models.TimePtr(now)
	op.LastPausedAt = nil
	op.ActualSeconds = models.Seconds(stored(op))
	op.Status = models.StatusDone
}

// flush adds the running interval to elapsed time and clears startedAt.
func flush(op *models.Operation, now time.Time) {
	total := stored(op)
	if op.StartedAt != nil {
		total += secondsBetween(*op.StartedAt, now)
	}
	op.ElapsedSeconds = models.Seconds(total)
	op.StartedAt = nil
}
