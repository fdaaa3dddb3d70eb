package operation

import (
	"time"

	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/models"
)

// Result describes the outcome of Apply.
type Result struct {
	Applied bool
	// Reason is set when the action was rejected.
	Reason         string
	PrevStatus     models.Status
	NewStatus      models.Status
	PrevElapsed    float64
	NewElapsed     float64
	ElapsedChanged bool
}

// Apply runs action on op within card. A rejected action leaves the
// execution state of op unchanged.
// newID is used when per-item normalization has to create items.
func Apply(card *models.Card, op *models.Operation, action Action, now time.Time, newID func() string) Result {
	prev := statusOrNotStarted(op.Status)
	res := Result{PrevStatus: prev, NewStatus: prev, PrevElapsed: stored(op)}

	if g := Guard(action, op); !g.Allowed {
		res.Reason = g.Reason
		return res
	}

	switch action {
	case ActionStart:
		Start(op, now)
	case ActionPause:
		Pause(op, now)
	case ActionResume:
		Resume(op, now)
	case ActionStop:
		if card.UseItemList {
			quantity.NormalizeItems(card, op, newID)
		}
		if g := quantity.CanComplete(card, op); !g.Allowed {
			res.Reason = g.Reason
			return res
		}
		Stop(op, now)
	}

	res.Applied = true
	res.NewStatus = op.Status
	res.NewElapsed = stored(op)
	res.ElapsedChanged = action == ActionStop && res.NewElapsed != res.PrevElapsed
	return res
}

