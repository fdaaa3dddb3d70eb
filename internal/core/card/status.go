// Package card contains the pure business logic for card status aggregation.
// This is part of the Functional Core - no I/O, only pure functions.
package card

import (
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

type tally struct {
	total      int
	notStarted int
	inProgress int
	paused     int
	done       int
}

func (t tally) allDone() bool { return t.total > 0 && t.done == t.total }

func (t tally) add(s models.Status) tally {
	t.total++
	switch s {
	case models.StatusInProgress:
		t.inProgress++
	case models.StatusPaused:
		t.paused++
	case models.StatusDone:
		t.done++
	default:
		t.notStarted++
	}
	return t
}

func countOperations(ops []*models.Operation) tally {
	var t tally
	for _, op := range ops {
		if op != nil {
			t = t.add(op.Status)
		}
	}
	return t
}

func statusFromTally(t tally) models.Status {
	switch {
	case t.total == 0:
		return models.StatusNotStarted
	case t.allDone():
		return models.StatusDone
	case t.inProgress > 0:
		return models.StatusInProgress
	case t.paused > 0, t.done > 0 && t.notStarted > 0:
		return models.StatusPaused
	default:
		return models.StatusNotStarted
	}
}

// Status derives the 4-valued status of a non-group card from its operations.
// A card with some finished steps and some untouched ones is PAUSED.
func Status(ops []*models.Operation) models.Status {
	return statusFromTally(countOperations(ops))
}

// ProcessState derives the 5-valued process state of a non-group card.
// Running and paused operations side by side give MIXED.
func ProcessState(ops []*models.Operation) models.ProcessState {
	t := countOperations(ops)
	switch {
	case t.total == 0:
		return models.ProcessNotStarted
	case t.allDone():
		return models.ProcessDone
	case t.inProgress > 0 && t.paused > 0:
		return models.ProcessMixed
	case t.inProgress > 0:
		return models.ProcessInProgress
	case t.paused > 0:
		return models.ProcessPaused
	case t.done > 0 && t.notStarted > 0:
		return models.ProcessPaused
	case t.done > 0:
		return models.ProcessInProgress
	default:
		return models.ProcessNotStarted
	}
}

// GroupStatus derives a group's 4-valued status from its children's statuses.
func GroupStatus(children []*models.Card) models.Status {
	var t tally
	for _, c := range children {
		t = t.add(Status(c.Operations))
	}
	return statusFromTally(t)
}

// GroupProcessState derives a group's process state from its children.
// Any paused operation inside any child makes the group MIXED.
func GroupProcessState(children []*models.Card) models.ProcessState {
	if len(children) == 0 {
		return models.ProcessNotStarted
	}

	allDone := true
	var anyInProgress, anyPaused, anyDone, anyNotStarted, anyOpPaused bool
	for _, c := range children {
		switch ProcessState(c.Operations) {
		case models.ProcessDone:
			anyDone = true
		case models.ProcessInProgress:
			anyInProgress = true
			allDone = false
		case models.ProcessPaused, models.ProcessMixed:
			anyPaused = true
			allDone = false
		default:
			anyNotStarted = true
			allDone = false
		}
		for _, op := range c.Operations {
			if op != nil && op.Status == models.StatusPaused {
				anyOpPaused = true
			}
		}
	}

	switch {
	case allDone:
		return models.ProcessDone
	case anyOpPaused:
		return models.ProcessMixed
	case anyInProgress:
		return models.ProcessInProgress
	case anyPaused:
		return models.ProcessPaused
	case anyDone && anyNotStarted:
		return models.ProcessMixed
	default:
		return models.ProcessNotStarted
	}
}

// Recalc stores the derived status on c. children is only read for groups.
func Recalc(c *models.Card, children []*models.Card) {
	if c.IsGroup {
		c.Status = GroupStatus(children)
		return
	}
	c.Status = Status(c.Operations)
}

// CurrentOperation returns the operation a card is "at": the running one,
// else the paused one, else the first one not yet done. Nil when all are done.
func CurrentOperation(ops []*models.Operation) *models.Operation {
	sorted := route.Sorted(ops)
	for _, want := range []models.Status{models.StatusInProgress, models.StatusPaused} {
		for _, op := range sorted {
			if op.Status == want {
				return op
			}
		}
	}
	for _, op := range sorted {
		if op.Status != models.StatusDone {
			return op
		}
	}
	return nil
}
