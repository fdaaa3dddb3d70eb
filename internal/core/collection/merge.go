package collection

import (
	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/models"
)

// Merge combines the stored collection with an incoming one, keyed by card id.
//
// The incoming document wins on everything except history: a stored card
// keeps its createdAt and initial snapshot, and its log entries are kept in
// front of any new entries the client appended. Cards missing from incoming
// are dropped. Users are always taken from existing.
func Merge(existing, incoming *models.Collection, env Env) *models.Collection {
	stored := make(map[string]*models.Card, len(existing.Cards))
	for _, c := range existing.Cards {
		stored[c.ID] = c
	}

	merged := incoming.Clone()
	for _, next := range merged.Cards {
		prev, ok := stored[next.ID]
		if !ok {
			if next.CreatedAt.IsZero() {
				next.CreatedAt = env.Now
			}
			audit.EnsureSnapshot(next)
			continue
		}
		if !prev.CreatedAt.IsZero() {
			next.CreatedAt = prev.CreatedAt
		}
		if prev.InitialSnapshot != nil {
			next.InitialSnapshot = prev.InitialSnapshot.Clone()
		} else {
			audit.EnsureSnapshot(next)
		}
		next.Logs = mergeLogs(prev.Logs, next.Logs)
	}

	merged.Users = nil
	if existing.Users != nil {
		merged.Users = existing.Clone().Users
	}
	return merged
}

// mergeLogs keeps every stored entry, then appends incoming entries not yet stored.
func mergeLogs(stored, incoming []models.LogEntry) []models.LogEntry {
	out := make([]models.LogEntry, 0, len(stored)+len(incoming))
	seen := make(map[string]bool, len(stored))
	for _, e := range stored {
		out = append(out, e)
		seen[e.ID] = true
	}
	for _, e := range incoming {
		if e.ID != "" && seen[e.ID] {
			continue
		}
		out = append(out, e)
	}
	return out
}
