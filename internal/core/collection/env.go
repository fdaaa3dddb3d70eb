// Package collection contains the pure algorithms of the card repository:
// load-time normalization, id-keyed merging, duplication and grouping.
// Effects (clock, ids, codes, acting user) come in through Env.
package collection

import (
	"time"

	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

// Env carries the effects needed by the algorithms in this package.
type Env struct {
	Now     time.Time
	NewID   func(prefix string) string
	NewCode route.CodeGenerator
	Actor   string
}

// ItemID returns an id generator for per-item normalization.
func (e Env) ItemID() func() string {
	return func() string { return e.NewID("item") }
}

// Log appends an audit entry to card.
func (e Env) Log(card *models.Card, entry audit.Entry) {
	audit.Append(card, entry, e.NewID("log"), e.Now, e.Actor)
}

// Barcodes returns every card barcode in the collection.
func Barcodes(col *models.Collection) []string {
	out := make([]string, 0, len(col.Cards))
	for _, c := range col.Cards {
		if c.Barcode != "" {
			out = append(out, c.Barcode)
		}
	}
	return out
}
