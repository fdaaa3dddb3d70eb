package operation

import (
	"fmt"
	"math"
	"time"

	"github.com/example/routecard/internal/models"
)

// ElapsedSeconds returns the time op has spent running as of now.
// It never mutates op, so it can be called on every display refresh.
func ElapsedSeconds(op *models.Operation, now time.Time) float64 {
	base := stored(op)
	if op.Status == models.StatusInProgress && op.StartedAt != nil {
		return base + secondsBetween(*op.StartedAt, now)
	}
	return base
}

// stored returns the banked elapsed time, falling back to the frozen actual time.
func stored(op *models.Operation) float64 {
	if op.ElapsedSeconds != nil {
		return *op.ElapsedSeconds
	}
	if op.ActualSeconds != nil {
		return *op.ActualSeconds
	}
	return 0
}

// secondsBetween never returns a negative interval, so clock skew cannot
// reduce banked time.
func secondsBetween(from, to time.Time) float64 {
	d := to.Sub(from).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// FormatHMS renders whole seconds as HH:MM:SS. Hours are not wrapped.
func FormatHMS(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
