package route

import (
	"sort"

	"github.com/example/routecard/internal/models"
)

// DefaultPlannedMinutes is used when neither the step nor the catalog gives a time.
const DefaultPlannedMinutes = 30

// StepOptions are the optional attributes of a new step.
type StepOptions struct {
	Executor       string
	PlannedMinutes int
	Quantity       models.Quantity
	AutoCode       bool
	Code           string
}

// NewStep builds a NOT_STARTED step from catalog references.
func NewStep(id string, op *models.OpCatalogEntry, center *models.WorkCenter, order int, opts StepOptions) *models.Operation {
	code := opts.Code
	if code == "" {
		code = op.Code
	}
	planned := opts.PlannedMinutes
	if planned <= 0 {
		planned = op.RecTime
	}
	if planned <= 0 {
		planned = DefaultPlannedMinutes
	}
	if order <= 0 {
		order = 1
	}
	return &models.Operation{
		ID:                  id,
		OpID:                op.ID,
		OpCode:              code,
		OpName:              op.Name,
		AutoCode:            opts.AutoCode,
		CenterID:            center.ID,
		CenterName:          center.Name,
		Executor:            opts.Executor,
		AdditionalExecutors: []string{},
		PlannedMinutes:      planned,
		Quantity:            opts.Quantity,
		Order:               order,
		Status:              models.StatusNotStarted,
		ElapsedSeconds:      models.Seconds(0),
		Items:               []*models.Item{},
	}
}

// Sorted returns ops in route order; ties keep their array position.
func Sorted(ops []*models.Operation) []*models.Operation {
	sorted := append([]*models.Operation(nil), ops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// NextOrder returns the order for a step appended at the end of the route.
func NextOrder(card *models.Card) int {
	maxOrder := 0
	for _, op := range card.Operations {
		if op.Order > maxOrder {
			maxOrder = op.Order
		}
	}
	return maxOrder + 1
}

// Move swaps the order of a step with its neighbour delta positions away.
// It reports whether anything moved.
func Move(card *models.Card, opID string, delta int) bool {
	sorted := Sorted(card.Operations)
	idx := -1
	for i, op := range sorted {
		if op.ID == opID {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || delta == 0 || target < 0 || target >= len(sorted) {
		return false
	}
	a, b := sorted[idx], sorted[target]
	a.Order, b.Order = b.Order, a.Order
	if a.Order == b.Order {
		sorted[idx], sorted[target] = b, a
		for i, op := range sorted {
			op.Order = i + 1
		}
	}
	card.Operations = Sorted(sorted)
	RenumberAutoCodes(card)
	return true
}

// Remove deletes a step from the route and returns it, or nil if absent.
func Remove(card *models.Card, opID string) *models.Operation {
	for i, op := range card.Operations {
		if op.ID == opID {
			card.Operations = append(card.Operations[:i:i], card.Operations[i+1:]...)
			RenumberAutoCodes(card)
			return op
		}
	}
	return nil
}
