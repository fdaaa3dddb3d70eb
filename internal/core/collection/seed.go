package collection

import (
	"github.com/example/routecard/internal/core/audit"
	"github.com/example/routecard/internal/core/barcode"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
)

// IsEmpty reports whether the collection holds no cards, catalog or centers.
func IsEmpty(col *models.Collection) bool {
	return col == nil || (len(col.Cards) == 0 && len(col.Ops) == 0 && len(col.Centers) == 0)
}

// DefaultData returns the catalog a fresh installation starts with, plus a
// demo card when withDemo is set.
func DefaultData(env Env, withDemo bool) *models.Collection {
	centers := []*models.WorkCenter{
		{ID: env.NewID("center"), Name: "Machining", Desc: "Turning and milling"},
		{ID: env.NewID("center"), Name: "Coating", Desc: "Coatings and thermal spraying"},
		{ID: env.NewID("center"), Name: "Quality control", Desc: "Measurement and visual inspection"},
	}

	used := map[string]bool{}
	ops := []*models.OpCatalogEntry{
		{ID: env.NewID("catalog"), Code: route.UniqueCode(used, env.NewCode), Name: "Turning", Desc: "Roughing and finishing", RecTime: 40},
		{ID: env.NewID("catalog"), Code: route.UniqueCode(used, env.NewCode), Name: "Coating", Desc: "HVOF / APS", RecTime: 60},
		{ID: env.NewID("catalog"), Code: route.UniqueCode(used, env.NewCode), Name: "Dimensional inspection", Desc: "Measurement and report", RecTime: 20},
	}

	col := &models.Collection{Cards: []*models.Card{}, Ops: ops, Centers: centers}
	if !withDemo {
		return col
	}

	demo := &models.Card{
		ID:          env.NewID("card"),
		Barcode:     barcode.GenerateUnique(nil),
		Name:        "Drive shaft Ø60",
		OrderNo:     "DEMO-001",
		Desc:        "Demo card.",
		Status:      models.StatusNotStarted,
		CreatedAt:   env.Now,
		Attachments: []*models.Attachment{},
		Logs:        []models.LogEntry{},
		Operations: []*models.Operation{
			route.NewStep(env.NewID("op"), ops[0], centers[0], 1, route.StepOptions{Executor: "I. Ivanov", PlannedMinutes: 40}),
			route.NewStep(env.NewID("op"), ops[1], centers[1], 2, route.StepOptions{Executor: "P. Petrov", PlannedMinutes: 60}),
			route.NewStep(env.NewID("op"), ops[2], centers[2], 3, route.StepOptions{Executor: "S. Sidorov", PlannedMinutes: 20}),
		},
	}
	audit.EnsureSnapshot(demo)
	col.Cards = append(col.Cards, demo)
	return col
}
