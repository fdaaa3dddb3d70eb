// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI and HTTP adapters drive the services.
package primary

import (
	"context"
	"time"

	"github.com/example/routecard/internal/core/quantity"
	"github.com/example/routecard/internal/models"
)

// CardService defines the primary port for route card operations.
type CardService interface {
	// ListCards lists cards with optional filters.
	ListCards(ctx context.Context, filters CardFilters) ([]*CardView, error)

	// GetCard retrieves a card by id or barcode.
	GetCard(ctx context.Context, ref string) (*CardView, error)

	// CreateCard creates a new card from a draft.
	CreateCard(ctx context.Context, draft CardDraft) (*models.Card, error)

	// UpdateCard replaces a card's editable fields and logs the differences.
	UpdateCard(ctx context.Context, req UpdateCardRequest) (*models.Card, error)

	// DeleteCard deletes a single card.
	DeleteCard(ctx context.Context, ref string) error

	// AddRouteStep appends a step from the catalog to a card's route.
	AddRouteStep(ctx context.Context, req AddRouteStepRequest) (*RouteStepResponse, error)

	// RemoveRouteStep removes a step from a card's route.
	RemoveRouteStep(ctx context.Context, cardRef, opRef string) (*RouteStepResponse, error)

	// MoveRouteStep swaps a step with its neighbour (delta -1 up, +1 down).
	MoveRouteStep(ctx context.Context, cardRef, opRef string, delta int) (*models.Card, error)

	// ApplyOperationAction runs start, pause, resume or stop on an operation.
	ApplyOperationAction(ctx context.Context, req OperationActionRequest) (*ActionResult, error)

	// RecordCounts sets an operation's aggregate good/scrap/held counters.
	RecordCounts(ctx context.Context, req RecordCountsRequest) (*models.Operation, error)

	// RecordItem sets one item's counters and/or name in per-item mode.
	RecordItem(ctx context.Context, req RecordItemRequest) (*models.Item, error)

	// SetExecutor sets an operation's executor and additional executors.
	SetExecutor(ctx context.Context, req SetExecutorRequest) (*models.Operation, error)

	// SetComment sets an operation's comment, truncated to the maximum length.
	SetComment(ctx context.Context, cardRef, opRef, comment string) (*models.Operation, error)

	// ArchiveCard archives a DONE card, or a DONE group with its children.
	ArchiveCard(ctx context.Context, ref string) (*models.Card, error)

	// RepeatCard creates a fresh copy of an archived card or group.
	RepeatCard(ctx context.Context, ref string) (*models.Card, error)

	// DuplicateCard creates a reset copy of a card.
	DuplicateCard(ctx context.Context, ref string) (*models.Card, error)

	// CreateGroup creates a group with count children copied from a draft.
	CreateGroup(ctx context.Context, req CreateGroupRequest) (*GroupResponse, error)

	// DuplicateGroup creates a reset copy of a group and its live children.
	DuplicateGroup(ctx context.Context, ref string) (*GroupResponse, error)

	// DeleteGroup deletes a group and its children.
	DeleteGroup(ctx context.Context, ref string) (int, error)

	// SetGroupExecutor assigns an executor to every child step with an op code.
	SetGroupExecutor(ctx context.Context, req SetGroupExecutorRequest) (*GroupExecutorResponse, error)

	// GetCardLog returns a card's audit log and initial snapshot.
	GetCardLog(ctx context.Context, ref string) (*CardLog, error)

	// SyncStatus reports whether the last save reached the store.
	SyncStatus() SyncStatus
}

// CardDraft holds the editable fields of a card.
type CardDraft struct {
	Name           string
	OrderNo        string
	ContractNumber string
	Desc           string
	Drawing        string
	Material       string
	Quantity       models.Quantity
	UseItemList    bool
	Operations     []*models.Operation
	Attachments    []*models.Attachment
}

// UpdateCardRequest contains the parameters for replacing a card.
// Nil pointers leave the field unchanged.
type UpdateCardRequest struct {
	Ref            string
	Name           *string
	OrderNo        *string
	ContractNumber *string
	Desc           *string
	Drawing        *string
	Material       *string
	Quantity       *models.Quantity
	UseItemList    *bool
}

// CardFilters contains filter options for listing cards.
type CardFilters struct {
	Status          models.Status
	ProcessState    models.ProcessState
	GroupID         string
	Query           string
	Archived        bool
	IncludeChildren bool
}

// CardView is a card with its derived projections.
type CardView struct {
	Card         *models.Card
	ProcessState models.ProcessState
	Current      *models.Operation
	Children     []*CardView
	Results      quantity.FinalResults
}

// AddRouteStepRequest contains the parameters for adding a route step.
type AddRouteStepRequest struct {
	CardRef        string
	OpRef          string
	CenterRef      string
	Executor       string
	PlannedMinutes int
	Quantity       models.Quantity
	AutoCode       bool
}

// RouteStepResponse reports a route edit. A rejected edit has Applied=false
// and a Reason; it is not an error.
type RouteStepResponse struct {
	Applied   bool
	Reason    string
	Card      *models.Card
	Operation *models.Operation
}

// OperationActionRequest contains the parameters for an operation action.
type OperationActionRequest struct {
	CardRef string
	OpRef   string
	Action  string
}

// ActionResult reports the outcome of an operation action.
type ActionResult struct {
	Applied    bool
	Reason     string
	Card       *models.Card
	Operation  *models.Operation
	PrevStatus models.Status
	NewStatus  models.Status
	CardStatus models.Status
	// Persisted is false when the save failed; the change is kept in memory.
	Persisted bool
}

// RecordCountsRequest contains the aggregate counters to store.
// Nil pointers leave the counter unchanged.
type RecordCountsRequest struct {
	CardRef string
	OpRef   string
	Good    *int
	Scrap   *int
	Hold    *int
}

// RecordItemRequest contains one item's counters and name.
type RecordItemRequest struct {
	CardRef string
	OpRef   string
	ItemRef string
	Name    *string
	Good    *int
	Scrap   *int
	Hold    *int
}

// SetExecutorRequest contains an operation's executors.
type SetExecutorRequest struct {
	CardRef    string
	OpRef      string
	Executor   string
	Additional []string
}

// CreateGroupRequest contains the parameters for creating a group.
type CreateGroupRequest struct {
	Draft CardDraft
	// TemplateRef copies the draft from an existing card when set.
	TemplateRef string
	Name        string
	Count       int
}

// GroupResponse contains a group and its children.
type GroupResponse struct {
	Group    *models.Card
	Children []*models.Card
}

// SetGroupExecutorRequest contains the parameters for a group executor change.
type SetGroupExecutorRequest struct {
	GroupRef string
	OpCode   string
	Executor string
}

// GroupExecutorResponse counts the steps matched and changed.
type GroupExecutorResponse struct {
	Matched int
	Updated int
}

// CardLog is a card's history.
type CardLog struct {
	Card            *models.Card
	Entries         []models.LogEntry
	InitialSnapshot *models.Card
}

// SyncStatus reports the health of persistence.
type SyncStatus struct {
	Degraded    bool
	LastError   string
	LastSavedAt time.Time
}
