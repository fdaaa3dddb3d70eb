package primary

import (
	"context"

	"github.com/example/routecard/internal/models"
)

// CatalogService defines the primary port for the operation catalog and work centers.
type CatalogService interface {
	// ListOperations lists catalog operations.
	ListOperations(ctx context.Context) ([]*models.OpCatalogEntry, error)

	// AddOperation adds a catalog operation. A blank code is generated.
	AddOperation(ctx context.Context, req AddOperationRequest) (*models.OpCatalogEntry, error)

	// DeleteOperation removes a catalog operation. Route steps keep their copy.
	DeleteOperation(ctx context.Context, ref string) error

	// ListCenters lists work centers.
	ListCenters(ctx context.Context) ([]*models.WorkCenter, error)

	// AddCenter adds a work center.
	AddCenter(ctx context.Context, name, desc string) (*models.WorkCenter, error)

	// DeleteCenter removes a work center.
	DeleteCenter(ctx context.Context, ref string) error
}

// AddOperationRequest contains the parameters for a catalog operation.
type AddOperationRequest struct {
	Code    string
	Name    string
	Desc    string
	RecTime int
}
