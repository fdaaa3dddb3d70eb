package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// CatalogAdapter translates CLI operations to CatalogService calls.
type CatalogAdapter struct {
	service primary.CatalogService
	out     io.Writer
}

// NewCatalogAdapter creates a new CatalogAdapter with the given service.
func NewCatalogAdapter(service primary.CatalogService, out io.Writer) *CatalogAdapter {
	return &CatalogAdapter{service: service, out: out}
}

// ListOperations prints the operation catalog.
func (a *CatalogAdapter) ListOperations(ctx context.Context) ([]*models.OpCatalogEntry, error) {
	ops, err := a.service.ListOperations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	if len(ops) == 0 {
		fmt.Fprintln(a.out, "No catalog operations.")
		return ops, nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tREC. MIN\tDESCRIPTION")
	fmt.Fprintln(w, "----\t----\t--------\t-----------")
	for _, op := range ops {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", op.Code, op.Name, op.RecTime, op.Desc)
	}
	w.Flush()
	return ops, nil
}

// AddOperation adds a catalog operation.
func (a *CatalogAdapter) AddOperation(ctx context.Context, req primary.AddOperationRequest) (*models.OpCatalogEntry, error) {
	op, err := a.service.AddOperation(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add operation: %w", err)
	}
	fmt.Fprintf(a.out, "%s Added operation %s: %s\n", okMark(), op.Code, op.Name)
	return op, nil
}

// DeleteOperation removes a catalog operation.
func (a *CatalogAdapter) DeleteOperation(ctx context.Context, ref string) error {
	if err := a.service.DeleteOperation(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	fmt.Fprintf(a.out, "%s Deleted operation %s\n", okMark(), ref)
	return nil
}

// ListCenters prints the work centers.
func (a *CatalogAdapter) ListCenters(ctx context.Context) ([]*models.WorkCenter, error) {
	centers, err := a.service.ListCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list centers: %w", err)
	}
	if len(centers) == 0 {
		fmt.Fprintln(a.out, "No work centers.")
		return centers, nil
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	fmt.Fprintln(w, "--\t----\t-----------")
	for _, c := range centers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Desc)
	}
	w.Flush()
	return centers, nil
}

// AddCenter adds a work center.
func (a *CatalogAdapter) AddCenter(ctx context.Context, name, desc string) (*models.WorkCenter, error) {
	c, err := a.service.AddCenter(ctx, name, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to add center: %w", err)
	}
	fmt.Fprintf(a.out, "%s Added work center %s\n", okMark(), c.Name)
	return c, nil
}

// DeleteCenter removes a work center.
func (a *CatalogAdapter) DeleteCenter(ctx context.Context, ref string) error {
	if err := a.service.DeleteCenter(ctx, ref); err != nil {
		return fmt.Errorf("failed to delete center: %w", err)
	}
	fmt.Fprintf(a.out, "%s Deleted work center %s\n", okMark(), ref)
	return nil
}
