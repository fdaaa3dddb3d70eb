package cli

import (
	"context"
	"fmt"

	"github.com/example/routecard/internal/ports/primary"
)

// CreateGroup creates a group of copies.
func (a *CardAdapter) CreateGroup(ctx context.Context, req primary.CreateGroupRequest) (*primary.GroupResponse, error) {
	res, err := a.service.CreateGroup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	a.printGroup("Created group", res)
	return res, nil
}

// DuplicateGroup copies a group with its live children.
func (a *CardAdapter) DuplicateGroup(ctx context.Context, ref string) (*primary.GroupResponse, error) {
	res, err := a.service.DuplicateGroup(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate group: %w", err)
	}
	a.printGroup("Duplicated group", res)
	return res, nil
}

// DeleteGroup deletes a group and its children.
func (a *CardAdapter) DeleteGroup(ctx context.Context, ref string) (int, error) {
	n, err := a.service.DeleteGroup(ctx, ref)
	if err != nil {
		return 0, fmt.Errorf("failed to delete group: %w", err)
	}
	fmt.Fprintf(a.out, "%s Deleted %d cards\n", okMark(), n)
	a.banner()
	return n, nil
}

// GroupExecutor assigns an executor to every child step with an op code.
func (a *CardAdapter) GroupExecutor(ctx context.Context, req primary.SetGroupExecutorRequest) (*primary.GroupExecutorResponse, error) {
	res, err := a.service.SetGroupExecutor(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to set group executor: %w", err)
	}
	if res.Matched == 0 {
		fmt.Fprintf(a.out, "%s No steps with code %s in this group\n", failMark(), req.OpCode)
		return res, nil
	}
	fmt.Fprintf(a.out, "%s %s assigned to %d of %d steps\n", okMark(), req.Executor, res.Updated, res.Matched)
	a.banner()
	return res, nil
}

func (a *CardAdapter) printGroup(verb string, res *primary.GroupResponse) {
	fmt.Fprintf(a.out, "%s %s %s: %s\n", okMark(), verb, res.Group.Barcode, res.Group.Name)
	for _, child := range res.Children {
		fmt.Fprintf(a.out, "  %s  %s\n", child.Barcode, child.Name)
	}
	a.banner()
}
