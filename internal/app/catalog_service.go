package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/core/route"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// CatalogServiceImpl implements the CatalogService interface.
type CatalogServiceImpl struct {
	repo *CardRepository
}

// NewCatalogService creates a new CatalogService with injected dependencies.
func NewCatalogService(repo *CardRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{repo: repo}
}

// ListOperations lists catalog operations.
func (s *CatalogServiceImpl) ListOperations(ctx context.Context) ([]*models.OpCatalogEntry, error) {
	var out []*models.OpCatalogEntry
	err := s.repo.View(func(col *models.Collection) error {
		for _, op := range col.Ops {
			cp := *op
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// AddOperation adds a catalog operation. A blank code is generated; a code
// already used by the catalog or any route is rejected.
func (s *CatalogServiceImpl) AddOperation(ctx context.Context, req primary.AddOperationRequest) (*models.OpCatalogEntry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: operation name is required", primary.ErrInvalidArgument)
	}
	if req.RecTime < 0 {
		return nil, fmt.Errorf("%w: recommended time must not be negative", primary.ErrInvalidArgument)
	}

	var out *models.OpCatalogEntry
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		used := route.UsedCodes(col)
		code := strings.TrimSpace(req.Code)
		if code == "" {
			code = route.UniqueCode(used, env.NewCode)
		} else if used[code] {
			return false, fmt.Errorf("%w: code %s is already in use", primary.ErrInvalidArgument, code)
		}
		recTime := req.RecTime
		if recTime == 0 {
			recTime = route.DefaultPlannedMinutes
		}
		entry := &models.OpCatalogEntry{
			ID:      env.NewID("catalog"),
			Code:    code,
			Name:    name,
			Desc:    strings.TrimSpace(req.Desc),
			RecTime: recTime,
		}
		col.Ops = append(col.Ops, entry)
		cp := *entry
		out = &cp
		return true, nil
	})
	return out, err
}

// DeleteOperation removes a catalog operation. Route steps keep their copy
// of the code and name.
func (s *CatalogServiceImpl) DeleteOperation(ctx context.Context, ref string) error {
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		op := col.FindOp(strings.TrimSpace(ref))
		if op == nil {
			return false, fmt.Errorf("%w: operation %s", primary.ErrCatalogNotFound, ref)
		}
		for i, o := range col.Ops {
			if o == op {
				col.Ops = append(col.Ops[:i:i], col.Ops[i+1:]...)
				break
			}
		}
		return true, nil
	})
	return err
}

// ListCenters lists work centers.
func (s *CatalogServiceImpl) ListCenters(ctx context.Context) ([]*models.WorkCenter, error) {
	var out []*models.WorkCenter
	err := s.repo.View(func(col *models.Collection) error {
		for _, wc := range col.Centers {
			cp := *wc
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// AddCenter adds a work center. Names are unique.
func (s *CatalogServiceImpl) AddCenter(ctx context.Context, name, desc string) (*models.WorkCenter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: work center name is required", primary.ErrInvalidArgument)
	}
	var out *models.WorkCenter
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		if col.FindCenter(name) != nil {
			return false, fmt.Errorf("%w: work center %q already exists", primary.ErrInvalidArgument, name)
		}
		wc := &models.WorkCenter{ID: env.NewID("center"), Name: name, Desc: strings.TrimSpace(desc)}
		col.Centers = append(col.Centers, wc)
		cp := *wc
		out = &cp
		return true, nil
	})
	return out, err
}

// DeleteCenter removes a work center. Route steps keep their copy of the name.
func (s *CatalogServiceImpl) DeleteCenter(ctx context.Context, ref string) error {
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		wc := col.FindCenter(strings.TrimSpace(ref))
		if wc == nil {
			return false, fmt.Errorf("%w: work center %s", primary.ErrCatalogNotFound, ref)
		}
		for i, c := range col.Centers {
			if c == wc {
				col.Centers = append(col.Centers[:i:i], col.Centers[i+1:]...)
				break
			}
		}
		return true, nil
	})
	return err
}

// Ensure CatalogServiceImpl implements the interface
var _ primary.CatalogService = (*CatalogServiceImpl)(nil)
