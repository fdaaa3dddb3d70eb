package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

type mockCatalogService struct {
	ops     []*models.OpCatalogEntry
	centers []*models.WorkCenter
	addErr  error
	lastReq primary.AddOperationRequest
}

func (m *mockCatalogService) ListOperations(ctx context.Context) ([]*models.OpCatalogEntry, error) {
	return m.ops, nil
}

func (m *mockCatalogService) AddOperation(ctx context.Context, req primary.AddOperationRequest) (*models.OpCatalogEntry, error) {
	m.lastReq = req
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &models.OpCatalogEntry{ID: "catalog_9", Code: "OP-0009", Name: req.Name, RecTime: req.RecTime}, nil
}

func (m *mockCatalogService) DeleteOperation(ctx context.Context, ref string) error {
	return nil
}

func (m *mockCatalogService) ListCenters(ctx context.Context) ([]*models.WorkCenter, error) {
	return m.centers, nil
}

func (m *mockCatalogService) AddCenter(ctx context.Context, name, desc string) (*models.WorkCenter, error) {
	return &models.WorkCenter{ID: "center_9", Name: name, Desc: desc}, nil
}

func (m *mockCatalogService) DeleteCenter(ctx context.Context, ref string) error {
	return nil
}

func TestCatalogAdapter_ListOperations(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var out bytes.Buffer
		if _, err := NewCatalogAdapter(&mockCatalogService{}, &out).ListOperations(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "No catalog operations.") {
			t.Errorf("unexpected output: %s", out.String())
		}
	})

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		svc := &mockCatalogService{ops: []*models.OpCatalogEntry{{Code: "OP-0001", Name: "Turning", RecTime: 40}}}
		if _, err := NewCatalogAdapter(svc, &out).ListOperations(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"CODE", "OP-0001", "Turning", "40"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, out.String())
			}
		}
	})
}

func TestCatalogAdapter_AddOperation(t *testing.T) {
	var out bytes.Buffer
	svc := &mockCatalogService{}
	op, err := NewCatalogAdapter(svc, &out).AddOperation(context.Background(), primary.AddOperationRequest{Name: "Grinding", RecTime: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if op.Code != "OP-0009" || svc.lastReq.RecTime != 25 {
		t.Errorf("unexpected result %+v / request %+v", op, svc.lastReq)
	}
	if !strings.Contains(out.String(), "Added operation OP-0009: Grinding") {
		t.Errorf("unexpected output: %s", out.String())
	}

	svc.addErr = primary.ErrInvalidArgument
	if _, err := NewCatalogAdapter(svc, &out).AddOperation(context.Background(), primary.AddOperationRequest{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCatalogAdapter_Centers(t *testing.T) {
	var out bytes.Buffer
	svc := &mockCatalogService{centers: []*models.WorkCenter{{ID: "center_1", Name: "Machining"}}}
	adapter := NewCatalogAdapter(svc, &out)
	if _, err := adapter.ListCenters(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := adapter.AddCenter(context.Background(), "Grinding", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"center_1", "Machining", "Added work center Grinding"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

var _ primary.CatalogService = (*mockCatalogService)(nil)
