package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCatalogPinger struct {
	err error
}

func (m *mockCatalogPinger) Ping(_ context.Context) error { return m.err }

type mockModelChecker struct {
	err error
}

func (m *mockModelChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		catalogErr error
		modelErr   error
		want       Status
		catalog    CheckResult
		model      CheckResult
	}{
		{"all healthy", nil, nil, Healthy, CheckOK, CheckOK},
		{"catalog down", errors.New("missing file"), nil, Degraded, CheckError, CheckOK},
		{"model down", nil, errors.New("timeout"), Degraded, CheckOK, CheckError},
		{"both down", errors.New("x"), errors.New("y"), Unhealthy, CheckError, CheckError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockCatalogPinger{err: tt.catalogErr}, &mockModelChecker{err: tt.modelErr})
			r := svc.Check(context.Background())

			if r.Status != tt.want {
				t.Errorf("expected %q, got %q", tt.want, r.Status)
			}
			if r.Checks[ComponentCatalog] != tt.catalog {
				t.Errorf("expected catalog %q, got %q", tt.catalog, r.Checks[ComponentCatalog])
			}
			if r.Checks[ComponentModel] != tt.model {
				t.Errorf("expected model %q, got %q", tt.model, r.Checks[ComponentModel])
			}
		})
	}
}

func TestCheck_NoModel(t *testing.T) {
	svc := New(&mockCatalogPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentModel]; ok {
		t.Error("model check should be absent when model is nil")
	}
}

func TestCheck_NoModel_CatalogError(t *testing.T) {
	svc := New(&mockCatalogPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentCatalog] != CheckError {
		t.Error("expected catalog error")
	}
}

func TestCheck_AppliesTimeout(t *testing.T) {
	var hasDeadline bool
	pinger := checkFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	New(pinger, nil).Check(context.Background())
	if !hasDeadline {
		t.Error("expected check context to carry a deadline")
	}
}

type checkFunc func(ctx context.Context) error

func (f checkFunc) Ping(ctx context.Context) error { return f(ctx) }
