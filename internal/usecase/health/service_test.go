package health

import (
	"context"
	"errors"
	"testing"
)

type mockStorePinger struct {
	err error
}

func (m *mockStorePinger) Ping(_ context.Context) error { return m.err }

type mockSchemaChecker struct {
	err error
}

func (m *mockSchemaChecker) Refresh(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockSchemaChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["store"] != CheckOK {
		t.Errorf("expected store %q, got %q", CheckOK, r.Checks["store"])
	}
	if r.Checks["mappings"] != CheckOK {
		t.Errorf("expected mappings %q, got %q", CheckOK, r.Checks["mappings"])
	}
}

func TestCheck_StoreError(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, &mockSchemaChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("expected store %q, got %q", CheckError, r.Checks["store"])
	}
	if r.Checks["mappings"] != CheckOK {
		t.Errorf("expected mappings %q, got %q", CheckOK, r.Checks["mappings"])
	}
}

func TestCheck_SchemaError(t *testing.T) {
	svc := New(&mockStorePinger{}, &mockSchemaChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["mappings"] != CheckError {
		t.Errorf("expected mappings %q, got %q", CheckError, r.Checks["mappings"])
	}
}

func TestCheck_NoSchemaChecker(t *testing.T) {
	svc := New(&mockStorePinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["mappings"]; ok {
		t.Error("mappings check should be absent when schema checker is nil")
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(
		&mockStorePinger{err: errors.New("conn refused")},
		&mockSchemaChecker{err: errors.New("timeout")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_SingleCheckFailing(t *testing.T) {
	svc := New(&mockStorePinger{err: errors.New("conn refused")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}
