package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockBreaker struct {
	open bool
}

func (m *mockBreaker) Open() bool { return m.open }

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(Deps{
		DB:          &mockPinger{},
		Cache:       &mockPinger{},
		Embedding:   &mockEmbeddingChecker{},
		Interpreter: &mockBreaker{},
	})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, c := range []string{ComponentDatabase, ComponentCache, ComponentEmbedding, ComponentInterpreter} {
		if r.Checks[c] != CheckOK {
			t.Errorf("expected %s %q, got %q", c, CheckOK, r.Checks[c])
		}
	}
}

func TestCheck_DBErrorIsUnhealthy(t *testing.T) {
	svc := New(Deps{DB: &mockPinger{err: errors.New("conn refused")}, Embedding: &mockEmbeddingChecker{}})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[ComponentDatabase])
	}
	if r.Checks[ComponentEmbedding] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks[ComponentEmbedding])
	}
}

func TestCheck_EmbeddingErrorIsDegraded(t *testing.T) {
	svc := New(Deps{DB: &mockPinger{}, Embedding: &mockEmbeddingChecker{err: errors.New("timeout")}})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentEmbedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[ComponentEmbedding])
	}
}

func TestCheck_CacheErrorIsDegraded(t *testing.T) {
	svc := New(Deps{DB: &mockPinger{}, Cache: &mockPinger{err: errors.New("down")}})
	if r := svc.Check(context.Background()); r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
}

func TestCheck_OpenBreakerIsDegraded(t *testing.T) {
	svc := New(Deps{DB: &mockPinger{}, Interpreter: &mockBreaker{open: true}})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentInterpreter] != CheckError {
		t.Errorf("expected interpreter %q, got %q", CheckError, r.Checks[ComponentInterpreter])
	}
}

func TestCheck_OptionalComponentsOmitted(t *testing.T) {
	r := New(Deps{DB: &mockPinger{}}).Check(context.Background())

	if len(r.Checks) != 1 {
		t.Errorf("expected only database check, got %v", r.Checks)
	}
}

func TestCheck_ProbeTimeout(t *testing.T) {
	svc := New(Deps{DB: slowPinger{}, Timeout: 20 * time.Millisecond})

	start := time.Now()
	r := svc.Check(context.Background())
	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if time.Since(start) > time.Second {
		t.Errorf("probe timeout not honored: %s", time.Since(start))
	}
}
