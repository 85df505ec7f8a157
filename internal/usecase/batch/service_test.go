package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/jobdex/internal/domain"
	dombatch "github.com/kailas-cloud/jobdex/internal/domain/batch"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
)

// --- Mocks ---

type mockSaver struct {
	errs      map[string]error // by title
	callCount int
}

func (m *mockSaver) Save(_ context.Context, id string, a domjob.Attributes) (domjob.Job, bool, error) {
	m.callCount++
	if err := m.errs[a.Title]; err != nil {
		return domjob.Job{}, false, err
	}
	created := id == ""
	if created {
		id = fmt.Sprintf("gen-%d", m.callCount)
	}
	j, err := domjob.New(id, a)
	if err != nil {
		return domjob.Job{}, false, err
	}
	return j, created, nil
}

func item(id, title string) Item {
	return Item{ID: id, Attrs: domjob.Attributes{Title: title, Description: "d"}}
}

// --- Tests ---

func TestSave_AllOK(t *testing.T) {
	saver := &mockSaver{}
	results := New(saver).Save(context.Background(), []Item{item("", "a"), item("job-2", "b")})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status() != dombatch.StatusOK || !results[0].Created() || results[0].ID() != "gen-1" {
		t.Errorf("result[0] = %+v", results[0])
	}
	if results[1].Status() != dombatch.StatusOK || results[1].Created() || results[1].ID() != "job-2" {
		t.Errorf("result[1] = %+v", results[1])
	}
}

func TestSave_ValidationErrorIsLocal(t *testing.T) {
	saver := &mockSaver{errs: map[string]error{
		"bad": fmt.Errorf("description is required: %w", domain.ErrInvalidJob),
	}}
	results := New(saver).Save(context.Background(), []Item{item("a", "bad"), item("b", "ok")})

	if results[0].Status() != dombatch.StatusError || !errors.Is(results[0].Err(), domain.ErrInvalidJob) {
		t.Errorf("result[0] = %+v", results[0])
	}
	if results[1].Status() != dombatch.StatusOK {
		t.Errorf("result[1] should succeed, got %v", results[1].Err())
	}
	if saver.callCount != 2 {
		t.Errorf("callCount = %d, want 2", saver.callCount)
	}
}

func TestSave_EmbeddingFailureCascades(t *testing.T) {
	saver := &mockSaver{errs: map[string]error{
		"b": fmt.Errorf("vectorize: %w", domain.ErrEmbeddingService),
	}}
	results := New(saver).Save(context.Background(), []Item{
		item("a", "a"), item("b", "b"), item("c", "c"), item("d", "d"),
	})

	if results[0].Status() != dombatch.StatusOK {
		t.Errorf("result[0] should succeed")
	}
	for i := 1; i < 4; i++ {
		if !errors.Is(results[i].Err(), domain.ErrEmbeddingService) {
			t.Errorf("result[%d] err = %v", i, results[i].Err())
		}
	}
	if results[3].ID() != "d" {
		t.Errorf("skipped items keep their id, got %q", results[3].ID())
	}
	if saver.callCount != 2 {
		t.Errorf("remaining items must be skipped, callCount = %d", saver.callCount)
	}
}

func TestSave_ExceedsMax(t *testing.T) {
	saver := &mockSaver{}
	items := []Item{item("a", "a"), item("b", "b"), item("c", "c")}

	results := New(saver).WithMaxBatchSize(2).Save(context.Background(), items)

	for i, r := range results {
		if !errors.Is(r.Err(), domain.ErrInvalidJob) {
			t.Errorf("result[%d] err = %v", i, r.Err())
		}
	}
	if saver.callCount != 0 {
		t.Errorf("oversized batch must not be processed, callCount = %d", saver.callCount)
	}
}

func TestWithMaxBatchSize_IgnoresNonPositive(t *testing.T) {
	s := New(&mockSaver{}).WithMaxBatchSize(0)
	if s.maxBatchSize != MaxBatchSize {
		t.Errorf("maxBatchSize = %d", s.maxBatchSize)
	}
}
