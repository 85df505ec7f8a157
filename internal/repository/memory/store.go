package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
)

// Store is an in-process job store with the same filter and ranking semantics
// as the PostgreSQL repository.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]job.Job
	now  func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{jobs: make(map[string]job.Job), now: time.Now}
}

// NewWithClock creates an empty store with a custom clock (tests).
func NewWithClock(now func() time.Time) *Store {
	return &Store{jobs: make(map[string]job.Job), now: now}
}

// Get returns a posting by id.
func (s *Store) Get(_ context.Context, id string) (job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return job.Job{}, fmt.Errorf("get %q: %w", id, domain.ErrJobNotFound)
	}
	return clone(j), nil
}

// Upsert inserts or replaces a posting. created_at is kept on replace.
func (s *Store) Upsert(_ context.Context, j job.Job) (job.Job, error) {
	if j.ID() == "" {
		return job.Job{}, fmt.Errorf("upsert: id is required: %w", domain.ErrInvalidJob)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	created := now
	if prev, ok := s.jobs[j.ID()]; ok {
		created = prev.CreatedAt()
	}

	stored := clone(j)
	stored.SetTimestamps(created, now)
	s.jobs[j.ID()] = stored
	return clone(stored), nil
}

// List returns all postings, newest first.
func (s *Store) List(_ context.Context) ([]job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, clone(j))
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt().Equal(out[b].CreatedAt()) {
			return out[a].CreatedAt().After(out[b].CreatedAt())
		}
		return out[a].ID() > out[b].ID()
	})
	return out, nil
}

// ListDistinct returns distinct non-empty values of a text attribute, sorted.
func (s *Store) ListDistinct(_ context.Context, field string) ([]string, error) {
	switch field {
	case job.FieldJobCategory, job.FieldBusinessType, job.FieldLocation, job.FieldTitle:
	default:
		return nil, fmt.Errorf("list distinct: unsupported field %q", field)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, j := range s.jobs {
		if v := j.Text(field); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// FilterAndRank implements the hybrid retrieval store contract.
// Postings without an embedding are ranked last (distance 1).
func (s *Store) FilterAndRank(
	_ context.Context, conds []filter.Condition, vector []float32, limit int,
) ([]result.Hit, error) {
	s.mu.RLock()
	hits := make([]result.Hit, 0)
	for _, j := range s.jobs {
		if !filter.MatchesAll(conds, &j) {
			continue
		}
		hits = append(hits, result.New(clone(j), result.CosineDistance(vector, j.Embedding())))
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(a, b int) bool {
		ja, jb := hits[a].Job(), hits[b].Job()
		if hits[a].Distance() != hits[b].Distance() {
			return hits[a].Distance() < hits[b].Distance()
		}
		if !ja.CreatedAt().Equal(jb.CreatedAt()) {
			return ja.CreatedAt().Before(jb.CreatedAt())
		}
		return ja.ID() < jb.ID()
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Ping always succeeds; the store lives in process.
func (s *Store) Ping(context.Context) error { return nil }


func clone(j job.Job) job.Job {
	if v := j.Embedding(); v != nil {
		j.SetEmbedding(append([]float32(nil), v...))
	}
	return j
}
