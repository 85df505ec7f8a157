package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/jobdex/internal/domain"
	dombatch "github.com/kailas-cloud/jobdex/internal/domain/batch"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Item is one posting in a batch save. An empty ID creates a new posting.
type Item struct {
	ID    string
	Attrs domjob.Attributes
}

// Service handles batch posting saves with per-item error reporting.
type Service struct {
	jobs         JobSaver
	maxBatchSize int
}

// New creates a batch service.
func New(jobs JobSaver) *Service {
	return &Service{jobs: jobs, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Save stores postings one by one. Validation failures stay local to their item;
// an embedding service failure fails the item and every item after it, since the
// remaining saves would hit the same provider.
func (s *Service) Save(ctx context.Context, items []Item) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(
				item.ID,
				fmt.Errorf("batch size exceeds %d: %w", s.maxBatchSize, domain.ErrInvalidJob),
			)
		}
		return results
	}

	for i, item := range items {
		j, created, err := s.jobs.Save(ctx, item.ID, item.Attrs)
		if err != nil {
			results[i] = dombatch.NewError(item.ID, err)
			if cascades(err) {
				for k := i + 1; k < len(items); k++ {
					results[k] = dombatch.NewError(items[k].ID, fmt.Errorf("skipped: %w", err))
				}
				return results
			}
			continue
		}
		results[i] = dombatch.NewOK(j.ID(), created)
	}

	return results
}

func cascades(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingService) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
