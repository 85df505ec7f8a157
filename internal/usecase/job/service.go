package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kailas-cloud/jobdex/internal/domain"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
)

// Service handles job posting writes with embedding freshness.
type Service struct {
	repo       Repository
	embed      Embedder
	template   domjob.Template
	dimensions int
	newID      func() string
}

// New creates a job service. dimensions <= 0 disables the dimension check.
func New(repo Repository, embed Embedder, template domjob.Template, dimensions int) *Service {
	if template == "" {
		template = domjob.TemplateDetailed
	}
	return &Service{
		repo:       repo,
		embed:      embed,
		template:   template,
		dimensions: dimensions,
		newID:      uuid.NewString,
	}
}

// Save validates and stores a posting. An empty id creates a new posting with a
// generated UUID. The embedding is recomputed when the posting is new, when any
// text attribute changed, or when the stored vector is missing or of the wrong
// dimension; otherwise the stored vector is kept. Embedding failure aborts the save.
// Returns true if the posting was created.
func (s *Service) Save(ctx context.Context, id string, attrs domjob.Attributes) (domjob.Job, bool, error) {
	j, err := domjob.New(id, attrs)
	if err != nil {
		return domjob.Job{}, false, err
	}

	var prev *domjob.Job
	if id == "" {
		j.SetID(s.newID())
	} else {
		existing, err := s.repo.Get(ctx, id)
		switch {
		case err == nil:
			prev = &existing
		case errors.Is(err, domain.ErrJobNotFound):
		default:
			return domjob.Job{}, false, fmt.Errorf("load job: %w", err)
		}
	}

	if s.needsEmbedding(&j, prev) {
		if err := s.vectorize(ctx, &j); err != nil {
			return domjob.Job{}, false, err
		}
	} else {
		j.SetEmbedding(prev.Embedding())
	}

	stored, err := s.repo.Upsert(ctx, j)
	if err != nil {
		return domjob.Job{}, false, fmt.Errorf("upsert job: %w", err)
	}
	return stored, prev == nil, nil
}

// Reembed recomputes the embedding of a stored posting regardless of freshness.
func (s *Service) Reembed(ctx context.Context, id string) (domjob.Job, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return domjob.Job{}, err
	}
	if err := s.vectorize(ctx, &j); err != nil {
		return domjob.Job{}, err
	}
	stored, err := s.repo.Upsert(ctx, j)
	if err != nil {
		return domjob.Job{}, fmt.Errorf("upsert job: %w", err)
	}
	return stored, nil
}

// Get retrieves a posting by id.
func (s *Service) Get(ctx context.Context, id string) (domjob.Job, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return domjob.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

// List returns all postings, newest first.
func (s *Service) List(ctx context.Context) ([]domjob.Job, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) needsEmbedding(j, prev *domjob.Job) bool {
	if prev == nil || j.TextChanged(prev) || len(prev.Embedding()) == 0 {
		return true
	}
	return domain.CheckDimensions(prev.Embedding(), s.dimensions) != nil
}

func (s *Service) vectorize(ctx context.Context, j *domjob.Job) error {
	res, err := s.embed.Embed(ctx, j.EmbeddingText(s.template))
	if err != nil {
		return fmt.Errorf("vectorize job: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if err := domain.CheckDimensions(res.Embedding, s.dimensions); err != nil {
		return fmt.Errorf("vectorize job: %w", err)
	}
	j.SetEmbedding(res.Embedding)
	return nil
}
