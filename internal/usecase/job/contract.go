package job

import (
	"context"

	"github.com/kailas-cloud/jobdex/internal/domain"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
)

// Repository defines the storage contract for job postings.
type Repository interface {
	// Upsert stores the posting and returns it with store-assigned timestamps.
	Upsert(ctx context.Context, j domjob.Job) (domjob.Job, error)
	Get(ctx context.Context, id string) (domjob.Job, error)
	// List returns all postings, newest first.
	List(ctx context.Context) ([]domjob.Job, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
