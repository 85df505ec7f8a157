package search

import (
	"context"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
	"github.com/kailas-cloud/jobdex/internal/usecase/interpret"
)

// Repository defines the storage contract for hybrid retrieval.
type Repository interface {
	// ListDistinct returns distinct non-null values of a text attribute.
	ListDistinct(ctx context.Context, field string) ([]string, error)
	// FilterAndRank returns at most limit postings satisfying every condition,
	// ordered by cosine distance to vector, ties broken by creation order then id.
	FilterAndRank(
		ctx context.Context, conds []filter.Condition, vector []float32, limit int,
	) ([]result.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Interpreter turns a natural-language query into keyword and filters.
type Interpreter interface {
	Interpret(ctx context.Context, rawQuery string) interpret.Result
}
