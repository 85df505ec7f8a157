package domain

import (
	"context"
	"fmt"
)

// DefaultEmbeddingModel is the model used when none is configured.
const DefaultEmbeddingModel = "text-embedding-3-small"

// DefaultDimensions matches DefaultEmbeddingModel. Stored and query vectors must share it.
const DefaultDimensions = 1536

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// CheckDimensions returns ErrVectorDimMismatch when vec does not have exactly dim elements.
func CheckDimensions(vec []float32, dim int) error {
	if dim > 0 && len(vec) != dim {
		return fmt.Errorf("got %d, want %d: %w", len(vec), dim, ErrVectorDimMismatch)
	}
	return nil
}
