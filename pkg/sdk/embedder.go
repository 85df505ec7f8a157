package jobdex

import "context"

// Embedder converts text to vector embeddings.
// Overrides the OpenAI provider configured with WithOpenAI.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Interpreter answers an instruction prompt about the user text with a JSON object.
// Any error degrades natural-language search to keyword-only ranking.
type Interpreter interface {
	Complete(ctx context.Context, instructions, text string) (string, error)
}
