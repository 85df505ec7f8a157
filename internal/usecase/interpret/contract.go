package interpret

import "context"

// TextInterpreter submits instructions plus user text and returns the raw JSON reply.
type TextInterpreter interface {
	Complete(ctx context.Context, instructions, text string) (string, error)
}

// Vocabulary returns the distinct non-null values of a posting attribute.
type Vocabulary interface {
	ListDistinct(ctx context.Context, field string) ([]string, error)
}
