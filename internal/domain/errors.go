package domain

import "errors"

var (
	// ErrJobNotFound signals a missing job posting.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidJob signals a job posting that fails validation.
	ErrInvalidJob = errors.New("invalid job")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyText signals blank input to the embedding service.
	ErrEmptyText = errors.New("text is empty")
	// ErrInvalidQuery signals a search query that cannot be accepted (e.g. too long).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingService signals an embedding provider failure (network, auth, rate limit, timeout).
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrInterpreterService signals a text-understanding provider failure.
	ErrInterpreterService = errors.New("interpreter service error")
	// ErrSearchUnavailable signals that a search could not produce a ranked result.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrInterpretationDegraded signals that query interpretation fell back to keyword-only.
	// It is logged, never returned to callers of the interpreter.
	ErrInterpretationDegraded = errors.New("interpretation degraded")
	// ErrMalformedFilterInput signals an unparseable structured filter value.
	// The field is treated as absent.
	ErrMalformedFilterInput = errors.New("malformed filter input")
)

// SearchFailureMessage is the only failure text shown to end users.
const SearchFailureMessage = "検索中にエラーが発生しました。もう一度お試しください。"
