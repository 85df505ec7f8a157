package jobdex

import "github.com/kailas-cloud/jobdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrJobNotFound
	ErrInvalidPosting    = domain.ErrInvalidJob
	ErrInvalidQuery      = domain.ErrInvalidQuery
	ErrVectorDimMismatch = domain.ErrVectorDimMismatch
	ErrEmbeddingService  = domain.ErrEmbeddingService
	ErrSearchUnavailable = domain.ErrSearchUnavailable
)
