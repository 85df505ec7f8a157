package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/jobdex/internal/domain/batch"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	batchuc "github.com/kailas-cloud/jobdex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/jobdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jobdex/internal/usecase/search"
)

// SearchService serves both search paths and the option lists.
type SearchService interface {
	SearchByNaturalLanguage(ctx context.Context, query string, debug bool) (searchuc.Response, error)
	SearchByStructuredFilters(ctx context.Context, params map[string][]string) (searchuc.Response, error)
	Options(ctx context.Context) (searchuc.Options, error)
}

// JobService manages postings.
type JobService interface {
	Save(ctx context.Context, id string, attrs domjob.Attributes) (domjob.Job, bool, error)
	Reembed(ctx context.Context, id string) (domjob.Job, error)
	Get(ctx context.Context, id string) (domjob.Job, error)
	List(ctx context.Context) ([]domjob.Job, error)
}

// BatchService saves postings in bulk with per-item results.
type BatchService interface {
	Save(ctx context.Context, items []batchuc.Item) []dombatch.Result
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
