package batch

import (
	"context"

	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
)

// JobSaver creates or updates a posting, keeping its embedding fresh.
type JobSaver interface {
	Save(ctx context.Context, id string, attrs domjob.Attributes) (domjob.Job, bool, error)
}
