package result

import (
	"math"

	"github.com/kailas-cloud/jobdex/internal/domain/job"
)

// Hit is a single ranked search result.
type Hit struct {
	job      job.Job
	distance float64
}

// New creates a search hit.
func New(j job.Job, distance float64) Hit {
	return Hit{job: j, distance: distance}
}

// Job returns the matched posting.
func (h *Hit) Job() job.Job { return h.job }

// Distance returns the cosine distance to the query vector (lower is closer).
func (h *Hit) Distance() float64 { return h.distance }

// CosineDistance returns 1 - cos(a, b). Vectors of different length or with
// zero norm are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
