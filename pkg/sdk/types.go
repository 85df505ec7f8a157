package jobdex

import (
	"time"

	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/jobdex/internal/usecase/search"
)

// Posting is a job posting. Empty optional strings mean the attribute is absent.
type Posting struct {
	ID           string
	Title        string
	Description  string
	JobCategory  string
	BusinessType string
	Location     string
	MinSalary    *int // in 万円
	HasEmbedding bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hit is a ranked posting. Lower Distance is closer.
type Hit struct {
	Posting
	Distance float64
}

// SearchResult is the outcome of a search call.
type SearchResult struct {
	// Performed is false when the request carried nothing to search for.
	Performed bool
	Hits      []Hit
	// Keyword and Filters describe how a natural-language query was understood.
	Keyword string
	Filters map[string]any
	// Degraded is true when interpretation fell back to the raw query.
	Degraded bool
}

// FormOptions lists the distinct values offered by a structured search form.
type FormOptions struct {
	JobCategories []string
	BusinessTypes []string
	Locations     []string
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

func (p Posting) attributes() domjob.Attributes {
	return domjob.Attributes{
		Title:        p.Title,
		Description:  p.Description,
		JobCategory:  p.JobCategory,
		BusinessType: p.BusinessType,
		Location:     p.Location,
		MinSalary:    p.MinSalary,
	}
}

func postingFromDomain(j *domjob.Job) Posting {
	p := Posting{
		ID:           j.ID(),
		Title:        j.Title(),
		Description:  j.Description(),
		JobCategory:  j.JobCategory(),
		BusinessType: j.BusinessType(),
		Location:     j.Location(),
		HasEmbedding: len(j.Embedding()) > 0,
		CreatedAt:    j.CreatedAt(),
		UpdatedAt:    j.UpdatedAt(),
	}
	if v, ok := j.MinSalary(); ok {
		p.MinSalary = &v
	}
	return p
}

func hitsFromDomain(hits []result.Hit) []Hit {
	out := make([]Hit, len(hits))
	for i := range hits {
		j := hits[i].Job()
		out[i] = Hit{Posting: postingFromDomain(&j), Distance: hits[i].Distance()}
	}
	return out
}

func searchResultFromDomain(resp searchuc.Response) SearchResult {
	res := SearchResult{Performed: resp.Performed, Hits: hitsFromDomain(resp.Hits)}
	if in := resp.Interpretation; in != nil {
		res.Keyword = in.Keyword
		res.Filters = in.Filters.Map()
		res.Degraded = in.Degraded
	}
	return res
}
