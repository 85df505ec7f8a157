package chi

import (
	"time"

	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
	"github.com/kailas-cloud/jobdex/internal/usecase/interpret"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeJobNotFound            ErrorCode = "job_not_found"
	CodeSearchUnavailable      ErrorCode = "search_unavailable"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-search error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// JobRequest is the body of POST /jobs and PUT /jobs/{id}.
type JobRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	JobCategory  *string `json:"job_category,omitempty"`
	BusinessType *string `json:"business_type,omitempty"`
	Location     *string `json:"location,omitempty"`
	MinSalary    *int    `json:"min_salary,omitempty"`
}

// BatchItemRequest is one posting in POST /jobs/batch. An empty id creates a new posting.
type BatchItemRequest struct {
	ID string `json:"id,omitempty"`
	JobRequest
}

// BatchRequest is the body of POST /jobs/batch.
type BatchRequest struct {
	Items []BatchItemRequest `json:"items"`
}

// BatchItemResponse is the outcome of one batch item.
type BatchItemResponse struct {
	ID      string         `json:"id,omitempty"`
	Status  string         `json:"status"`
	Created bool           `json:"created,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse is the body of POST /jobs/batch.
type BatchResponse struct {
	Items     []BatchItemResponse `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// JobResponse is a posting without its embedding.
type JobResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	JobCategory  *string   `json:"job_category,omitempty"`
	BusinessType *string   `json:"business_type,omitempty"`
	Location     *string   `json:"location,omitempty"`
	MinSalary    *int      `json:"min_salary,omitempty"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobListResponse wraps GET /jobs.
type JobListResponse struct {
	Items []JobResponse `json:"items"`
	Total int           `json:"total"`
}

// SearchResultItem is a ranked posting.
type SearchResultItem struct {
	JobResponse
	Distance float64 `json:"distance"`
}

// InterpretationResponse exposes the interpreter output when debug is requested.
type InterpretationResponse struct {
	Keyword  string         `json:"keyword"`
	Filters  map[string]any `json:"filters"`
	Degraded bool           `json:"degraded"`
}

// SearchResponse is the body of both search endpoints, including failures.
type SearchResponse struct {
	Performed      bool                    `json:"performed"`
	Results        []SearchResultItem      `json:"results"`
	Total          int                     `json:"total"`
	Message        string                  `json:"message,omitempty"`
	Interpretation *InterpretationResponse `json:"interpretation,omitempty"`
}

// OptionsResponse lists the values offered by the structured search form.
type OptionsResponse struct {
	JobCategories []string `json:"job_categories"`
	BusinessTypes []string `json:"business_types"`
	Locations     []string `json:"locations"`
}

// HealthResponse reports component status.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

func (r JobRequest) attributes() domjob.Attributes {
	return domjob.Attributes{
		Title:        r.Title,
		Description:  r.Description,
		JobCategory:  deref(r.JobCategory),
		BusinessType: deref(r.BusinessType),
		Location:     deref(r.Location),
		MinSalary:    r.MinSalary,
	}
}

func jobToResponse(j *domjob.Job) JobResponse {
	resp := JobResponse{
		ID:           j.ID(),
		Title:        j.Title(),
		Description:  j.Description(),
		JobCategory:  optional(j.JobCategory()),
		BusinessType: optional(j.BusinessType()),
		Location:     optional(j.Location()),
		HasEmbedding: len(j.Embedding()) > 0,
		CreatedAt:    j.CreatedAt(),
		UpdatedAt:    j.UpdatedAt(),
	}
	if v, ok := j.MinSalary(); ok {
		resp.MinSalary = &v
	}
	return resp
}

func hitsToResponse(hits []result.Hit) []SearchResultItem {
	items := make([]SearchResultItem, len(hits))
	for i := range hits {
		j := hits[i].Job()
		items[i] = SearchResultItem{JobResponse: jobToResponse(&j), Distance: hits[i].Distance()}
	}
	return items
}

func interpretationToResponse(r *interpret.Result) *InterpretationResponse {
	if r == nil {
		return nil
	}
	return &InterpretationResponse{Keyword: r.Keyword, Filters: r.Filters.Map(), Degraded: r.Degraded}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
