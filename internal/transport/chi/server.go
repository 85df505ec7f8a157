package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/logger"
	batchuc "github.com/kailas-cloud/jobdex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/jobdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/jobdex/internal/usecase/search"
	"github.com/kailas-cloud/jobdex/internal/version"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	search        SearchService
	jobs          JobService
	batch         BatchService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService, jobs JobService, batch BatchService, health HealthService, logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		jobs:   jobs,
		batch:  batch,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrJobNotFound, http.StatusNotFound, CodeJobNotFound),
		validationHandler(domain.ErrInvalidJob),
		validationHandler(domain.ErrInvalidQuery),
		sentinelHandler(domain.ErrEmbeddingService, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable, CodeSearchUnavailable),
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchNatural)
	r.Get("/search/advanced", s.SearchStructured)
	r.Get("/search/options", s.SearchOptions)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", s.ListJobs)
		r.Post("/", s.CreateJob)
		r.Post("/batch", s.BatchSaveJobs)
		r.Get("/{id}", s.GetJob)
		r.Put("/{id}", s.UpsertJob)
		r.Post("/{id}/reembed", s.ReembedJob)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchNatural handles GET /search?query=...&debug=true.
func (s *Server) SearchNatural(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx, usage := domain.NewContextWithUsage(r.Context())

	resp, err := s.search.SearchByNaturalLanguage(ctx, q.Get("query"), parseBool(q.Get("debug")))
	setEmbeddingHeaders(w, usage)
	s.writeSearch(w, r, resp, err)
}

// SearchStructured handles GET /search/advanced. Repeated parameters honor the first value.
func (s *Server) SearchStructured(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())

	resp, err := s.search.SearchByStructuredFilters(ctx, r.URL.Query())
	setEmbeddingHeaders(w, usage)
	s.writeSearch(w, r, resp, err)
}

// SearchOptions handles GET /search/options.
func (s *Server) SearchOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.search.Options(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OptionsResponse{
		JobCategories: nonNil(opts.JobCategories),
		BusinessTypes: nonNil(opts.BusinessTypes),
		Locations:     nonNil(opts.Locations),
	})
}

// ListJobs handles GET /jobs.
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]JobResponse, len(jobs))
	for i := range jobs {
		items[i] = jobToResponse(&jobs[i])
	}
	writeJSON(w, http.StatusOK, JobListResponse{Items: items, Total: len(items)})
}

// CreateJob handles POST /jobs. The id is generated.
func (s *Server) CreateJob(w http.ResponseWriter, r *http.Request) {
	s.saveJob(w, r, "")
}

// UpsertJob handles PUT /jobs/{id}.
func (s *Server) UpsertJob(w http.ResponseWriter, r *http.Request) {
	s.saveJob(w, r, chi.URLParam(r, "id"))
}

// BatchSaveJobs handles POST /jobs/batch. Item failures are reported per item with 200.
func (s *Server) BatchSaveJobs(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items := make([]batchuc.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = batchuc.Item{ID: it.ID, Attrs: it.attributes()}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.batch.Save(ctx, items)

	resp := BatchResponse{Items: make([]BatchItemResponse, len(results))}
	for i, res := range results {
		item := BatchItemResponse{ID: res.ID(), Status: string(res.Status()), Created: res.Created()}
		if err := res.Err(); err != nil {
			logger.FromContextOr(r.Context(), s.logger).Warn("batch item failed",
				zap.Int("index", i), zap.String("id", res.ID()), zap.Error(err))
			e := itemError(err)
			item.Error = &e
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = item
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// GetJob handles GET /jobs/{id}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobToResponse(&j))
}

// ReembedJob handles POST /jobs/{id}/reembed.
func (s *Server) ReembedJob(w http.ResponseWriter, r *http.Request) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	j, err := s.jobs.Reembed(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, jobToResponse(&j))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) saveJob(w http.ResponseWriter, r *http.Request, id string) {
	var req JobRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	j, created, err := s.jobs.Save(ctx, id, req.attributes())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", "/jobs/"+j.ID())
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, status, jobToResponse(&j))
}

// writeSearch renders a search outcome. A failed search still returns the
// generic message in the search body, with 503.
func (s *Server) writeSearch(w http.ResponseWriter, r *http.Request, resp searchuc.Response, err error) {
	if err != nil && !errors.Is(err, domain.ErrSearchUnavailable) {
		s.handleDomainError(w, r, err)
		return
	}

	body := SearchResponse{
		Performed:      resp.Performed,
		Results:        hitsToResponse(resp.Hits),
		Message:        resp.Message,
		Interpretation: interpretationToResponse(resp.Interpretation),
	}
	body.Total = len(body.Results)

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		if body.Message == "" {
			body.Message = domain.SearchFailureMessage
		}
	}
	writeJSON(w, status, body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// itemError renders a per-item failure with the same codes as whole-request errors.
func itemError(err error) ErrorResponse {
	switch {
	case errors.Is(err, domain.ErrInvalidJob):
		return ErrorResponse{Code: CodeValidationFailed, Message: err.Error()}
	case errors.Is(err, domain.ErrEmbeddingService):
		return ErrorResponse{Code: CodeEmbeddingProviderError, Message: safeDomainMessage(err)}
	case errors.Is(err, domain.ErrJobNotFound):
		return ErrorResponse{Code: CodeJobNotFound, Message: safeDomainMessage(err)}
	}
	return ErrorResponse{Code: CodeInternalError, Message: "internal error"}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrJobNotFound,
		domain.ErrInvalidJob,
		domain.ErrInvalidQuery,
		domain.ErrEmbeddingService,
		domain.ErrSearchUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler maps a validation sentinel to 400 with the full message.
// Validation messages are built from caller input only.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error, _ string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
