package search

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/mode"
	"github.com/kailas-cloud/jobdex/internal/domain/search/request"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
	"github.com/kailas-cloud/jobdex/internal/metrics"
	"github.com/kailas-cloud/jobdex/internal/usecase/interpret"
)

// DefaultFallbackKeyword ranks structured searches that carry no text at all.
const DefaultFallbackKeyword = "求人"

// Response is the caller-facing outcome of a search.
type Response struct {
	// Performed is false when the request carried nothing to search for.
	Performed bool
	Hits      []result.Hit
	// Message is set only on failure and is always domain.SearchFailureMessage.
	Message string
	// Interpretation is populated on the natural-language path when debug is requested.
	Interpretation *interpret.Result
}

// Options are the distinct values offered by the structured search form.
type Options struct {
	JobCategories []string
	BusinessTypes []string
	Locations     []string
}

// Service exposes the natural-language and structured search entry points.
type Service struct {
	engine          *Engine
	interp          Interpreter
	repo            Repository
	fallbackKeyword string
	logger          *zap.Logger
}

// NewService creates a search service.
func NewService(
	engine *Engine, interp Interpreter, repo Repository, fallbackKeyword string, logger *zap.Logger,
) *Service {
	if fallbackKeyword == "" {
		fallbackKeyword = DefaultFallbackKeyword
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:          engine,
		interp:          interp,
		repo:            repo,
		fallbackKeyword: fallbackKeyword,
		logger:          logger,
	}
}

// SearchByNaturalLanguage interprets query and runs the hybrid search.
// A blank query is not searched. On failure the response carries the generic
// message and the error wraps domain.ErrSearchUnavailable.
func (s *Service) SearchByNaturalLanguage(ctx context.Context, query string, debug bool) (Response, error) {
	req, err := request.NewNatural(query, debug)
	if err != nil {
		return Response{}, err
	}
	if !req.HasCriteria() {
		metrics.SearchTotal.WithLabelValues(string(mode.Natural), "skipped").Inc()
		return Response{}, nil
	}

	interp := s.interp.Interpret(ctx, req.Query())

	hits, err := s.engine.Search(ctx, interp.Keyword, interp.Filters)
	if err != nil {
		return s.fail(req.Mode(), err)
	}

	resp := s.succeed(req.Mode(), hits)
	if req.Debug() {
		resp.Interpretation = &interp
	}
	return resp, nil
}

// SearchByStructuredFilters runs the hybrid search from form parameters, bypassing
// interpretation. Nothing is searched when no search parameter is present.
func (s *Service) SearchByStructuredFilters(ctx context.Context, params map[string][]string) (Response, error) {
	req, err := request.NewStructured(params)
	if err != nil {
		return Response{}, err
	}
	if m := req.Malformed(); m != nil {
		s.logger.Debug("malformed filter input dropped", zap.Error(m))
	}
	if !req.HasCriteria() {
		metrics.SearchTotal.WithLabelValues(string(mode.Structured), "skipped").Inc()
		return Response{}, nil
	}

	hits, err := s.engine.Search(ctx, req.RankingKeyword(s.fallbackKeyword), req.Filters())
	if err != nil {
		return s.fail(req.Mode(), err)
	}
	return s.succeed(req.Mode(), hits), nil
}

// Options returns the sorted distinct values for the structured search form.
func (s *Service) Options(ctx context.Context) (Options, error) {
	var (
		opts Options
		err  error
	)
	if opts.JobCategories, err = s.distinct(ctx, job.FieldJobCategory); err != nil {
		return Options{}, err
	}
	if opts.BusinessTypes, err = s.distinct(ctx, job.FieldBusinessType); err != nil {
		return Options{}, err
	}
	if opts.Locations, err = s.distinct(ctx, job.FieldLocation); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func (s *Service) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := s.repo.ListDistinct(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("list distinct %s: %w", field, err)
	}
	out := append([]string{}, values...)
	sort.Strings(out)
	return out, nil
}

func (s *Service) succeed(m mode.Mode, hits []result.Hit) Response {
	outcome := "ok"
	if len(hits) == 0 {
		outcome = "empty"
	}
	metrics.SearchTotal.WithLabelValues(string(m), outcome).Inc()
	metrics.SearchResults.Observe(float64(len(hits)))
	return Response{Performed: true, Hits: hits}
}

func (s *Service) fail(m mode.Mode, err error) (Response, error) {
	metrics.SearchTotal.WithLabelValues(string(m), "error").Inc()
	s.logger.Error("search failed", zap.String("path", string(m)), zap.Error(err))

	if !errors.Is(err, domain.ErrSearchUnavailable) {
		err = fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}
	return Response{
		Performed: true,
		Hits:      []result.Hit{},
		Message:   domain.SearchFailureMessage,
	}, err
}
