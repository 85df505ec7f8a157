package interpret

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/metrics"
)

// Result is a query interpretation: a non-empty ranking keyword plus normalized filters.
type Result struct {
	Keyword string
	Filters filter.Filters
	// Degraded is true when the reply could not be used and the keyword is the raw query.
	Degraded bool
}

// Service interprets natural-language job search queries.
type Service struct {
	text   TextInterpreter
	vocab  Vocabulary
	logger *zap.Logger
}

// New creates an interpretation service.
func New(text TextInterpreter, vocab Vocabulary, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{text: text, vocab: vocab, logger: logger}
}

// Interpret turns a raw query into keyword and filters. It never fails: any
// service or contract error degrades to {keyword: rawQuery, filters: {}}.
func (s *Service) Interpret(ctx context.Context, rawQuery string) Result {
	instructions := BuildInstructions(
		s.distinct(ctx, job.FieldJobCategory),
		s.distinct(ctx, job.FieldBusinessType),
	)

	reply, err := s.text.Complete(ctx, instructions, rawQuery)
	if err != nil {
		return s.degrade(rawQuery, fmt.Errorf("complete: %w", err))
	}

	keyword, params, err := parseReply(reply)
	if err != nil {
		return s.degrade(rawQuery, fmt.Errorf("parse reply: %w", err))
	}

	if strings.TrimSpace(keyword) == "" {
		keyword = rawQuery
	}

	metrics.InterpretationTotal.WithLabelValues("ok").Inc()
	return Result{Keyword: keyword, Filters: filter.Normalize(params)}
}

func (s *Service) degrade(rawQuery string, cause error) Result {
	metrics.InterpretationTotal.WithLabelValues("degraded").Inc()
	s.logger.Warn("query interpretation degraded",
		zap.Error(fmt.Errorf("%w: %w", domain.ErrInterpretationDegraded, cause)),
		zap.Int("query_len", len([]rune(rawQuery))),
	)
	return Result{Keyword: rawQuery, Filters: filter.Filters{}, Degraded: true}
}

// distinct loads a vocabulary list; failures are logged and yield an empty list.
func (s *Service) distinct(ctx context.Context, field string) []string {
	values, err := s.vocab.ListDistinct(ctx, field)
	if err != nil {
		s.logger.Warn("vocabulary lookup failed", zap.String("field", field), zap.Error(err))
		return nil
	}
	return values
}
