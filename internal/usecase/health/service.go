package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing. Search still answers.
	Degraded Status = "degraded"
	// Unhealthy indicates the posting store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase    = "database"
	ComponentCache       = "cache"
	ComponentEmbedding   = "embedding"
	ComponentInterpreter = "interpreter"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Deps lists the components to probe. Only DB is required.
type Deps struct {
	DB          Pinger
	Cache       Pinger
	Embedding   EmbeddingChecker
	Interpreter BreakerProbe
	// Timeout bounds each probe. Zero means 2s.
	Timeout time.Duration
}

// Service coordinates health checks.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultCheckTimeout
	}
	return &Service{deps: deps}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentDatabase] = s.probe(ctx, s.deps.DB.Ping)
	if s.deps.Cache != nil {
		checks[ComponentCache] = s.probe(ctx, s.deps.Cache.Ping)
	}
	if s.deps.Embedding != nil {
		checks[ComponentEmbedding] = s.probe(ctx, s.deps.Embedding.HealthCheck)
	}
	if s.deps.Interpreter != nil {
		checks[ComponentInterpreter] = CheckOK
		if s.deps.Interpreter.Open() {
			checks[ComponentInterpreter] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
