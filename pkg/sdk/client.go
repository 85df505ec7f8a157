package jobdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/db/postgres"
	dbValkey "github.com/kailas-cloud/jobdex/internal/db/valkey"
	"github.com/kailas-cloud/jobdex/internal/domain"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	"github.com/kailas-cloud/jobdex/internal/metrics"
	"github.com/kailas-cloud/jobdex/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/jobdex/internal/repository/job"
	"github.com/kailas-cloud/jobdex/internal/repository/memory"
	openaiTransport "github.com/kailas-cloud/jobdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/jobdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jobdex/internal/usecase/health"
	"github.com/kailas-cloud/jobdex/internal/usecase/interpret"
	jobuc "github.com/kailas-cloud/jobdex/internal/usecase/job"
	searchuc "github.com/kailas-cloud/jobdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultMaxLimit         = 100
	defaultTemperature      = 0.3
	defaultCallTimeout      = 15 * time.Second
)

// Внутренние интерфейсы для подмены в тестах.
type jobUseCase interface {
	Save(ctx context.Context, id string, attrs domjob.Attributes) (domjob.Job, bool, error)
	Reembed(ctx context.Context, id string) (domjob.Job, error)
	Get(ctx context.Context, id string) (domjob.Job, error)
	List(ctx context.Context) ([]domjob.Job, error)
}

type searchUseCase interface {
	SearchByNaturalLanguage(ctx context.Context, query string, debug bool) (searchuc.Response, error)
	SearchByStructuredFilters(ctx context.Context, params map[string][]string) (searchuc.Response, error)
	Options(ctx context.Context) (searchuc.Options, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type postingStore interface {
	jobuc.Repository
	searchuc.Repository
	Ping(ctx context.Context) error
}

// Client is the jobdex SDK entry point.
type Client struct {
	jobSvc    jobUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	closers   []func()
	obs       *observer
}

// New creates a jobdex Client and connects to its stores.
// The provided context is used for readiness checks and schema creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimensions:   domain.DefaultDimensions,
		maxLimit:     defaultMaxLimit,
		temperature:  defaultTemperature,
		embedTimeout: defaultCallTimeout,
		chatTimeout:  defaultCallTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	template, err := domjob.ParseTemplate(cfg.template)
	if err != nil {
		return nil, fmt.Errorf("jobdex: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cache, err := c.openCache(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	embedder := buildEmbedder(cfg, cache)
	interp := interpret.New(buildInterpreter(cfg), store, cfg.logger)
	engine := searchuc.NewEngine(store, embedder, cfg.defaultLimit, cfg.maxLimit)

	c.jobSvc = jobuc.New(store, embedder, template, cfg.dimensions)
	c.searchSvc = searchuc.NewService(engine, interp, store, "", cfg.logger)

	healthDeps := healthuc.Deps{DB: store}
	if cache != nil {
		healthDeps.Cache = cache
	}
	if hc, ok := embedder.(domain.HealthChecker); ok {
		healthDeps.Embedding = hc
	}
	c.healthSvc = healthuc.New(healthDeps)

	return c, nil
}

func (c *Client) openStore(ctx context.Context, cfg *clientConfig) (postingStore, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.New(), nil
	case driverPostgres:
	default:
		return nil, errors.New("jobdex: posting store required (use WithPostgres or WithMemory)")
	}

	client, err := postgres.Open(postgres.Config{DSN: cfg.dsn})
	if err != nil {
		return nil, fmt.Errorf("jobdex: open postgres: %w", err)
	}
	c.closers = append(c.closers, func() { _ = client.Close() })

	if err := client.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		c.Close()
		return nil, fmt.Errorf("jobdex: database not ready: %w", err)
	}
	repo, err := jobrepo.New(client.DB(), cfg.table, cfg.dimensions)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("jobdex: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("jobdex: %w", err)
	}
	return pgStore{Store: repo, Client: client}, nil
}

func (c *Client) openCache(ctx context.Context, cfg *clientConfig) (*dbValkey.Store, error) {
	if len(cfg.cacheAddrs) == 0 {
		return nil, nil
	}
	s, err := dbValkey.NewStore(dbValkey.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
	if err != nil {
		return nil, fmt.Errorf("jobdex: create valkey store: %w", err)
	}
	c.closers = append(c.closers, s.Close)

	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		return nil, fmt.Errorf("jobdex: cache not ready: %w", err)
	}
	return s, nil
}

type pgStore struct {
	*jobrepo.Store
	*postgres.Client
}

// Close releases all resources.
func (c *Client) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Save creates or replaces a posting. An empty ID creates a new posting.
// Returns true if the posting was created.
func (c *Client) Save(ctx context.Context, p Posting) (_ Posting, created bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("save", start, err) }()

	j, created, err := c.jobSvc.Save(ctx, p.ID, p.attributes())
	if err != nil {
		return Posting{}, false, fmt.Errorf("save posting: %w", err)
	}
	return postingFromDomain(&j), created, nil
}

// Reembed recomputes the stored embedding of a posting.
func (c *Client) Reembed(ctx context.Context, id string) (_ Posting, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reembed", start, err) }()

	j, err := c.jobSvc.Reembed(ctx, id)
	if err != nil {
		return Posting{}, fmt.Errorf("reembed posting: %w", err)
	}
	return postingFromDomain(&j), nil
}

// Get returns a posting by ID.
func (c *Client) Get(ctx context.Context, id string) (_ Posting, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	j, err := c.jobSvc.Get(ctx, id)
	if err != nil {
		return Posting{}, fmt.Errorf("get posting: %w", err)
	}
	return postingFromDomain(&j), nil
}

// List returns all postings, newest first.
func (c *Client) List(ctx context.Context) (_ []Posting, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list", start, err) }()

	jobs, err := c.jobSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	out := make([]Posting, len(jobs))
	for i := range jobs {
		out[i] = postingFromDomain(&jobs[i])
	}
	return out, nil
}

// Search interprets a natural-language query and returns the closest matching postings.
func (c *Client) Search(ctx context.Context, query string) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	resp, err := c.searchSvc.SearchByNaturalLanguage(ctx, query, true)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return searchResultFromDomain(resp), nil
}

// SearchAdvanced searches with form parameters (salary, title, job_category,
// business_type, location, keyword, limit). Only the first value of each key is used.
func (c *Client) SearchAdvanced(ctx context.Context, params map[string][]string) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_advanced", start, err) }()

	resp, err := c.searchSvc.SearchByStructuredFilters(ctx, params)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search advanced: %w", err)
	}
	return searchResultFromDomain(resp), nil
}

// Options returns the sorted distinct attribute values for a search form.
func (c *Client) Options(ctx context.Context) (_ FormOptions, err error) {
	start := time.Now()
	defer func() { c.obs.observe("options", start, err) }()

	opts, err := c.searchSvc.Options(ctx)
	if err != nil {
		return FormOptions{}, fmt.Errorf("options: %w", err)
	}
	return FormOptions{
		JobCategories: opts.JobCategories,
		BusinessTypes: opts.BusinessTypes,
		Locations:     opts.Locations,
	}, nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented.
func buildEmbedder(cfg *clientConfig, cache *dbValkey.Store) domain.Embedder {
	var (
		base  domain.Embedder
		model = cfg.embeddingModel
	)
	switch {
	case cfg.embedder != nil:
		base = &embedderAdapter{inner: cfg.embedder}
	case cfg.apiKey != "":
		e := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.apiKey,
			BaseURL:    cfg.baseURL,
			Model:      cfg.embeddingModel,
			Dimensions: cfg.dimensions,
			Timeout:    cfg.embedTimeout,
			Provider:   "openai",
			Logger:     cfg.logger,
		})
		base, model = e, e.Model()
	default:
		base = noopEmbedder{}
	}

	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Config{Model: model, TTL: cfg.cacheTTL},
			metrics.EmbeddingCacheTotal, cfg.logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, "sdk", model, cfg.dimensions, cfg.logger)
}

func buildInterpreter(cfg *clientConfig) interpret.TextInterpreter {
	switch {
	case cfg.interpreter != nil:
		return cfg.interpreter
	case cfg.apiKey != "":
		return openaiTransport.NewInterpreter(&openaiTransport.InterpreterConfig{
			APIKey:      cfg.apiKey,
			BaseURL:     cfg.baseURL,
			Model:       cfg.chatModel,
			Temperature: cfg.temperature,
			Timeout:     cfg.chatTimeout,
			Logger:      cfg.logger,
		})
	}
	return noopInterpreter{}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"jobdex: embedder not configured (use WithOpenAI or WithEmbedder): %w", domain.ErrEmbeddingService,
	)
}

// noopInterpreter makes every natural-language search keyword-only.
type noopInterpreter struct{}

func (noopInterpreter) Complete(context.Context, string, string) (string, error) {
	return "", fmt.Errorf("jobdex: interpreter not configured: %w", domain.ErrInterpreterService)
}
