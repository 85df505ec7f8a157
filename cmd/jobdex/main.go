package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/config"
	"github.com/kailas-cloud/jobdex/internal/db/postgres"
	dbValkey "github.com/kailas-cloud/jobdex/internal/db/valkey"
	"github.com/kailas-cloud/jobdex/internal/domain"
	domjob "github.com/kailas-cloud/jobdex/internal/domain/job"
	logpkg "github.com/kailas-cloud/jobdex/internal/logger"
	"github.com/kailas-cloud/jobdex/internal/metrics"
	"github.com/kailas-cloud/jobdex/internal/repository/embcache"
	jobrepo "github.com/kailas-cloud/jobdex/internal/repository/job"
	"github.com/kailas-cloud/jobdex/internal/repository/memory"
	"github.com/kailas-cloud/jobdex/internal/resilience"
	chiTransport "github.com/kailas-cloud/jobdex/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/jobdex/internal/transport/openai"
	batchuc "github.com/kailas-cloud/jobdex/internal/usecase/batch"
	embeddinguc "github.com/kailas-cloud/jobdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/jobdex/internal/usecase/health"
	"github.com/kailas-cloud/jobdex/internal/usecase/interpret"
	jobuc "github.com/kailas-cloud/jobdex/internal/usecase/job"
	searchuc "github.com/kailas-cloud/jobdex/internal/usecase/search"
	"github.com/kailas-cloud/jobdex/internal/version"
)

// postingStore is everything the use cases need from a posting backend.
type postingStore interface {
	jobuc.Repository
	searchuc.Repository
	Ping(ctx context.Context) error
}

// pgStore serves postings from the job table and health pings from the pool.
type pgStore struct {
	*jobrepo.Store
	*postgres.Client
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting jobdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx := context.Background()

	store, closeStore, err := openPostingStore(ctx, cfg.Database, cfg.Embedding.Dimensions, logger)
	if err != nil {
		logger.Fatal("Failed to open posting store", zap.Error(err))
	}
	defer closeStore()

	var cache *dbValkey.Store
	if cfg.Cache.Enabled {
		cache, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(cfg.Embedding, cfg.Cache, cache, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	completer := resilience.NewInterpreter("interpreter", openaiTransport.NewInterpreter(&openaiTransport.InterpreterConfig{
		APIKey:      cfg.Interpreter.APIKey,
		BaseURL:     cfg.Interpreter.BaseURL,
		Model:       cfg.Interpreter.Model,
		Temperature: cfg.Interpreter.SamplingTemperature(),
		Timeout:     time.Duration(cfg.Interpreter.TimeoutSec) * time.Second,
		Logger:      logger,
	}), resilience.Config{
		Enabled:          cfg.Interpreter.Breaker.Enabled,
		MinRequests:      cfg.Interpreter.Breaker.MinRequests,
		FailureRatio:     cfg.Interpreter.Breaker.FailureRatio,
		OpenTimeout:      time.Duration(cfg.Interpreter.Breaker.OpenTimeoutSec) * time.Second,
		HalfOpenMaxCalls: cfg.Interpreter.Breaker.HalfOpenMaxCalls,
	}, logger)

	template, err := domjob.ParseTemplate(cfg.Embedding.Template)
	if err != nil {
		logger.Fatal("Invalid embedding template", zap.Error(err))
	}

	// Use case services
	interpreter := interpret.New(completer, store, logger)
	engine := searchuc.NewEngine(store, embedder, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	searchSvc := searchuc.NewService(engine, interpreter, store, cfg.Search.FallbackKeyword, logger)
	jobSvc := jobuc.New(store, embedder, template, cfg.Embedding.Dimensions)

	healthDeps := healthuc.Deps{DB: store}
	if hc, ok := embedder.(domain.HealthChecker); ok {
		healthDeps.Embedding = hc
	}
	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	if cache != nil {
		healthDeps.Cache = cache
	}
	if probe, ok := completer.(healthuc.BreakerProbe); ok {
		healthDeps.Interpreter = probe
	}
	healthSvc := healthuc.New(healthDeps)

	batchSvc := batchuc.New(jobSvc).WithMaxBatchSize(cfg.Jobs.MaxBatchSize)

	server := chiTransport.NewServer(searchSvc, jobSvc, batchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openPostingStore connects the configured backend and prepares its schema.
func openPostingStore(
	ctx context.Context, cfg config.DatabaseConfig, dimensions int, logger *zap.Logger,
) (postingStore, func(), error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("Using in-memory posting store; data is lost on restart")
		return memory.New(), func() {}, nil
	}

	client, err := postgres.Open(postgres.Config{
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeSec) * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	closeFn := func() { _ = client.Close() }

	if err := client.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("postgres not ready: %w", err)
	}
	logger.Info("Connected to database")

	repo, err := jobrepo.New(client.DB(), cfg.Table, dimensions)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("job repository: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}

	return pgStore{Store: repo, Client: client}, closeFn, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	cacheCfg config.CacheConfig,
	cache *dbValkey.Store,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Timeout:    time.Duration(embCfg.TimeoutSec) * time.Second,
		Provider:   embCfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Config{
			Model: base.Model(),
			TTL:   time.Duration(cacheCfg.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, embCfg.Provider, base.Model(), embCfg.Dimensions, logger,
	)
}
