// seeder загружает вакансии из YAML-файла через jobdex SDK.
//
// Использование:
//
//	seeder -file config/seed/jobs.yaml -workers 4
//
// Хранилище, эмбеддинги и кэш берутся из того же конфига, что и API (ENV=local|dev|prod).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/config"
	logpkg "github.com/kailas-cloud/jobdex/internal/logger"
	jobdex "github.com/kailas-cloud/jobdex/pkg/sdk"
)

func main() {
	file := flag.String("file", "config/seed/jobs.yaml", "YAML corpus of job postings")
	workers := flag.Int("workers", 4, "parallel save workers")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, *file, *workers); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "seeder:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file string, workers int) error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	postings, err := loadCorpus(file)
	if err != nil {
		return err
	}

	client, err := jobdex.New(ctx, clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	logger.Info("Seeding postings",
		zap.String("file", file),
		zap.Int("postings", len(postings)),
		zap.Int("workers", workers),
		zap.String("db_driver", cfg.Database.Driver),
	)

	res := (&ingester{client: client, workers: workers, logger: logger}).Run(ctx, postings)

	logger.Info("Seeding finished",
		zap.Int64("created", res.Created),
		zap.Int64("updated", res.Updated),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d postings failed", res.Failed, len(postings))
	}
	return nil
}

func clientOptions(cfg config.Config, logger *zap.Logger) []jobdex.Option {
	opts := []jobdex.Option{
		jobdex.WithOpenAI(cfg.Embedding.APIKey, cfg.Embedding.BaseURL),
		jobdex.WithEmbeddingModel(cfg.Embedding.Model, cfg.Embedding.Dimensions),
		jobdex.WithTemplate(cfg.Embedding.Template),
		jobdex.WithChatModel(cfg.Interpreter.Model),
		jobdex.WithChatTemperature(cfg.Interpreter.SamplingTemperature()),
		jobdex.WithTimeouts(
			time.Duration(cfg.Embedding.TimeoutSec)*time.Second,
			time.Duration(cfg.Interpreter.TimeoutSec)*time.Second,
		),
		jobdex.WithLogger(logger),
	}
	if cfg.Database.Driver == config.DriverMemory {
		opts = append(opts, jobdex.WithMemory())
	} else {
		opts = append(opts, jobdex.WithPostgres(cfg.Database.DSN), jobdex.WithTable(cfg.Database.Table))
	}
	if cfg.Cache.Enabled && len(cfg.Cache.Addrs) > 0 {
		opts = append(opts, jobdex.WithValkeyCache(
			cfg.Cache.Addrs[0], cfg.Cache.Password, time.Duration(cfg.Cache.TTLSec)*time.Second,
		))
	}
	return opts
}
