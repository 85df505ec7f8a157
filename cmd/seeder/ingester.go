// Worker pool для параллельной загрузки вакансий.
// corpus → channel(Posting) → N workers → Save → store.
package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	jobdex "github.com/kailas-cloud/jobdex/pkg/sdk"
)

type saver interface {
	Save(ctx context.Context, p jobdex.Posting) (jobdex.Posting, bool, error)
}

// ingester: worker pool для upsert.
type ingester struct {
	client  saver
	workers int
	logger  *zap.Logger
}

// ingestResult: итоги загрузки.
type ingestResult struct {
	Created  int64
	Updated  int64
	Failed   int64
	Duration time.Duration
}

// Run сохраняет все вакансии; ошибки отдельных вакансий не прерывают загрузку.
func (ing *ingester) Run(ctx context.Context, postings []jobdex.Posting) ingestResult {
	workers := ing.workers
	if workers <= 0 {
		workers = 1
	}

	items := make(chan jobdex.Posting, workers*2)
	var wg sync.WaitGroup
	var created, updated, failed atomic.Int64

	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for p := range items {
				saved, isNew, err := ing.client.Save(ctx, p)
				if err != nil {
					failed.Add(1)
					ing.logger.Warn("save failed",
						zap.Int("worker", workerID),
						zap.String("id", p.ID),
						zap.String("title", p.Title),
						zap.Error(err),
					)
					continue
				}
				if isNew {
					created.Add(1)
				} else {
					updated.Add(1)
				}
				ing.logger.Debug("saved", zap.Int("worker", workerID), zap.String("id", saved.ID))
			}
		}(i)
	}

produce:
	for _, p := range postings {
		select {
		case <-ctx.Done():
			break produce
		case items <- p:
		}
	}
	close(items)
	wg.Wait()

	return ingestResult{
		Created:  created.Load(),
		Updated:  updated.Load(),
		Failed:   failed.Load(),
		Duration: time.Since(start),
	}
}
