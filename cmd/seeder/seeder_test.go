package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jobdex/internal/config"
	jobdex "github.com/kailas-cloud/jobdex/pkg/sdk"
)

const sample = `
jobs:
  - id: job-1
    title: Railsエンジニア
    description: 自社サービスの開発
    job_category: IT・エンジニア職
    location: 東京都
    min_salary: 600
  - title: 保育士
    description: 認可保育園での保育業務
`

func TestParseCorpus(t *testing.T) {
	postings, err := parseCorpus(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parseCorpus: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if p := postings[0]; p.ID != "job-1" || p.MinSalary == nil || *p.MinSalary != 600 {
		t.Errorf("unexpected first posting: %+v", p)
	}
	if p := postings[1]; p.ID != "" || p.MinSalary != nil || p.Location != "" {
		t.Errorf("unexpected second posting: %+v", p)
	}
}

func TestParseCorpus_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field": "jobs:\n  - title: t\n    salary: 5\n",
		"duplicate id":  "jobs:\n  - id: a\n    title: t\n  - id: a\n    title: u\n",
	} {
		if _, err := parseCorpus(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadCorpus_SeedFile(t *testing.T) {
	postings, err := loadCorpus("../../config/seed/jobs.yaml")
	if err != nil {
		t.Fatalf("loadCorpus: %v", err)
	}
	if len(postings) == 0 {
		t.Fatal("seed corpus is empty")
	}
	for _, p := range postings {
		if p.Title == "" || p.Description == "" {
			t.Errorf("posting %q lacks title or description", p.ID)
		}
	}
}

type fakeSaver struct {
	mu    sync.Mutex
	saved map[string]int
}

func (f *fakeSaver) Save(_ context.Context, p jobdex.Posting) (jobdex.Posting, bool, error) {
	if p.Title == "" {
		return jobdex.Posting{}, false, errors.New("title is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[p.ID]++
	return p, f.saved[p.ID] == 1, nil
}

func TestIngester_Run(t *testing.T) {
	s := &fakeSaver{saved: map[string]int{}}
	ing := &ingester{client: s, workers: 3, logger: zap.NewNop()}

	res := ing.Run(context.Background(), []jobdex.Posting{
		{ID: "a", Title: "t"},
		{ID: "b", Title: "t"},
		{ID: "a", Title: "t2"},
		{ID: "c"},
	})

	if res.Created != 2 || res.Updated != 1 || res.Failed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestIngester_Cancelled(t *testing.T) {
	s := &fakeSaver{saved: map[string]int{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := (&ingester{client: s, workers: 1, logger: zap.NewNop()}).Run(ctx, make([]jobdex.Posting, 100))
	if total := res.Created + res.Updated + res.Failed; total >= 100 {
		t.Errorf("cancelled run must stop early, processed %d", total)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := config.Config{}
	cfg.Database.Driver = config.DriverMemory
	cfg.Cache.Enabled = true
	cfg.Cache.Addrs = []string{"localhost:6379"}

	if got := len(clientOptions(cfg, zap.NewNop())); got != 9 {
		t.Errorf("memory+cache options = %d, want 9", got)
	}

	cfg.Database.Driver = config.DriverPostgres
	cfg.Cache.Enabled = false
	if got := len(clientOptions(cfg, zap.NewNop())); got != 9 {
		t.Errorf("postgres options = %d, want 9", got)
	}
}
