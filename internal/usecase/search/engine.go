package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jobdex/internal/domain"
	"github.com/kailas-cloud/jobdex/internal/domain/search/filter"
	"github.com/kailas-cloud/jobdex/internal/domain/search/result"
)

// Engine is the hybrid retrieval pipeline: embed the keyword, filter, rank, truncate.
type Engine struct {
	repo         Repository
	embed        Embedder
	defaultLimit int
	maxLimit     int
}

// NewEngine creates a hybrid retrieval engine.
func NewEngine(repo Repository, embed Embedder, defaultLimit, maxLimit int) *Engine {
	return &Engine{repo: repo, embed: embed, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Search returns postings matching every filter, closest to keyword first.
// Any embedding or store failure yields ErrSearchUnavailable and no partial results.
func (e *Engine) Search(ctx context.Context, keyword string, f filter.Filters) ([]result.Hit, error) {
	emb, err := e.embed.Embed(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrSearchUnavailable, err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	hits, err := e.repo.FilterAndRank(ctx, f.Conditions(), emb.Embedding, f.LimitOr(e.defaultLimit, e.maxLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: filter and rank: %w", domain.ErrSearchUnavailable, err)
	}
	if hits == nil {
		hits = []result.Hit{}
	}
	return hits, nil
}
