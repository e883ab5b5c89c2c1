// Package pipeline wires fetching, normalization, storage, indexing,
// retrieval, and answer synthesis into the keyword-to-answer flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"

	"github.com/vbelous/shopscout/internal/answer"
	"github.com/vbelous/shopscout/internal/config"
	"github.com/vbelous/shopscout/internal/fetch"
	"github.com/vbelous/shopscout/internal/index"
	"github.com/vbelous/shopscout/internal/normalize"
	"github.com/vbelous/shopscout/internal/retrieve"
	"github.com/vbelous/shopscout/internal/store"
	"github.com/vbelous/shopscout/pkg/models"
)

// IngestSummary reports per-page outcomes of a keyword ingestion run.
// Ingestion is partial-success: one failing page never aborts the run.
type IngestSummary struct {
	Keyword  string   `json:"keyword"`
	Found    int      `json:"found"`
	Fetched  int      `json:"fetched"`
	Inserted int      `json:"inserted"`
	Replaced int      `json:"replaced"`
	Failures []string `json:"failures,omitempty"`
}

// Pipeline coordinates the full scraping and question-answering flow.
type Pipeline struct {
	cfg         config.Config
	fetcher     *fetch.Fetcher
	store       *store.RecordStore
	indexer     *index.Indexer
	retriever   *retrieve.Retriever
	synthesizer *answer.Synthesizer
}

// New assembles a Pipeline from already-constructed components.
func New(cfg config.Config, fetcher *fetch.Fetcher, st *store.RecordStore, ix *index.Indexer, rt *retrieve.Retriever, syn *answer.Synthesizer) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		fetcher:     fetcher,
		store:       st,
		indexer:     ix,
		retriever:   rt,
		synthesizer: syn,
	}
}

// Ingest searches for the keyword, fetches up to n product pages with a
// bounded worker pool, normalizes them, and upserts the records. Pages
// that fail to fetch or normalize are reported in the summary and do not
// abort the run.
func (p *Pipeline) Ingest(ctx context.Context, keyword string, n int) (*IngestSummary, error) {
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	if n < 1 {
		n = p.cfg.Ingest.DefaultN
	}

	searchURL := p.cfg.Fetch.SearchBaseURL + p.cfg.Fetch.SearchPath + url.QueryEscape(keyword)

	slog.Info("searching", "keyword", keyword, "url", searchURL)
	result, err := p.fetcher.Fetch(ctx, searchURL, p.cfg.Fetch.AttemptBudget)
	if err != nil {
		return nil, fmt.Errorf("fetch search page: %w", err)
	}

	productURLs, err := normalize.ExtractSearchResults(result.Document.Body, p.cfg.Fetch.SearchBaseURL, n)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	summary := &IngestSummary{Keyword: keyword, Found: len(productURLs)}
	if len(productURLs) == 0 {
		slog.Warn("no products found", "keyword", keyword)
		return summary, nil
	}

	workers := p.cfg.Ingest.Workers
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]pageOutcome, len(productURLs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, pageURL := range productURLs {
		wg.Add(1)
		go func(pos int, pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[pos] = p.ingestPage(ctx, pos, pageURL)
		}(i, pageURL)
	}
	wg.Wait()

	// Outcomes are indexed by search-result position, so upserts happen in
	// result order and first-seen ordering of new records is deterministic
	// regardless of worker scheduling.
	for _, out := range outcomes {
		if out.fetched {
			summary.Fetched++
		}
		if out.failure != "" {
			summary.Failures = append(summary.Failures, out.failure)
			continue
		}
		inserted, err := p.store.Upsert(ctx, out.record)
		if err != nil {
			summary.Failures = append(summary.Failures, fmt.Sprintf("%s: store: %v", out.record.URL, err))
			continue
		}
		if inserted {
			summary.Inserted++
		} else {
			summary.Replaced++
		}
	}

	slog.Info("ingestion complete",
		"keyword", keyword,
		"found", summary.Found,
		"fetched", summary.Fetched,
		"inserted", summary.Inserted,
		"replaced", summary.Replaced,
		"failures", len(summary.Failures))

	return summary, nil
}

type pageOutcome struct {
	pos     int
	record  models.Record
	fetched bool
	failure string
}

func (p *Pipeline) ingestPage(ctx context.Context, pos int, pageURL string) (out pageOutcome) {
	out.pos = pos

	result, err := p.fetcher.Fetch(ctx, pageURL, p.cfg.Fetch.AttemptBudget)
	if err != nil {
		slog.Warn("page fetch failed", "url", pageURL, "error", err)
		out.failure = fmt.Sprintf("%s: fetch: %v", pageURL, err)
		return out
	}
	out.fetched = true

	rec, err := normalize.Normalize(result.Document)
	if err != nil {
		slog.Warn("page normalization failed", "url", pageURL, "error", err)
		out.failure = fmt.Sprintf("%s: normalize: %v", pageURL, err)
		return out
	}
	out.record = rec
	return out
}

// Reindex rebuilds the vector index from the record store and saves the
// resulting snapshot. With full set, every record is re-embedded; otherwise
// only records whose text changed since the last snapshot are.
func (p *Pipeline) Reindex(ctx context.Context, full bool) (*index.BuildSummary, error) {
	records, err := p.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var summary *index.BuildSummary
	if full {
		summary, err = p.indexer.BuildFull(ctx, records)
	} else {
		summary, err = p.indexer.BuildIncremental(ctx, records)
	}
	if err != nil {
		return nil, err
	}

	if path := p.cfg.Index.SnapshotPath; path != "" {
		if err := p.indexer.Snapshot().Save(path); err != nil {
			return nil, fmt.Errorf("save index snapshot: %w", err)
		}
	}
	return summary, nil
}

// RestoreIndex loads a previously saved snapshot into the indexer, if one
// exists. A missing snapshot file is not an error.
func (p *Pipeline) RestoreIndex() error {
	path := p.cfg.Index.SnapshotPath
	if path == "" {
		return nil
	}
	snap, err := index.LoadSnapshot(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return p.indexer.Restore(snap)
}

// Ask retrieves the top k records for the question and synthesizes a cited
// answer from them.
func (p *Pipeline) Ask(ctx context.Context, question string, k int) (models.Answer, []models.RetrievedRecord, error) {
	if k < 1 {
		k = p.cfg.Ingest.DefaultN
	}

	retrieved, err := p.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return models.Answer{}, nil, fmt.Errorf("retrieve: %w", err)
	}

	ans, err := p.synthesizer.Answer(ctx, question, retrieved)
	if err != nil {
		return models.Answer{}, retrieved, err
	}
	return ans, retrieved, nil
}
