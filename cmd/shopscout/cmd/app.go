package cmd

import (
	"fmt"
	"log/slog"

	"github.com/vbelous/shopscout/internal/answer"
	"github.com/vbelous/shopscout/internal/config"
	"github.com/vbelous/shopscout/internal/embed"
	"github.com/vbelous/shopscout/internal/fetch"
	"github.com/vbelous/shopscout/internal/index"
	"github.com/vbelous/shopscout/internal/llm"
	"github.com/vbelous/shopscout/internal/pipeline"
	"github.com/vbelous/shopscout/internal/retrieve"
	"github.com/vbelous/shopscout/internal/store"
)

// newPageFetcher builds the page-fetch stack: the rendering proxy when one
// is configured, a direct client otherwise, optionally wrapped with the
// local HTML snapshot cache.
func newPageFetcher(cfg config.Config) (fetch.PageFetcher, error) {
	var client fetch.PageFetcher
	if cfg.Fetch.ProxyURL != "" {
		proxy, err := fetch.NewProxyClient(fetch.ProxyConfig{
			APIURL:  cfg.Fetch.ProxyURL,
			APIKey:  cfg.Fetch.ProxyAPIKey,
			Timeout: cfg.Fetch.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy client: %w", err)
		}
		client = proxy
		slog.Debug("fetching through rendering proxy", "url", cfg.Fetch.ProxyURL)
	} else {
		client = fetch.NewClient(fetch.ClientConfig{
			Timeout:   cfg.Fetch.Timeout,
			UserAgent: cfg.Fetch.UserAgent,
		})
	}

	if cfg.Fetch.SnapshotDir != "" && cfg.Fetch.UseSnapshots {
		client = fetch.NewSnapshotCache(client, cfg.Fetch.SnapshotDir, true)
	}
	return client, nil
}

// newStore opens the record store.
func newStore(cfg config.Config) (*store.RecordStore, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return st, nil
}

// newChatClient builds the answer-generation client.
func newChatClient(cfg config.Config) (*llm.Client, error) {
	chat, err := llm.New(llm.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.ChatModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return chat, nil
}

// newPipeline assembles the full pipeline. The caller must Close the
// returned store.
func newPipeline(cfg config.Config) (*pipeline.Pipeline, *store.RecordStore, error) {
	client, err := newPageFetcher(cfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embed.New(embed.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.EmbeddingModel,
	})
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	chat, err := newChatClient(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	fetcher := fetch.NewFetcher(
		client,
		fetch.NewHostLimiter(cfg.Fetch.HostRPS, cfg.Fetch.HostBurst),
		fetch.WithBackoffBase(cfg.Fetch.BackoffBase),
	)
	indexer := index.NewIndexer(embedder, cfg.Index.ChunkSize, cfg.Index.ChunkOverlap)
	retriever := retrieve.New(embedder, indexer, st)
	synthesizer := answer.New(chat)

	p := pipeline.New(cfg, fetcher, st, indexer, retriever, synthesizer)

	// A stale or foreign snapshot is not fatal; commands that need the
	// index report it properly.
	if err := p.RestoreIndex(); err != nil {
		slog.Warn("could not restore index snapshot", "error", err)
	}

	return p, st, nil
}
