// Package fetch retrieves raw pages from upstream hosts with per-host
// politeness and bounded retries.
package fetch

import (
	"context"
	"time"
)

// RawDocument is one fetched page.
type RawDocument struct {
	URL       string
	Status    int
	Body      string
	FetchedAt time.Time
}

// PageFetcher is the abstract fetch capability. Implementations issue a
// single request attempt; retry and rate limiting live in Fetcher.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*RawDocument, error)
}

// Result wraps a fetched document with the number of retries that were
// needed to obtain it.
type Result struct {
	Document *RawDocument
	Retries  int
}
