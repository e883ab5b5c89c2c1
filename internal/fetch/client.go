package fetch

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Client is a plain HTTP page fetcher for upstreams reachable without a
// rendering proxy. It implements PageFetcher.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// ClientConfig holds direct fetch configuration.
type ClientConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// NewClient creates a direct page fetcher.
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "shopscout/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		userAgent:  config.UserAgent,
	}
}

// FetchPage issues a single GET for pageURL.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (*RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, permanentError(pageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(pageURL, err)
	}

	return &RawDocument{
		URL:       pageURL,
		Status:    resp.StatusCode,
		Body:      string(body),
		FetchedAt: time.Now(),
	}, nil
}
