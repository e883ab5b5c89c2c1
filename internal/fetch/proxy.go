package fetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ProxyConfig holds scraping-proxy client configuration.
type ProxyConfig struct {
	APIURL  string // proxy extraction endpoint
	APIKey  string
	Timeout time.Duration
}

// ProxyClient fetches pages through a browser-rendering scraping proxy.
// It implements PageFetcher.
type ProxyClient struct {
	httpClient *http.Client
	apiURL     string
	auth       string
}

// NewProxyClient creates a proxy-backed page fetcher.
func NewProxyClient(config ProxyConfig) (*ProxyClient, error) {
	if config.APIURL == "" {
		return nil, fmt.Errorf("proxy API URL is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("proxy API key is required")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	auth := base64.StdEncoding.EncodeToString([]byte(config.APIKey + ":"))

	return &ProxyClient{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     config.APIURL,
		auth:       auth,
	}, nil
}

// proxyRequest is the request payload for the proxy extraction API.
type proxyRequest struct {
	URL         string `json:"url"`
	BrowserHTML bool   `json:"browserHtml"`
}

// proxyResponse is the response from the proxy extraction API.
type proxyResponse struct {
	BrowserHTML string `json:"browserHtml"`
	StatusCode  int    `json:"statusCode"`
}

// FetchPage requests a browser-rendered copy of pageURL from the proxy.
func (c *ProxyClient) FetchPage(ctx context.Context, pageURL string) (*RawDocument, error) {
	body, err := json.Marshal(proxyRequest{URL: pageURL, BrowserHTML: true})
	if err != nil {
		return nil, permanentError(pageURL, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, permanentError(pageURL, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Basic "+c.auth)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(pageURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(pageURL, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(pageURL, resp.StatusCode)
	}

	var proxyResp proxyResponse
	if err := json.Unmarshal(respBody, &proxyResp); err != nil {
		return nil, transportError(pageURL, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	if proxyResp.BrowserHTML == "" {
		return nil, transportError(pageURL, errors.New("no HTML content returned from proxy"))
	}

	return &RawDocument{
		URL:       pageURL,
		Status:    http.StatusOK,
		Body:      proxyResp.BrowserHTML,
		FetchedAt: time.Now(),
	}, nil
}
