package embed

import (
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds embedding client configuration. BaseURL may point at any
// OpenAI-compatible provider.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// MaxInputChars bounds a single embedding input to stay inside the model's
// context window.
const MaxInputChars = 20000

// Client is an OpenAI-compatible embedding client.
type Client struct {
	client *openai.Client
	model  string
	dim    int
}

// New creates an embedding client.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("provider API key is required")
	}
	if config.Model == "" {
		return nil, errors.New("embedding model is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
		dim:    dimensions(config.Model),
	}, nil
}

// Embed generates an L2-normalized embedding for text. Input beyond
// MaxInputChars is truncated from the end.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	if len(text) > MaxInputChars {
		text = text[:MaxInputChars]
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}

	v := make([]float32, len(resp.Data[0].Embedding))
	copy(v, resp.Data[0].Embedding)
	l2normalize(v)

	if c.dim == 0 {
		c.dim = len(v)
	}
	return v, nil
}

// EmbedBatch embeds texts with bounded concurrency. A failed text leaves a
// nil vector at its position and does not cancel sibling embeddings; the
// first error is returned alongside the partial result.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, 8)

	for i := range texts {
		sem <- struct{}{}
		go func(idx int) {
			defer func() { <-sem }()
			embeddings[idx], errs[idx] = c.Embed(ctx, texts[idx])
		}(i)
	}
	for range cap(sem) {
		sem <- struct{}{}
	}

	for _, err := range errs {
		if err != nil {
			return embeddings, err
		}
	}
	return embeddings, nil
}

// Dimension returns the embedding vector length.
func (c *Client) Dimension() int { return c.dim }

// ModelInfo identifies the embedding space.
func (c *Client) ModelInfo() string { return "openai-" + c.model }

// dimensions returns the vector length for known models.
func dimensions(model string) int {
	switch model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "text-embedding-v4":
		return 1024
	default:
		return 0 // resolved from the first response
	}
}

// l2normalize scales v to unit length in place.
func l2normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
