// Package llm wraps the OpenAI-compatible chat completion capability used
// for answer generation and structured feature extraction.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds chat client configuration. BaseURL may point at any
// OpenAI-compatible provider.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is an OpenAI-compatible chat completion client.
type Client struct {
	client *openai.Client
	model  string
}

// New creates a chat client.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("provider API key is required")
	}
	if config.Model == "" {
		return nil, errors.New("chat model is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
	}, nil
}

// Generate sends a system and user message pair and returns the response
// text.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.3,
		MaxTokens:   1000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ExtractFeatures asks the model for the technical specifications present
// in product text, as a flat JSON object. Fields the model reports as null
// are omitted from the result.
func (c *Client) ExtractFeatures(ctx context.Context, text string) (map[string]string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: FeatureExtractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Product Text: " + text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response returned")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	features := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			if v != "" {
				features[key] = v
			}
		case float64:
			features[key] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
		}
	}
	return features, nil
}
