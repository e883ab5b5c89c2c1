// Package embed generates fixed-length vectors for text.
package embed

import "context"

// Embedder is the embedding capability used by both indexing and retrieval.
// Index and query embeddings must come from the same embedding space, so the
// model identity is part of the contract.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	ModelInfo() string
}
