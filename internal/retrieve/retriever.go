// Package retrieve executes top-k similarity search against a published
// index snapshot.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vbelous/shopscout/internal/embed"
	"github.com/vbelous/shopscout/internal/index"
	"github.com/vbelous/shopscout/pkg/models"
)

// ErrEmbeddingSpaceMismatch indicates the query embedder and the index
// snapshot use different embedding functions. Mixing spaces silently
// degrades accuracy, so it fails loudly instead.
var ErrEmbeddingSpaceMismatch = errors.New("query embedding space does not match index")

// SnapshotSource provides the current index snapshot. *index.Indexer
// satisfies it.
type SnapshotSource interface {
	Snapshot() *index.Snapshot
}

// RecordSource resolves record IDs to full records. *store.RecordStore
// satisfies it.
type RecordSource interface {
	Get(ctx context.Context, id string) (models.Record, bool, error)
}

// Retriever embeds queries and ranks records by chunk similarity.
type Retriever struct {
	embedder embed.Embedder
	source   SnapshotSource
	records  RecordSource
}

// New creates a Retriever over the given snapshot and record sources.
func New(embedder embed.Embedder, source SnapshotSource, records RecordSource) *Retriever {
	return &Retriever{embedder: embedder, source: source, records: records}
}

// Retrieve returns the top k distinct records most similar to queryText,
// highest score first. A record scores as its single best-matching chunk;
// ties break by earliest insertion order. An empty index yields an empty
// result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int) ([]models.RetrievedRecord, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be at least 1, got %d", k)
	}

	snap := r.source.Snapshot()
	if snap.Empty() {
		return nil, nil
	}

	if snap.Model != r.embedder.ModelInfo() {
		return nil, fmt.Errorf("%w: index built with %q, query uses %q",
			ErrEmbeddingSpaceMismatch, snap.Model, r.embedder.ModelInfo())
	}

	queryVector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if snap.Dimension != 0 && len(queryVector) != snap.Dimension {
		return nil, fmt.Errorf("%w: index dimension %d, query dimension %d",
			ErrEmbeddingSpaceMismatch, snap.Dimension, len(queryVector))
	}

	// A record is only as relevant as its best chunk.
	best := make(map[string]float64)
	for _, entry := range snap.Entries {
		score := cosineSimilarity(queryVector, entry.Embedding)
		if prev, ok := best[entry.RecordID]; !ok || score > prev {
			best[entry.RecordID] = score
		}
	}

	ids := make([]string, 0, len(best))
	for id := range best {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if best[ids[i]] != best[ids[j]] {
			return best[ids[i]] > best[ids[j]]
		}
		return snap.Ordinals[ids[i]] < snap.Ordinals[ids[j]]
	})

	if len(ids) > k {
		ids = ids[:k]
	}

	results := make([]models.RetrievedRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := r.records.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve record %s: %w", id, err)
		}
		if !ok {
			// Entry outlived its record; rebuild removes these.
			slog.Warn("index entry references missing record", "id", id)
			continue
		}
		results = append(results, models.RetrievedRecord{Record: rec, Score: best[id]})
	}

	slog.Debug("retrieval complete", "query_len", len(queryText), "k", k, "results", len(results))
	return results, nil
}
