package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbelous/shopscout/internal/embed"
	"github.com/vbelous/shopscout/pkg/models"
)

// BuildSummary reports what a build did. Embedding failures never abort a
// build; they only show up here as skipped records.
type BuildSummary struct {
	Records  int           // records considered
	Indexed  int           // records embedded in this build
	Reused   int           // records carried over unchanged (incremental only)
	Dropped  int           // records without raw text, excluded before embedding
	Skipped  int           // records lost to embedding failures
	Entries  int           // chunk entries in the published snapshot
	Duration time.Duration
}

// Indexer converts records into embedded chunks and publishes index
// snapshots. Only one build runs at a time; readers keep using the previous
// snapshot until the new one is swapped in.
type Indexer struct {
	embedder     embed.Embedder
	chunkSize    int
	chunkOverlap int

	buildMu sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewIndexer creates an Indexer with the given chunking parameters.
func NewIndexer(embedder embed.Embedder, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Snapshot returns the currently published snapshot, or nil before any
// build.
func (ix *Indexer) Snapshot() *Snapshot {
	return ix.current.Load()
}

// Restore publishes a previously saved snapshot. It fails when the snapshot
// was built in a different embedding space than the configured embedder.
func (ix *Indexer) Restore(snap *Snapshot) error {
	if snap.Model != ix.embedder.ModelInfo() {
		return fmt.Errorf("snapshot embedding space %q does not match configured model %q",
			snap.Model, ix.embedder.ModelInfo())
	}
	ix.current.Store(snap)
	return nil
}

// BuildFull discards any prior index and embeds every record from scratch.
func (ix *Indexer) BuildFull(ctx context.Context, records []models.Record) (*BuildSummary, error) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	return ix.build(ctx, records, nil)
}

// BuildIncremental re-embeds only records whose raw text changed since the
// prior snapshot; unchanged entries are carried over and entries for absent
// records are dropped.
func (ix *Indexer) BuildIncremental(ctx context.Context, records []models.Record) (*BuildSummary, error) {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	prior := ix.current.Load()
	if prior != nil && prior.Model != ix.embedder.ModelInfo() {
		return nil, fmt.Errorf("prior snapshot embedding space %q does not match configured model %q; run a full rebuild",
			prior.Model, ix.embedder.ModelInfo())
	}
	return ix.build(ctx, records, prior)
}

func (ix *Indexer) build(ctx context.Context, records []models.Record, prior *Snapshot) (*BuildSummary, error) {
	start := time.Now()
	summary := &BuildSummary{Records: len(records)}

	next := &Snapshot{
		Hashes:    make(map[string]string),
		Ordinals:  make(map[string]int),
		Model:     ix.embedder.ModelInfo(),
		Dimension: ix.embedder.Dimension(),
		BuiltAt:   start,
	}

	priorEntries := make(map[string][]Entry)
	if prior != nil {
		for _, entry := range prior.Entries {
			priorEntries[entry.RecordID] = append(priorEntries[entry.RecordID], entry)
		}
	}

	for i, rec := range records {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Empty embeddings are invalid, so textless records never reach
		// the index.
		if rec.RawText == "" {
			summary.Dropped++
			continue
		}

		hash := contentHash(rec.RawText)

		if prior != nil && prior.Hashes[rec.ID] == hash {
			next.Entries = append(next.Entries, priorEntries[rec.ID]...)
			next.Hashes[rec.ID] = hash
			next.Ordinals[rec.ID] = i
			summary.Reused++
			continue
		}

		entries, err := ix.embedRecord(ctx, rec)
		if err != nil {
			slog.Warn("skipping record after embedding failure", "id", rec.ID, "error", err)
			summary.Skipped++
			continue
		}

		next.Entries = append(next.Entries, entries...)
		next.Hashes[rec.ID] = hash
		next.Ordinals[rec.ID] = i
		summary.Indexed++
	}

	next.Dimension = ix.embedder.Dimension()
	summary.Entries = len(next.Entries)
	summary.Duration = time.Since(start)

	// Single atomic publish: readers see the old snapshot in full until
	// this point, then the new one in full.
	ix.current.Store(next)

	slog.Info("index build complete",
		"records", summary.Records,
		"indexed", summary.Indexed,
		"reused", summary.Reused,
		"dropped", summary.Dropped,
		"skipped", summary.Skipped,
		"entries", summary.Entries,
		"duration", summary.Duration)

	return summary, nil
}

func (ix *Indexer) embedRecord(ctx context.Context, rec models.Record) ([]Entry, error) {
	chunks := ChunkText(rec.RawText, ix.chunkSize, ix.chunkOverlap)

	entries := make([]Entry, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk: %w", err)
		}
		entries = append(entries, Entry{
			RecordID:  rec.ID,
			ChunkText: chunk,
			Embedding: vector,
		})
	}
	return entries, nil
}
