package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// SnapshotCache wraps a PageFetcher with a local HTML snapshot directory.
// Fetched pages are written to disk; when replay is enabled, cached pages
// are served without hitting the upstream at all. Useful for reworking
// extraction rules against previously captured pages.
type SnapshotCache struct {
	inner  PageFetcher
	dir    string
	replay bool
}

// NewSnapshotCache creates a snapshot cache over inner writing to dir.
func NewSnapshotCache(inner PageFetcher, dir string, replay bool) *SnapshotCache {
	return &SnapshotCache{inner: inner, dir: dir, replay: replay}
}

// FetchPage serves pageURL from the snapshot directory when replaying, and
// records fetched pages otherwise. A replay miss falls through to the inner
// fetcher.
func (c *SnapshotCache) FetchPage(ctx context.Context, pageURL string) (*RawDocument, error) {
	path := c.snapshotPath(pageURL)

	if c.replay {
		body, err := os.ReadFile(path)
		if err == nil {
			slog.Debug("serving page from snapshot", "url", pageURL, "path", path)
			return &RawDocument{
				URL:       pageURL,
				Status:    http.StatusOK,
				Body:      string(body),
				FetchedAt: time.Now(),
			}, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to read snapshot", "path", path, "error", err)
		}
	}

	doc, err := c.inner.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(c.dir, 0o755); err == nil {
		if err := os.WriteFile(path, []byte(doc.Body), 0o644); err != nil {
			slog.Warn("failed to write snapshot", "path", path, "error", err)
		}
	}

	return doc, nil
}

func (c *SnapshotCache) snapshotPath(pageURL string) string {
	hash := sha256.Sum256([]byte(pageURL))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])[:16]+".html")
}
