// Package index builds and publishes immutable vector index snapshots over
// canonical records.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one embedded chunk. RecordID is a back-reference: many entries
// may point at one record.
type Entry struct {
	RecordID  string    `json:"record_id"`
	ChunkText string    `json:"chunk_text"`
	Embedding []float32 `json:"embedding"`
}

// Snapshot is an immutable view of the vector index. Builds produce a new
// Snapshot and publish it with a single pointer swap; readers never see a
// partial mix of two builds.
type Snapshot struct {
	Entries   []Entry           `json:"entries"`
	Hashes    map[string]string `json:"hashes"`   // record id -> raw text content hash
	Ordinals  map[string]int    `json:"ordinals"` // record id -> insertion ordinal
	Model     string            `json:"model"`    // embedding space identity
	Dimension int               `json:"dimension"`
	BuiltAt   time.Time         `json:"built_at"`
}

// Empty reports whether the snapshot holds no entries.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Entries) == 0
}

// Save writes the snapshot as JSON to path.
func (s *Snapshot) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot previously written by Save.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// contentHash fingerprints a record's raw text for incremental builds.
func contentHash(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
