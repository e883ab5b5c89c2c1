// Package store persists canonical records with dedup by ID.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/vbelous/shopscout/pkg/models"
)

// RecordStore is a deduplicated, append-capable record collection backed by
// SQLite. Re-ingesting an ID replaces the prior record but keeps its
// first-seen position, so List order is stable across re-ingestion.
type RecordStore struct {
	db *sql.DB
	mu sync.Mutex // serializes upserts; reads go straight to the db
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq  INTEGER PRIMARY KEY AUTOINCREMENT,
	id   TEXT NOT NULL UNIQUE,
	data TEXT NOT NULL
);`

// Open opens (creating if needed) a record store at path.
func Open(path string) (*RecordStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &RecordStore{db: db}, nil
}

// Upsert stores rec, replacing any existing record with the same ID.
// Returns true when the record was newly inserted, false when it replaced a
// prior one.
func (s *RecordStore) Upsert(ctx context.Context, rec models.Record) (bool, error) {
	if rec.ID == "" {
		return false, fmt.Errorf("record has empty id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM records WHERE id = ?`, rec.ID).Scan(&exists)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO records (id, data) VALUES (?, ?)`, rec.ID, string(data)); err != nil {
			return false, fmt.Errorf("insert record: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("query record: %w", err)
	default:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE records SET data = ? WHERE id = ?`, string(data), rec.ID); err != nil {
			return false, fmt.Errorf("replace record: %w", err)
		}
		return false, nil
	}
}

// Get returns the record with the given ID, or false when absent.
func (s *RecordStore) Get(ctx context.Context, id string) (models.Record, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return models.Record{}, false, nil
	}
	if err != nil {
		return models.Record{}, false, fmt.Errorf("query record: %w", err)
	}

	var rec models.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return models.Record{}, false, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, true, nil
}

// List returns all records in first-seen insertion order.
func (s *RecordStore) List(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM records ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec models.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the number of stored records.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Reset removes all records.
func (s *RecordStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("reset records: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *RecordStore) Close() error {
	return s.db.Close()
}
