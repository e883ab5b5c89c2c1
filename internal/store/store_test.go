package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vbelous/shopscout/pkg/models"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func priceUSD(amount float64) *models.Price {
	return &models.Price{Amount: amount, Currency: "USD"}
}

func TestRecordStore_UpsertInsertThenReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	inserted, err := s.Upsert(ctx, models.Record{ID: "A1", Title: "Gun X", Price: priceUSD(89.99)})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if !inserted {
		t.Error("first Upsert should report insert")
	}

	inserted, err = s.Upsert(ctx, models.Record{ID: "A1", Title: "Gun X", Price: priceUSD(79.99)})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if inserted {
		t.Error("second Upsert should report replace")
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List() length = %d, want 1", len(records))
	}
	if records[0].Price == nil || records[0].Price.Amount != 79.99 {
		t.Errorf("final price = %+v, want later write 79.99", records[0].Price)
	}
}

func TestRecordStore_UpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	rec := models.Record{ID: "A1", Title: "Gun X"}
	for i := 0; i < 3; i++ {
		if _, err := s.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestRecordStore_ListKeepsFirstSeenOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"C3", "A1", "B2"} {
		if _, err := s.Upsert(ctx, models.Record{ID: id, Title: "product " + id}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}
	// Replacing A1 must not move it.
	if _, err := s.Upsert(ctx, models.Record{ID: "A1", Title: "updated"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	var ids []string
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	want := []string{"C3", "A1", "B2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("List order = %v, want %v", ids, want)
		}
	}
}

func TestRecordStore_UpsertRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.Upsert(t.Context(), models.Record{Title: "no id"}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestRecordStore_ConcurrentUpserts(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	var wg sync.WaitGroup
	ids := []string{"A1", "B2", "C3", "D4"}
	for _, id := range ids {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if _, err := s.Upsert(ctx, models.Record{ID: id, Title: "p"}); err != nil {
					t.Errorf("Upsert(%s) error = %v", id, err)
				}
			}(id)
		}
	}
	wg.Wait()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != len(ids) {
		t.Errorf("Count() = %d, want %d", n, len(ids))
	}
}

func TestRecordStore_ExportCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	rating := 4.6
	reviews := 1234
	full := models.Record{
		ID:           "A1",
		Title:        "Gun X",
		Brand:        "Acme",
		Price:        priceUSD(89.99),
		Rating:       &rating,
		ReviewCount:  &reviews,
		CategoryPath: []string{"Health", "Massage"},
	}
	sparse := models.Record{ID: "B2"}

	for _, rec := range []models.Record{full, sparse} {
		if _, err := s.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := s.ExportCSV(ctx, &buf); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse exported CSV: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2 records", len(rows))
	}
	if len(rows[0]) != len(csvColumns) {
		t.Errorf("header has %d columns, want %d", len(rows[0]), len(csvColumns))
	}
	// Every row carries the full column set even when fields are absent.
	for i, row := range rows {
		if len(row) != len(csvColumns) {
			t.Errorf("row %d has %d columns, want %d", i, len(row), len(csvColumns))
		}
	}
	if rows[1][3] != "89.99" {
		t.Errorf("price_amount cell = %q, want 89.99", rows[1][3])
	}
	if !strings.Contains(rows[1][7], "Health") {
		t.Errorf("category_path cell = %q, want JSON-encoded list", rows[1][7])
	}
	if rows[2][1] != "" || rows[2][3] != "" {
		t.Errorf("absent fields should flatten to empty strings, got %v", rows[2])
	}
}

func TestRecordStore_ExportJSONL(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"A1", "B2"} {
		if _, err := s.Upsert(ctx, models.Record{ID: id, Title: "product " + id}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := s.ExportJSONL(ctx, &buf); err != nil {
		t.Fatalf("ExportJSONL() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var rec models.Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if rec.ID != "A1" {
		t.Errorf("first line ID = %q, want A1 (insertion order)", rec.ID)
	}
}

func TestRecordStore_Reset(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	if _, err := s.Upsert(ctx, models.Record{ID: "A1"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() after Reset = %d, want 0", n)
	}
}
