package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "product URL with ID token",
			url:  "https://www.example.com/Massage-Gun/dp/B0ABCD1234/ref=sr_1_1",
			want: "B0ABCD1234",
		},
		{
			name: "plain URL falls back to hash",
			url:  "https://www.example.com/some/product",
			want: "", // checked separately below
		},
		{
			name: "empty URL",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecordIDFromURL(tt.url)
			if tt.want != "" && got != tt.want {
				t.Errorf("RecordIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestRecordIDFromURL_HashFallbackIsDeterministic(t *testing.T) {
	url := "https://www.example.com/some/product"

	first := RecordIDFromURL(url)
	second := RecordIDFromURL(url)

	if first == "" {
		t.Fatal("expected non-empty ID for non-empty URL")
	}
	if len(first) != 16 {
		t.Errorf("hash fallback ID length = %d, want 16", len(first))
	}
	if first != second {
		t.Errorf("ID not deterministic: %q vs %q", first, second)
	}
}

func TestRecord_JSONFieldNames(t *testing.T) {
	rating := 4.6
	reviews := 1234
	rec := Record{
		ID:           "B0ABCD1234",
		Title:        "Massage Gun X",
		Brand:        "Acme",
		Price:        &Price{Amount: 89.99, Currency: "USD"},
		Rating:       &rating,
		ReviewCount:  &reviews,
		CategoryPath: []string{"Health", "Massage"},
		ScrapedAt:    time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	jsonStr := string(data)
	for _, field := range []string{`"id"`, `"review_count"`, `"category_path"`, `"scraped_at"`} {
		if !strings.Contains(jsonStr, field) {
			t.Errorf("JSON should contain field %s, got: %s", field, jsonStr)
		}
	}
}

func TestRecord_OptionalFieldsOmitted(t *testing.T) {
	rec := Record{ID: "B0ABCD1234"}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	jsonStr := string(data)
	for _, field := range []string{`"price"`, `"rating"`, `"review_count"`, `"raw_text"`} {
		if strings.Contains(jsonStr, field) {
			t.Errorf("absent field %s should be omitted, got: %s", field, jsonStr)
		}
	}
}
