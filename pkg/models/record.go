// Package models defines the canonical record types shared across the
// ingestion and retrieval pipeline.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"time"
)

// Price is a normalized monetary value extracted from a raw price string.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Record represents one product discovered for a keyword. All fields except
// ID are optional: scraped pages are routinely incomplete, and an absent
// field is not an error.
type Record struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Price        *Price    `json:"price,omitempty"`
	Rating       *float64  `json:"rating,omitempty"`
	ReviewCount  *int      `json:"review_count,omitempty"`
	CategoryPath []string  `json:"category_path,omitempty"`
	Features     []string  `json:"features,omitempty"`
	Dimensions   string    `json:"dimensions,omitempty"`
	Weight       string    `json:"weight,omitempty"`
	URL          string    `json:"url,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	RawText      string    `json:"raw_text,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// RetrievedRecord pairs a record with its relevance score from one
// retrieval call. Scores are only comparable within that call.
type RetrievedRecord struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}

// Citation identifies a record the synthesizer grounded part of an answer in.
type Citation struct {
	RecordID string  `json:"record_id"`
	Score    float64 `json:"score"`
}

// Answer is a synthesized response with the citations detected in it.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
}

var productIDPattern = regexp.MustCompile(`/dp/([A-Z0-9]{10})`)

// RecordIDFromURL extracts the stable product identifier from a product URL.
// Falls back to a hash of the URL when the URL carries no identifier token,
// so the ID stays deterministic for dedup either way.
func RecordIDFromURL(url string) string {
	if m := productIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if url == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
