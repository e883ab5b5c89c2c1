package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/vbelous/shopscout/pkg/models"
)

// csvColumns is the fixed CSV projection. Optional fields flatten to the
// empty string; a column is never omitted.
var csvColumns = []string{
	"id", "title", "brand", "price_amount", "price_currency",
	"rating", "review_count", "category_path", "features",
	"dimensions", "weight", "url", "image_url",
}

// ExportJSONL writes all records as JSON lines in insertion order.
func (s *RecordStore) ExportJSONL(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record %s: %w", rec.ID, err)
		}
	}
	return nil
}

// ExportCSV writes all records as CSV with the fixed column set, in
// insertion order. List-valued fields are JSON-encoded into their cell.
func (s *RecordStore) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		if err := cw.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(rec models.Record) []string {
	var priceAmount, priceCurrency string
	if rec.Price != nil {
		priceAmount = strconv.FormatFloat(rec.Price.Amount, 'f', -1, 64)
		priceCurrency = rec.Price.Currency
	}

	var rating string
	if rec.Rating != nil {
		rating = strconv.FormatFloat(*rec.Rating, 'f', -1, 64)
	}

	var reviewCount string
	if rec.ReviewCount != nil {
		reviewCount = strconv.Itoa(*rec.ReviewCount)
	}

	return []string{
		rec.ID,
		rec.Title,
		rec.Brand,
		priceAmount,
		priceCurrency,
		rating,
		reviewCount,
		encodeList(rec.CategoryPath),
		encodeList(rec.Features),
		rec.Dimensions,
		rec.Weight,
		rec.URL,
		rec.ImageURL,
	}
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}
