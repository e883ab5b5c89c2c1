package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vbelous/shopscout/pkg/models"
)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

var currencyCodePattern = regexp.MustCompile(`\b(USD|EUR|GBP|JPY|INR|CAD|AUD)\b`)

var numberPattern = regexp.MustCompile(`\d[\d.,\s]*`)

var rangeSeparators = []string{" - ", "–", " to "}

// ParsePrice normalizes a raw price string. It tolerates currency symbols
// and codes, thousands separators, decimal commas, and ranges (the lower
// bound of a range is taken). Unparseable input yields nil, not an error.
func ParsePrice(raw string) *models.Price {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	currency := detectCurrency(raw)

	// A range collapses to its lower bound.
	for _, sep := range rangeSeparators {
		if idx := strings.Index(raw, sep); idx > 0 {
			raw = raw[:idx]
			break
		}
	}

	match := numberPattern.FindString(raw)
	if match == "" {
		return nil
	}

	amount, ok := parseAmount(match)
	if !ok {
		return nil
	}

	return &models.Price{Amount: amount, Currency: currency}
}

func detectCurrency(raw string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(raw, symbol) {
			return code
		}
	}
	if m := currencyCodePattern.FindString(raw); m != "" {
		return m
	}
	return ""
}

// parseAmount interprets a numeric token with unknown separator convention.
// When both separators appear, the last one is the decimal separator; a lone
// comma followed by exactly two digits is treated as a decimal comma.
func parseAmount(token string) (float64, bool) {
	token = strings.ReplaceAll(token, " ", "")
	token = strings.TrimRight(token, ".,")

	lastDot := strings.LastIndex(token, ".")
	lastComma := strings.LastIndex(token, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	case lastComma >= 0:
		if len(token)-lastComma-1 == 2 {
			token = strings.Replace(token, ",", ".", 1)
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	}

	amount, err := strconv.ParseFloat(token, 64)
	if err != nil || amount < 0 {
		return 0, false
	}
	return amount, true
}

var ratingPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// parseRating extracts a 0-5 rating from text like "4.6 out of 5 stars".
func parseRating(raw string) *float64 {
	match := ratingPattern.FindString(raw)
	if match == "" {
		return nil
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil || rating < 0 || rating > 5 {
		return nil
	}
	return &rating
}

var digitsPattern = regexp.MustCompile(`[\d,]+`)

// parseReviewCount extracts a non-negative count from text like
// "1,234 ratings".
func parseReviewCount(raw string) *int {
	match := digitsPattern.FindString(raw)
	if match == "" {
		return nil
	}
	count, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil || count < 0 {
		return nil
	}
	return &count
}
