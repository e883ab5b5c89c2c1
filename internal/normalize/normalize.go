// Package normalize extracts canonical records from raw product pages.
// Every field extractor is independently fallible: a missing field yields
// an absent value, never an error for the whole record.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/vbelous/shopscout/internal/fetch"
	"github.com/vbelous/shopscout/pkg/models"
)

// ErrInsufficientData marks a page that yielded no usable record: no stable
// identifier, or neither a title nor any raw text.
var ErrInsufficientData = errors.New("insufficient data to build record")

var (
	brandPrefixPattern = regexp.MustCompile(`(?i)^Brand:\s*`)
	dimsLabelPattern   = regexp.MustCompile(`(?i)^(Product Dimensions|Item Dimensions|Dimensions|Size|Item Display Dimensions)\s*[:\s]*`)
	weightLabelPattern = regexp.MustCompile(`(?i)^(Item Weight|Product Weight|Package Weight|Weight)\s*[:\s]*`)
)

var weightUnits = []string{"ounce", "pound", "kilogram", "gram", "kg", "lb", "oz", " g"}

// Normalize parses a raw product page into a canonical record.
func Normalize(doc *fetch.RawDocument) (models.Record, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(doc.Body))
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to parse page: %w", err)
	}

	rec := models.Record{
		ID:        models.RecordIDFromURL(doc.URL),
		URL:       doc.URL,
		ScrapedAt: doc.FetchedAt,
	}
	if rec.ID == "" {
		rec.ID = extractEmbeddedID(page)
	}

	rec.Title = extractTitle(page)
	rec.Brand = extractBrand(page)
	rec.Price = ParsePrice(extractPriceText(page))
	rec.Rating = parseRating(extractRatingText(page))
	rec.ReviewCount = parseReviewCount(extractReviewCountText(page))
	rec.CategoryPath = extractBreadcrumbs(page)
	rec.Features = extractFeatures(page)
	rec.Dimensions, rec.Weight = extractDimensionsAndWeight(page)
	rec.ImageURL = extractImage(page)

	if desc := extractDescription(page); desc != "" {
		rec.Features = append(rec.Features, desc)
	}

	rec.RawText = BuildRawText(rec)

	if rec.ID == "" || (rec.Title == "" && rec.RawText == "") {
		return models.Record{}, fmt.Errorf("%w: url=%s", ErrInsufficientData, doc.URL)
	}

	return rec, nil
}

// cleanText collapses whitespace and strips directional marks.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "‎", "")
	s = strings.ReplaceAll(s, "‏", "")
	return strings.Join(strings.Fields(s), " ")
}

func extractTitle(page *goquery.Document) string {
	return cleanText(page.Find("#productTitle").First().Text())
}

func extractEmbeddedID(page *goquery.Document) string {
	val, _ := page.Find(`input[name="ASIN"]`).First().Attr("value")
	return strings.TrimSpace(val)
}

func extractBrand(page *goquery.Document) string {
	text := cleanText(page.Find("#bylineInfo").First().Text())
	if text == "" {
		return ""
	}
	text = brandPrefixPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "Visit the ", "")
	text = strings.ReplaceAll(text, " Store", "")
	return strings.TrimSpace(text)
}

// priceSelectors are tried in order; the first non-empty wins.
var priceSelectors = []string{
	".a-price .a-offscreen",
	"#priceblock_ourprice",
	"#priceblock_dealprice",
	".a-price-whole",
}

func extractPriceText(page *goquery.Document) string {
	for _, sel := range priceSelectors {
		if text := cleanText(page.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractRatingText(page *goquery.Document) string {
	if text := cleanText(page.Find(`span[data-hook="rating-out-of-text"]`).First().Text()); text != "" {
		return text
	}
	return cleanText(page.Find("i.a-icon-star span").First().Text())
}

func extractReviewCountText(page *goquery.Document) string {
	return cleanText(page.Find("#acrCustomerReviewText").First().Text())
}

func extractBreadcrumbs(page *goquery.Document) []string {
	var crumbs []string
	page.Find("#wayfinding-breadcrumbs_feature_div ul li a").Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			crumbs = append(crumbs, text)
		}
	})
	return crumbs
}

func extractFeatures(page *goquery.Document) []string {
	var features []string
	page.Find("#feature-bullets ul li span.a-list-item").Each(func(_ int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			features = append(features, text)
		}
	})
	return features
}

func extractImage(page *goquery.Document) string {
	src, _ := page.Find("#landingImage").First().Attr("src")
	return src
}

// extractDescription converts the free-form description block to plain
// markdown text. Conversion failures drop the description, not the record.
func extractDescription(page *goquery.Document) string {
	node := page.Find("#productDescription").First()
	if node.Length() == 0 {
		return ""
	}
	rawHTML, err := goquery.OuterHtml(node)
	if err != nil {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(rawHTML)
	if err != nil {
		return ""
	}
	return cleanText(md)
}

// extractDimensionsAndWeight scans the product detail tables for dimension
// and weight rows. A combined "10 x 5 x 2 inches; 2 pounds" value is split.
func extractDimensionsAndWeight(page *goquery.Document) (dims, weight string) {
	tables := page.Find("table.prodDetTable, #productDetails_techSpec_section_1, #detailBullets_feature_div, #productOverview_feature_div")

	tables.Find("tr, li, .a-list-item").Each(func(_ int, row *goquery.Selection) {
		text := cleanText(row.Text())
		if text == "" {
			return
		}
		lower := strings.ToLower(text)

		if strings.Contains(lower, "dimension") || strings.Contains(lower, "size") {
			val := dimsLabelPattern.ReplaceAllString(text, "")
			if idx := strings.Index(val, ";"); idx >= 0 {
				for _, part := range strings.Split(val[idx+1:], ";") {
					if weight == "" && containsWeightUnit(part) {
						weight = strings.TrimSpace(part)
					}
				}
				val = val[:idx]
			}
			dims = strings.TrimSpace(val)
		}

		if weight == "" && strings.Contains(lower, "weight") {
			weight = strings.TrimSpace(weightLabelPattern.ReplaceAllString(text, ""))
		}
	})

	return dims, weight
}

func containsWeightUnit(s string) bool {
	lower := strings.ToLower(s)
	for _, unit := range weightUnits {
		if strings.Contains(lower, unit) {
			return true
		}
	}
	return false
}

// BuildRawText joins the extracted free-text fields in a fixed order so that
// unchanged input always yields byte-identical text and therefore stable
// embeddings.
func BuildRawText(rec models.Record) string {
	var parts []string

	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Title", rec.Title)
	add("Brand", rec.Brand)
	if len(rec.CategoryPath) > 0 {
		add("Category", strings.Join(rec.CategoryPath, " > "))
	}
	add("Dimensions", rec.Dimensions)
	add("Weight", rec.Weight)
	if len(rec.Features) > 0 {
		add("Features", strings.Join(rec.Features, " "))
	}

	return strings.Join(parts, "\n")
}
