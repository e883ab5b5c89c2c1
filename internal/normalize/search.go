package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vbelous/shopscout/pkg/models"
)

// ExtractSearchResults pulls product page URLs out of a keyword search
// results page, capped at n. Duplicate products (same extracted ID) are
// dropped, keeping page order.
func ExtractSearchResults(html, baseURL string, n int) ([]string, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	seen := make(map[string]bool)
	var urls []string

	page.Find(`div[data-component-type="s-search-result"]`).EachWithBreak(func(_ int, result *goquery.Selection) bool {
		href, ok := result.Find("a.a-link-normal").First().Attr("href")
		if !ok || href == "" {
			return true
		}

		full := href
		if strings.HasPrefix(href, "/") {
			full = strings.TrimRight(baseURL, "/") + href
		}

		id := models.RecordIDFromURL(full)
		if id == "" || seen[id] {
			return true
		}
		seen[id] = true
		urls = append(urls, full)

		return n <= 0 || len(urls) < n
	})

	return urls, nil
}
