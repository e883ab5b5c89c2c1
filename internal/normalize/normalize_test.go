package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/vbelous/shopscout/internal/fetch"
)

const productPage = `<html><body>
<span id="productTitle"> Massage Gun X  Deep Tissue </span>
<a id="bylineInfo">Visit the Acme Store</a>
<span class="a-price"><span class="a-offscreen">$89.99</span></span>
<span data-hook="rating-out-of-text">4.6 out of 5</span>
<span id="acrCustomerReviewText">1,234 ratings</span>
<div id="wayfinding-breadcrumbs_feature_div"><ul>
  <li><a> Health </a></li>
  <li><a>Massage Tools</a></li>
</ul></div>
<div id="feature-bullets"><ul>
  <li><span class="a-list-item">Quiet brushless motor</span></li>
  <li><span class="a-list-item">6 hour battery life</span></li>
</ul></div>
<div id="detailBullets_feature_div"><ul>
  <li><span class="a-list-item">Product Dimensions: 10 x 5 x 2 inches; 2.2 Pounds</span></li>
</ul></div>
<img id="landingImage" src="https://img.example.com/gun-x.jpg"/>
<div id="productDescription"><p>Relieves <b>muscle soreness</b> fast.</p></div>
</body></html>`

func rawDoc(url, body string) *fetch.RawDocument {
	return &fetch.RawDocument{
		URL:       url,
		Status:    200,
		Body:      body,
		FetchedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestNormalize_FullProductPage(t *testing.T) {
	rec, err := Normalize(rawDoc("https://shop.example.com/gun-x/dp/B0ABCD1234", productPage))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if rec.ID != "B0ABCD1234" {
		t.Errorf("ID = %q, want B0ABCD1234", rec.ID)
	}
	if rec.Title != "Massage Gun X Deep Tissue" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Brand != "Acme" {
		t.Errorf("Brand = %q, want Acme", rec.Brand)
	}
	if rec.Price == nil || rec.Price.Amount != 89.99 || rec.Price.Currency != "USD" {
		t.Errorf("Price = %+v, want 89.99 USD", rec.Price)
	}
	if rec.Rating == nil || *rec.Rating != 4.6 {
		t.Errorf("Rating = %v, want 4.6", rec.Rating)
	}
	if rec.ReviewCount == nil || *rec.ReviewCount != 1234 {
		t.Errorf("ReviewCount = %v, want 1234", rec.ReviewCount)
	}
	if len(rec.CategoryPath) != 2 || rec.CategoryPath[0] != "Health" || rec.CategoryPath[1] != "Massage Tools" {
		t.Errorf("CategoryPath = %v", rec.CategoryPath)
	}
	if rec.Dimensions != "10 x 5 x 2 inches" {
		t.Errorf("Dimensions = %q", rec.Dimensions)
	}
	if rec.Weight != "2.2 Pounds" {
		t.Errorf("Weight = %q", rec.Weight)
	}
	if rec.ImageURL != "https://img.example.com/gun-x.jpg" {
		t.Errorf("ImageURL = %q", rec.ImageURL)
	}
	if len(rec.Features) < 2 {
		t.Fatalf("Features = %v, want at least the two bullets", rec.Features)
	}
	if rec.RawText == "" {
		t.Error("RawText should not be empty")
	}
}

func TestNormalize_MissingOptionalFields(t *testing.T) {
	// Only a title: still a valid record, everything else absent.
	body := `<html><body><span id="productTitle">Bare Product</span></body></html>`

	rec, err := Normalize(rawDoc("https://shop.example.com/dp/B0AAAA0001", body))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if rec.Title != "Bare Product" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Price != nil || rec.Rating != nil || rec.ReviewCount != nil {
		t.Error("absent numeric fields should be nil")
	}
	if rec.Brand != "" || rec.Dimensions != "" || rec.Weight != "" {
		t.Error("absent text fields should be empty")
	}
}

func TestNormalize_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
	}{
		{
			name: "no id and no content",
			url:  "",
			body: `<html><body></body></html>`,
		},
		{
			name: "id but empty page",
			url:  "https://shop.example.com/dp/B0BBBB0002",
			body: `<html><body><div>unrelated</div></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(rawDoc(tt.url, tt.body))
			if !errors.Is(err, ErrInsufficientData) {
				t.Errorf("error = %v, want ErrInsufficientData", err)
			}
		})
	}
}

func TestNormalize_RawTextIsDeterministic(t *testing.T) {
	doc := rawDoc("https://shop.example.com/gun-x/dp/B0ABCD1234", productPage)

	first, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	second, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if first.RawText != second.RawText {
		t.Errorf("RawText differs across runs:\n%q\n%q", first.RawText, second.RawText)
	}
}

func TestBuildRawText_FixedFieldOrder(t *testing.T) {
	rec, err := Normalize(rawDoc("https://shop.example.com/gun-x/dp/B0ABCD1234", productPage))
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []string{"Title:", "Brand:", "Category:", "Dimensions:", "Weight:", "Features:"}
	pos := -1
	for _, label := range want {
		idx := indexOf(rec.RawText, label)
		if idx < 0 {
			t.Fatalf("RawText missing %q:\n%s", label, rec.RawText)
		}
		if idx < pos {
			t.Errorf("label %q out of order in RawText:\n%s", label, rec.RawText)
		}
		pos = idx
	}
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestExtractSearchResults(t *testing.T) {
	html := `<html><body>
	<div data-component-type="s-search-result">
		<a class="a-link-normal" href="/gun-x/dp/B0ABCD1234/ref=sr_1_1">Gun X</a>
	</div>
	<div data-component-type="s-search-result">
		<a class="a-link-normal" href="https://shop.example.com/gun-y/dp/B0ABCD5678">Gun Y</a>
	</div>
	<div data-component-type="s-search-result">
		<a class="a-link-normal" href="/gun-x/dp/B0ABCD1234/ref=sr_1_3">Gun X again</a>
	</div>
	<div data-component-type="s-search-result">
		<a class="a-link-normal" href="/gun-z/dp/B0ABCD9999">Gun Z</a>
	</div>
	</body></html>`

	urls, err := ExtractSearchResults(html, "https://shop.example.com", 2)
	if err != nil {
		t.Fatalf("ExtractSearchResults() error = %v", err)
	}

	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2 (capped, deduplicated): %v", len(urls), urls)
	}
	if urls[0] != "https://shop.example.com/gun-x/dp/B0ABCD1234/ref=sr_1_1" {
		t.Errorf("urls[0] = %q", urls[0])
	}
	if urls[1] != "https://shop.example.com/gun-y/dp/B0ABCD5678" {
		t.Errorf("urls[1] = %q", urls[1])
	}
}
