package page

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var priceSelectors = []string{".summary .price", "p.price, span.price"}

// Two amounts joined by a hyphen, en dash, em dash or minus sign, allowing a
// short currency prefix before the second amount.
var priceRangePattern = regexp.MustCompile(`\d[\d,.]*\s*[-–—−]\s*\D{0,5}\d`)

func priceText(doc *goquery.Document) (string, bool) {
	for _, selector := range priceSelectors {
		text := strings.Join(strings.Fields(doc.Find(selector).First().Text()), " ")
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// inspectPrice applies the price display rule for pages without variant
// data. A single bare price is read as the product having collapsed to its
// last remaining option, so genuinely single-SKU products are misreported as
// VARIANT_SOLD_OUT.
func inspectPrice(text string) Result {
	if priceRangePattern.MatchString(text) {
		return inStock("price range: " + text)
	}
	return variantSoldOut(text)
}
