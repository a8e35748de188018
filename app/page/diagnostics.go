package page

import (
	"bytes"
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// pageTitle names the page in CHECK_FAILED diagnostics, which usually points
// at a redirect to a category, search or maintenance page.
func pageTitle(doc *goquery.Document, data []byte, pageURL string) string {
	parsedURL, _ := nurl.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err == nil && strings.TrimSpace(article.Title) != "" {
		return strings.TrimSpace(article.Title)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return "untitled"
}
