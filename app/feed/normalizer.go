package feed

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

type Normalizer struct {
	names ConfigNames
}

func NewNormalizer(names ConfigNames) *Normalizer {
	return &Normalizer{names: names}
}

// Run turns raw feed records into a deduplicated catalog. Records without a
// title or availability are dropped; the first product seen for a URL wins.
func (n *Normalizer) Run(records []RawRecord) *Catalog {
	catalog := NewCatalog()
	invalid, duplicates := 0, 0

	for _, record := range records {
		title := record[FieldTitle]
		availability := record[FieldAvailability]
		if title == "" || availability == "" {
			invalid++
			continue
		}

		product := n.buildProduct(title, availability, record[FieldLink])
		if !catalog.Add(product) {
			duplicates++
			slog.Debug("Duplicate product skipped", "url", product.URL, "name", product.Name)
		}
	}

	if invalid > 0 || duplicates > 0 {
		slog.Debug("Records dropped during normalization",
			"invalid", invalid,
			"duplicates", duplicates,
			"kept", catalog.Len())
	}

	return catalog
}

func (n *Normalizer) buildProduct(title, availability, link string) *Product {
	name := n.CleanTitle(title)
	baseName := n.BaseName(name)

	displayName := name
	if n.names.DisplayBaseName {
		displayName = baseName
	}

	return NewProduct(displayName, baseName, strings.TrimSpace(link), n.availability(availability))
}

// CleanTitle decodes leftover HTML entities, removes configured boilerplate
// and collapses whitespace
func (n *Normalizer) CleanTitle(title string) string {
	cleaned := norm.NFC.String(html.UnescapeString(title))
	for _, boilerplate := range n.names.Boilerplate {
		if boilerplate == "" {
			continue
		}
		cleaned = strings.ReplaceAll(cleaned, boilerplate, "")
	}

	return strings.Join(strings.Fields(cleaned), " ")
}

// BaseName strips a trailing variant size qualifier such as " - Fun Size" or
// " (Whole)". Only a delimiter followed by a configured size label counts, and
// the last such delimiter in the name is used.
func (n *Normalizer) BaseName(name string) string {
	cut := -1

	for _, delimiter := range n.names.VariantDelimiters {
		if delimiter == "" {
			continue
		}

		idx := strings.LastIndex(name, delimiter)
		if idx <= cut || idx <= 0 {
			continue
		}

		if n.hasSizeLabelPrefix(name[idx+len(delimiter):]) {
			cut = idx
		}
	}

	if cut < 0 {
		return name
	}
	return strings.TrimSpace(name[:cut])
}

func (n *Normalizer) hasSizeLabelPrefix(qualifier string) bool {
	qualifier = strings.ToLower(strings.TrimSpace(qualifier))
	for _, label := range n.names.SizeLabels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || !strings.HasPrefix(qualifier, label) {
			continue
		}
		rest := qualifier[len(label):]
		if next, _ := utf8.DecodeRuneInString(rest); rest == "" || (!unicode.IsLetter(next) && !unicode.IsDigit(next)) {
			return true
		}
	}
	return false
}

func (n *Normalizer) availability(value string) Availability {
	if strings.TrimSpace(value) == n.names.OutOfStockToken {
		return AvailabilityOutOfStock
	}
	return AvailabilityInStock
}
