package page

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const variationsSelector = "form.variations_form[data-product_variations]"

type variation struct {
	VariationID int             `json:"variation_id"`
	IsInStock   bool            `json:"is_in_stock"`
	Attributes  json.RawMessage `json:"attributes"`
}

func variationsPayload(doc *goquery.Document) (string, bool) {
	return doc.Find(variationsSelector).First().Attr("data-product_variations")
}

// inspectVariations reads the WooCommerce variations payload. Stores with
// many variations render the attribute as "false" and load variants over
// AJAX, which leaves nothing to verify here.
func inspectVariations(payload string) Result {
	var variations []variation
	if err := json.Unmarshal([]byte(payload), &variations); err != nil {
		return checkFailed(fmt.Sprintf("variant data unreadable: %v", err))
	}

	var missing []string
	for _, v := range variations {
		if v.IsInStock {
			continue
		}

		label, err := firstAttributeValue(v.Attributes)
		if err != nil {
			return checkFailed(fmt.Sprintf("variant data unreadable: %v", err))
		}
		if label == "" {
			label = fmt.Sprintf("variant %d", v.VariationID)
		}
		missing = append(missing, label)
	}

	if len(missing) > 0 {
		return variantSoldOut("missing: " + strings.Join(missing, ", "))
	}
	return inStock("all variants verified")
}

// firstAttributeValue returns the value of the first attribute in document
// order. PHP encodes an empty attribute map as [], which yields "".
func firstAttributeValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return "", nil
	}

	if !dec.More() {
		return "", nil
	}
	if _, err := dec.Token(); err != nil {
		return "", err
	}

	var value any
	if err := dec.Decode(&value); err != nil {
		return "", err
	}

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}
