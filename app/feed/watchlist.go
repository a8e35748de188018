package feed

import (
	"strings"
)

type Decision int

const (
	DecisionSkip Decision = iota
	DecisionDeepCheck
)

func (d Decision) String() string {
	if d == DecisionDeepCheck {
		return "deep_check"
	}
	return "skip"
}

// Watchlist selects the products whose in-stock feed flag is not trusted.
// Matching is case-sensitive substring containment on the base name, and an
// exclusion always beats a trigger.
type Watchlist struct {
	triggers   []string
	exclusions []string
}

func NewWatchlist(config ConfigWatchlist) *Watchlist {
	return &Watchlist{
		triggers:   append([]string(nil), config.Triggers...),
		exclusions: append([]string(nil), config.Exclusions...),
	}
}

func (w *Watchlist) Classify(product *Product) Decision {
	if product.Availability == AvailabilityOutOfStock || product.URL == "" {
		return DecisionSkip
	}

	if !containsAny(product.BaseName, w.triggers) {
		return DecisionSkip
	}
	if containsAny(product.BaseName, w.exclusions) {
		return DecisionSkip
	}

	return DecisionDeepCheck
}

// Run classifies every product of the catalog, moves the selected ones to
// PENDING_CHECK and returns them in catalog order.
func (w *Watchlist) Run(catalog *Catalog) []*Product {
	var pending []*Product
	for _, product := range catalog.Products {
		if w.Classify(product) != DecisionDeepCheck {
			continue
		}
		if product.SetStatus(StatusPendingCheck, "") {
			pending = append(pending, product)
		}
	}
	return pending
}

func containsAny(value string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}
