package audit

import (
	"sort"
	"time"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
)

const unresolvedDetail = "check did not complete"

// Assemble finalizes the catalog into report rows ordered by rank, then name.
// Products still waiting for a page check are resolved to CHECK_FAILED first.
func Assemble(catalog *feed.Catalog) *Report {
	products := make([]*feed.Product, len(catalog.Products))
	copy(products, catalog.Products)

	for _, product := range products {
		if product.Status() == feed.StatusPendingCheck {
			product.SetStatus(feed.StatusCheckFailed, unresolvedDetail)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Rank() != products[j].Rank() {
			return products[i].Rank() < products[j].Rank()
		}
		return products[i].Name < products[j].Name
	})

	report := &Report{
		GeneratedAt: time.Now().In(time.Local),
		Rows:        make([]Row, 0, len(products)),
	}

	for _, product := range products {
		status := product.Status()

		report.Rows = append(report.Rows, Row{
			Name:   product.Name,
			Status: status.Label(),
			Code:   status,
			Detail: product.Detail,
			URL:    product.URL,
		})

		report.Summary.Total++
		switch status {
		case feed.StatusSoldOut:
			report.Summary.SoldOut++
		case feed.StatusVariantSoldOut:
			report.Summary.VariantSoldOut++
		case feed.StatusCheckFailed:
			report.Summary.CheckFailed++
		}
	}

	return report
}
