package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
)

func TestAssemble_AllInStockSortedByName(t *testing.T) {
	catalog := feed.NewCatalog()
	for _, name := range []string{"Kaya Roll", "Almond Cookies", "Pandan Chiffon"} {
		catalog.Add(feed.NewProduct(name, name, "https://x/"+name, feed.AvailabilityInStock))
	}

	report := Assemble(catalog)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "Almond Cookies", report.Rows[0].Name)
	assert.Equal(t, "Kaya Roll", report.Rows[1].Name)
	assert.Equal(t, "Pandan Chiffon", report.Rows[2].Name)
	for _, row := range report.Rows {
		assert.Equal(t, "In Stock", row.Status)
	}
	assert.Equal(t, Summary{Total: 3}, report.Summary)
}

func TestAssemble_RankOrder(t *testing.T) {
	catalog := feed.NewCatalog()

	checked := feed.NewProduct("Banana Cake", "Banana Cake", "https://x/banana", feed.AvailabilityInStock)
	checked.SetStatus(feed.StatusCheckFailed, "link error: 500")
	catalog.Add(checked)

	variant := feed.NewProduct("Zebra Cake", "Zebra Cake", "https://x/zebra", feed.AvailabilityInStock)
	variant.SetStatus(feed.StatusVariantSoldOut, "missing: whole")
	catalog.Add(variant)

	catalog.Add(feed.NewProduct("Yam Cake", "Yam Cake", "https://x/yam", feed.AvailabilityOutOfStock))
	catalog.Add(feed.NewProduct("Apple Pie", "Apple Pie", "https://x/apple", feed.AvailabilityInStock))

	report := Assemble(catalog)

	names := make([]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		names = append(names, row.Name)
	}
	assert.Equal(t, []string{"Yam Cake", "Zebra Cake", "Apple Pie", "Banana Cake"}, names)
	assert.Equal(t, Summary{Total: 4, SoldOut: 1, VariantSoldOut: 1, CheckFailed: 1}, report.Summary)
}

func TestAssemble_ResolvesPendingChecks(t *testing.T) {
	catalog := feed.NewCatalog()
	product := feed.NewProduct("Kaya Roll", "Kaya Roll", "https://x/kaya", feed.AvailabilityInStock)
	product.SetStatus(feed.StatusPendingCheck, "")
	catalog.Add(product)

	report := Assemble(catalog)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, feed.StatusCheckFailed, report.Rows[0].Code)
	assert.Equal(t, "Check Failed", report.Rows[0].Status)
	assert.Equal(t, 1, report.Summary.CheckFailed)
	assert.Equal(t, feed.StatusCheckFailed, product.Status())
}

func TestAssemble_StableForEqualKeys(t *testing.T) {
	catalog := feed.NewCatalog()
	catalog.Add(feed.NewProduct("Cake", "Cake", "", feed.AvailabilityInStock))
	first := catalog.Products[0]
	catalog.Add(feed.NewProduct("Cake", "Cake", "", feed.AvailabilityInStock))
	first.Detail = "first"

	report := Assemble(catalog)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, "first", report.Rows[0].Detail)
}

func TestAssemble_EmptyCatalog(t *testing.T) {
	report := Assemble(feed.NewCatalog())

	assert.NotNil(t, report.Rows)
	assert.Empty(t, report.Rows)
	assert.Equal(t, 0, report.Summary.Total)
}

func TestMerge_IgnoresSoldOutAndUnknown(t *testing.T) {
	catalog := feed.NewCatalog()
	catalog.Add(feed.NewProduct("Yam Cake", "Yam Cake", "https://x/yam", feed.AvailabilityOutOfStock))

	merge(catalog, map[string]page.Result{
		"https://x/yam":     {Status: feed.StatusInStock, Detail: "all variants verified"},
		"https://x/unknown": {Status: feed.StatusInStock},
	})

	assert.Equal(t, feed.StatusSoldOut, catalog.Products[0].Status())
}
