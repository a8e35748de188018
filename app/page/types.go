package page

import (
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
)

// Result is the outcome of one product page check. Status is one of
// IN_STOCK, VARIANT_SOLD_OUT or CHECK_FAILED.
type Result struct {
	Status feed.Status `json:"status"`
	Detail string      `json:"detail"`
}

func inStock(detail string) Result {
	return Result{Status: feed.StatusInStock, Detail: detail}
}

func variantSoldOut(detail string) Result {
	return Result{Status: feed.StatusVariantSoldOut, Detail: detail}
}

func checkFailed(detail string) Result {
	return Result{Status: feed.StatusCheckFailed, Detail: detail}
}
