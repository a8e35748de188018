package tasks

import (
	"context"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
)

// PageInspector checks one product page. Implementations report failures as
// CHECK_FAILED results instead of errors.
type PageInspector interface {
	Run(ctx context.Context, url, name string) page.Result
}

// DispatcherInterface runs page checks for a batch of targets and returns
// exactly one result per target URL.
// Example usage:
//
//	dispatcher := NewDispatcher(inspector, 8)
//	results := dispatcher.Run(ctx, targets)
//	result := results["https://example.com/product/cake/"]
type DispatcherInterface interface {
	Run(ctx context.Context, targets []Target) map[string]page.Result
}
