package api

import (
	"context"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/audit"
)

type AuditorInterface interface {
	Run(ctx context.Context) (*audit.Report, error)
	Latest() (*audit.Report, bool)
	ClearCache(ctx context.Context) error
	FeedURL() string
}

var _ AuditorInterface = (*audit.Auditor)(nil)

type Handler struct {
	auditor      AuditorInterface
	version      string
	cacheBackend string
}
