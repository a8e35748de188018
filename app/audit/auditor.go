package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/feed"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/metrics"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/page"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/tasks"
)

var ErrAuditInProgress = errors.New("audit already in progress")

// Auditor runs the reconciliation pipeline: fetch, parse, normalize,
// classify, page checks, merge and assemble. Phases run strictly in order and
// only one audit runs at a time.
type Auditor struct {
	config     *feed.Config
	fetcher    *feed.Fetcher
	parser     *feed.Parser
	normalizer *feed.Normalizer
	watchlist  *feed.Watchlist
	dispatcher tasks.DispatcherInterface

	running sync.Mutex

	mu     sync.RWMutex
	latest *Report
}

func NewAuditor(config *feed.Config, fetcher *feed.Fetcher, dispatcher tasks.DispatcherInterface) *Auditor {
	return &Auditor{
		config:     config,
		fetcher:    fetcher,
		parser:     feed.NewParser(),
		normalizer: feed.NewNormalizer(config.Names),
		watchlist:  feed.NewWatchlist(config.Watchlist),
		dispatcher: dispatcher,
	}
}

func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	if !a.running.TryLock() {
		return nil, ErrAuditInProgress
	}
	defer a.running.Unlock()

	// page checks finish or time out on their own once the audit has started
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	auditID := uuid.NewString()

	report, err := a.run(ctx, auditID)
	metrics.AuditDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AuditsTotal.WithLabelValues(resultLabel(err)).Inc()
		slog.Error("Audit failed", "id", auditID, "url", a.config.URL, "error", err, "duration", time.Since(start))
		return nil, err
	}
	metrics.AuditsTotal.WithLabelValues("success").Inc()

	a.mu.Lock()
	a.latest = report
	a.mu.Unlock()

	slog.Info("Audit completed",
		"id", auditID,
		"total", report.Summary.Total,
		"sold_out", report.Summary.SoldOut,
		"variant_sold_out", report.Summary.VariantSoldOut,
		"check_failed", report.Summary.CheckFailed,
		"duration", time.Since(start))

	return report, nil
}

func (a *Auditor) run(ctx context.Context, auditID string) (*Report, error) {
	data, err := a.fetcher.Run(ctx, a.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	records, metadata, err := a.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	catalog := a.normalizer.Run(records)
	pending := a.watchlist.Run(catalog)

	slog.Debug("Feed classified",
		"id", auditID,
		"records", len(records),
		"products", catalog.Len(),
		"deep_checks", len(pending))

	targets := make([]tasks.Target, 0, len(pending))
	for _, product := range pending {
		targets = append(targets, tasks.Target{URL: product.URL, Name: product.Name})
	}

	results := a.dispatcher.Run(ctx, targets)
	merge(catalog, results)

	report := Assemble(catalog)
	report.ID = auditID
	report.FeedURL = a.config.URL
	if metadata != nil {
		report.FeedTitle = metadata.Title
	}

	return report, nil
}

// merge applies page check results to the catalog after every check finished
func merge(catalog *feed.Catalog, results map[string]page.Result) {
	for url, result := range results {
		product, ok := catalog.Lookup(url)
		if !ok {
			slog.Warn("Page check result for unknown product", "url", url)
			continue
		}
		product.SetStatus(result.Status, result.Detail)
	}
}

// Latest returns the last report produced by this process
func (a *Auditor) Latest() (*Report, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest, a.latest != nil
}

// ClearCache drops the cached feed so the next audit fetches it again
func (a *Auditor) ClearCache(ctx context.Context) error {
	return a.fetcher.Clear(ctx, a.config.URL)
}

func (a *Auditor) FeedURL() string {
	return a.config.URL
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, feed.ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, feed.ErrMalformedFeed):
		return "malformed_feed"
	default:
		return "error"
	}
}
