package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/cache"
	"github.com/dmmdmlingbakery/mdm-ling-audit/app/metrics"
)

// Fetcher downloads the feed and owns its freshness cache
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	store      cache.Store
	ttl        time.Duration
	now        func() time.Time
}

// NewFetcher creates a fetcher. A nil store or a zero ttl disables caching.
func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration, store cache.Store, ttl time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		store:      store,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (f *Fetcher) Run(ctx context.Context, url string) ([]byte, error) {
	if data, ok := f.cached(ctx, url); ok {
		metrics.FeedFetchesTotal.WithLabelValues("cache", "success").Inc()
		return data, nil
	}

	data, err := f.fetchFeed(ctx, url)
	if err != nil {
		metrics.FeedFetchesTotal.WithLabelValues("network", "error").Inc()
		return nil, err
	}
	metrics.FeedFetchesTotal.WithLabelValues("network", "success").Inc()

	if f.cacheEnabled() {
		entry := cache.Entry{Data: data, FetchedAt: f.now()}
		if err := f.store.Set(ctx, cache.FeedKey(url), entry, f.ttl); err != nil {
			slog.Warn("Failed to cache feed", "url", url, "error", err)
		}
	}

	return data, nil
}

// Clear drops the cached copy of url, forcing the next Run to hit the network
func (f *Fetcher) Clear(ctx context.Context, url string) error {
	if f.store == nil {
		return nil
	}
	if err := f.store.Delete(ctx, cache.FeedKey(url)); err != nil {
		return fmt.Errorf("failed to clear feed cache: %w", err)
	}
	slog.Debug("Feed cache cleared", "url", url)
	return nil
}

func (f *Fetcher) cacheEnabled() bool {
	return f.store != nil && f.ttl > 0
}

func (f *Fetcher) cached(ctx context.Context, url string) ([]byte, bool) {
	if !f.cacheEnabled() {
		return nil, false
	}

	entry, ok, err := f.store.Get(ctx, cache.FeedKey(url))
	if err != nil {
		slog.Warn("Failed to read feed cache", "url", url, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	age := f.now().Sub(entry.FetchedAt)
	if age >= f.ttl {
		return nil, false
	}

	slog.Debug("Using cached feed", "url", url, "age", age.Round(time.Second))
	return entry.Data, true
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-SG,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}
