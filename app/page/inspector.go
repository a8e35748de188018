package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/dmmdmlingbakery/mdm-ling-audit/app/metrics"
)

const maxPageSize = 5 << 20

// Inspector checks a single product page for variant level stock
type Inspector struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewInspector creates an inspector. A requestsPerSecond of zero or less
// disables the request rate limit.
func NewInspector(httpClient *http.Client, userAgent string, timeout time.Duration, requestsPerSecond float64) *Inspector {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &Inspector{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		limiter:    limiter,
	}
}

// Run never fails: every problem, including a panic while reading the page,
// is reported as a CHECK_FAILED result.
func (i *Inspector) Run(ctx context.Context, url, name string) (result Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Page check panicked", "url", url, "name", name, "panic", r)
			result = checkFailed(fmt.Sprintf("check error: %v", r))
		}

		metrics.PageChecksTotal.WithLabelValues(string(result.Status)).Inc()
		metrics.PageCheckDuration.Observe(time.Since(start).Seconds())

		slog.Debug("Page checked",
			"name", name,
			"url", url,
			"status", result.Status,
			"detail", result.Detail,
			"duration", time.Since(start))
	}()

	data, result, ok := i.fetchPage(ctx, url)
	if !ok {
		return result
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return checkFailed(fmt.Sprintf("failed to parse page: %v", err))
	}

	if payload, found := variationsPayload(doc); found {
		return inspectVariations(payload)
	}

	if price, found := priceText(doc); found {
		return inspectPrice(price)
	}

	return checkFailed(fmt.Sprintf("no variant data or price found on page %q", pageTitle(doc, data, url)))
}

func (i *Inspector) fetchPage(ctx context.Context, url string) ([]byte, Result, bool) {
	if i.limiter != nil {
		if err := i.limiter.Wait(ctx); err != nil {
			return nil, checkFailed(fmt.Sprintf("link error: %v", err)), false
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, checkFailed(fmt.Sprintf("link error: %v", err)), false
	}

	req.Header.Set("User-Agent", i.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-SG,en;q=0.9")

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, checkFailed(fmt.Sprintf("link error: %v", err)), false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, checkFailed(fmt.Sprintf("link error: %d", resp.StatusCode)), false
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, checkFailed(fmt.Sprintf("failed to decode page: %v", err)), false
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, checkFailed(fmt.Sprintf("link error: %v", err)), false
	}

	return data, Result{}, true
}
