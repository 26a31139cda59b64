// Package fetch retrieves raw markup for URL sources. It tries a direct
// request with a realistic browser header set first, then falls back to
// a rendering proxy that executes JavaScript server-side.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Strategy identifies which retrieval path produced the markup.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyProxy  Strategy = "proxy"
)

// Result holds the fetched markup and the strategy that succeeded.
type Result struct {
	Markup   string
	Strategy Strategy
}

// Renderer is the rendering-proxy fallback.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
	IsConfigured() bool
}

// Fetcher retrieves raw markup for a URL.
type Fetcher struct {
	httpClient *http.Client
	proxy      Renderer
	minBytes   int
}

// NewFetcher creates a fetcher with the given direct-fetch timeout and
// minimum plausible body size. Bodies shorter than minBytes are treated
// as blocked or empty shells and retried through the proxy.
func NewFetcher(timeout time.Duration, minBytes int, proxy Renderer) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		proxy:    proxy,
		minBytes: minBytes,
	}
}

// Fetch returns the raw markup for url. It fails only when both the
// direct fetch and the proxy fallback fail; the error then carries both
// underlying reasons.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	markup, directErr := f.fetchDirect(ctx, url)
	if directErr == nil {
		return &Result{Markup: markup, Strategy: StrategyDirect}, nil
	}

	if f.proxy == nil || !f.proxy.IsConfigured() {
		return nil, fmt.Errorf("direct fetch failed and no rendering proxy configured: %w", directErr)
	}

	markup, proxyErr := f.proxy.Render(ctx, url)
	if proxyErr != nil {
		return nil, fmt.Errorf("both fetch strategies failed: direct: %v; proxy: %v", directErr, proxyErr)
	}

	return &Result{Markup: markup, Strategy: StrategyProxy}, nil
}

func (f *Fetcher) fetchDirect(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Realistic browser headers to avoid trivial bot blocking
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	if len(body) < f.minBytes {
		return "", fmt.Errorf("suspiciously short body (%d bytes)", len(body))
	}

	return string(body), nil
}
