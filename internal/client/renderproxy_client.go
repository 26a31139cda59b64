package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lexigrade/api/internal/config"
)

// RenderProxyClient talks to a rendering-proxy service that executes
// JavaScript server-side and returns the rendered markup. Used as the
// fallback when a direct fetch fails or looks blocked.
type RenderProxyClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewRenderProxyClient creates a new rendering proxy client
func NewRenderProxyClient(cfg *config.ProxyConfig) *RenderProxyClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RenderProxyClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Render fetches target through the proxy with JS rendering enabled and
// returns the resulting markup.
func (c *RenderProxyClient) Render(ctx context.Context, target string) (string, error) {
	q := url.Values{}
	q.Set("token", c.apiKey)
	q.Set("url", target)
	q.Set("render", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return string(body), nil
}

// IsConfigured returns true if the client has valid configuration
func (c *RenderProxyClient) IsConfigured() bool {
	return c.apiKey != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
