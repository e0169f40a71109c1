package httputil

import (
	"context"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewScrapeClient builds the client used for all page fetches.
func NewScrapeClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
	}
}

// NewPageRequest builds a GET for a game page with browser-like headers.
// The site serves Japanese content and occasionally rejects bare clients.
func NewPageRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9")
	return req, nil
}
