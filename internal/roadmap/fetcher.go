package roadmap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Fetcher retrieves and parses the current roadmap feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Item, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]Item, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]Item, error) {
	return f(ctx)
}

// HTTPFetcher fetches the feed over HTTP and parses it with gofeed.
type HTTPFetcher struct {
	url       string
	userAgent string
	client    *http.Client
}

// NewHTTPFetcher creates a fetcher for feedURL. A non-positive timeout leaves
// the client without one.
func NewHTTPFetcher(feedURL, userAgent string, timeout time.Duration) *HTTPFetcher {
	client := &http.Client{}
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &HTTPFetcher{
		url:       feedURL,
		userAgent: userAgent,
		client:    client,
	}
}

// URL returns the feed endpoint.
func (f *HTTPFetcher) URL() string {
	return f.url
}

// Fetch downloads and parses the feed. Network failures and non-2xx statuses
// yield *FetchError; unreadable bodies yield *ParseError.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        f.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	// gofeed parsers keep per-parse state, so each fetch gets its own
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	return itemsFromFeed(feed), nil
}
