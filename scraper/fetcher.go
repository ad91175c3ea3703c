package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/use-agent/seometa/config"
	"github.com/use-agent/seometa/models"
)

// Fetcher performs single GET requests for page HTML.
// It is safe for concurrent use; every call gets its own timeout.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	timeout   time.Duration
}

// NewFetcher creates a Fetcher from the fetch configuration.
// Redirects follow the net/http default policy; there are no retries.
func NewFetcher(cfg config.FetchConfig) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
		timeout:   cfg.Timeout,
	}
}

// Fetch retrieves targetURL and returns its body decoded to UTF-8.
//
// Connection failures, timeouts and non-2xx statuses all come back as a
// FETCH_FAILED *models.AnalyzeError so callers treat them alike.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewFetchError("invalid url", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, models.NewFetchError(fmt.Sprintf("request timed out after %s", f.timeout), err)
		}
		return nil, models.NewFetchError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewFetchError(
			fmt.Sprintf("HTTP %d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), targetURL),
			nil,
		)
	}

	// Decode to UTF-8 using the Content-Type charset or <meta charset> sniffing.
	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, models.NewFetchError("read body", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		if isTimeout(err) {
			return nil, models.NewFetchError(fmt.Sprintf("request timed out after %s", f.timeout), err)
		}
		return nil, models.NewFetchError("read body", err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
