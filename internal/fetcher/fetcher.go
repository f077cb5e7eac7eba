// Package fetcher retrieves page HTML over HTTP or from local files.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"clipper/internal/config"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Fetcher retrieves pages with config-driven retry logic.
type Fetcher struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
	maxBodyKb   int
}

// New creates a fetcher with default retry policy.
func New() *Fetcher {
	return NewWithConfig(&config.RetryPolicy{
		MaxAttempts:       3,
		InitialDelayMs:    500,
		MaxDelayMs:        30000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        30,
	}, 2048)
}

// NewWithConfig creates a fetcher with a custom retry policy and body
// size cap in kilobytes.
func NewWithConfig(retryPolicy *config.RetryPolicy, maxBodyKb int) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: retryPolicy.GetTimeout(),
		},
		retryPolicy: retryPolicy,
		maxBodyKb:   maxBodyKb,
	}
}

// Fetch retrieves a URL, retrying with exponential backoff on transport
// errors and retryable status codes.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retryPolicy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.retryPolicy.GetRetryDelay(attempt)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, status, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, f.retryPolicy.MaxAttempts, err)

		if !isRetryable(err, status) {
			break
		}
	}

	return "", lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	// Browser-like headers to avoid being blocked
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	limit := int64(f.maxBodyKb) * 1024

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), resp.StatusCode, nil
}

// FetchSource retrieves a configured source, local or remote.
func (f *Fetcher) FetchSource(ctx context.Context, src config.SourceConfig) (string, error) {
	if src.IsLocalFile() {
		data, err := os.ReadFile(src.File)
		if err != nil {
			return "", fmt.Errorf("failed to read local source: %w", err)
		}

		return string(data), nil
	}

	return f.Fetch(ctx, src.URL)
}

// isRetryable treats transport errors and 5xx/429 statuses as worth
// another attempt; other status codes fail fast.
func isRetryable(err error, status int) bool {
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		return true
	}

	return status >= 500 || status == http.StatusTooManyRequests
}
