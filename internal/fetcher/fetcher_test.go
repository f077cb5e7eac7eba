package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"clipper/internal/config"
)

func fastPolicy(attempts int) *config.RetryPolicy {
	return &config.RetryPolicy{
		MaxAttempts:       attempts,
		InitialDelayMs:    1,
		MaxDelayMs:        5,
		BackoffMultiplier: 2.0,
		TimeoutSec:        5,
	}
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("User-Agent = %q, want browser-like", ua)
		}

		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewWithConfig(fastPolicy(3), 1024)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !strings.Contains(body, "ok") {
		t.Errorf("body = %q, want to contain %q", body, "ok")
	}
}

func TestFetchRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f := NewWithConfig(fastPolicy(5), 1024)

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed after retries: %v", err)
	}

	if body != "recovered" {
		t.Errorf("body = %q, want %q", body, "recovered")
	}

	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestFetchFailsFastOnNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewWithConfig(fastPolicy(5), 1024)

	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Fetch error = %v, want ErrUnexpectedStatusCode", err)
	}

	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (404 is not retryable)", calls.Load())
	}
}

func TestFetchExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewWithConfig(fastPolicy(3), 1024)

	_, err := f.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Fetch error = %v, want ErrUnexpectedStatusCode", err)
	}

	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

func TestFetchRespectsBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	f := NewWithConfig(fastPolicy(1), 1) // 1 KB cap

	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if len(body) != 1024 {
		t.Errorf("body length = %d, want 1024", len(body))
	}
}

func TestFetchSourceLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>local</p>"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	f := New()

	body, err := f.FetchSource(context.Background(), config.SourceConfig{File: path})
	if err != nil {
		t.Fatalf("FetchSource failed: %v", err)
	}

	if body != "<p>local</p>" {
		t.Errorf("body = %q, want fixture content", body)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewWithConfig(fastPolicy(5), 1024)

	if _, err := f.Fetch(ctx, srv.URL); err == nil {
		t.Error("Fetch with cancelled context succeeded, want error")
	}
}
