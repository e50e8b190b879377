package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	t.Cleanup(func() { sleep = orig })
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = fmt.Fprint(w, "# Hello")
	}))
	defer server.Close()

	f := New(Options{Timeout: 5 * time.Second}, testLogger())
	result, err := f.Fetch(context.Background(), server.URL+"/talks/intro")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(result.Data) != "# Hello" {
		t.Errorf("unexpected body %q", result.Data)
	}
	if result.Filename != "intro.md" {
		t.Errorf("filename = %q, want intro.md", result.Filename)
	}
}

func TestFetch_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	f := New(Options{MaxRetries: 3}, testLogger())
	result, err := f.Fetch(context.Background(), server.URL+"/deck.md")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if string(result.Data) != "ok" {
		t.Errorf("unexpected body %q", result.Data)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetch_RetriesExhausted(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := New(Options{MaxRetries: 2}, testLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsRetryable(err) {
		t.Errorf("final error should wrap the retryable cause, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetch_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(Options{MaxRetries: 3}, testLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := err.Error(); got != "unexpected status: 404 Not Found" {
		t.Errorf("unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("404 should not be retried, got %d attempts", attempts.Load())
	}
}

func TestFetch_SizeCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer server.Close()

	f := New(Options{MaxBytes: 10}, testLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil || !strings.Contains(err.Error(), "exceeds 10 bytes") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestFetch_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	f := New(Options{}, testLogger())
	_, err := f.Fetch(context.Background(), server.URL+"/a")
	if err == nil || !strings.Contains(err.Error(), "stopped after 3 redirects") {
		t.Fatalf("expected redirect error, got %v", err)
	}
}

func TestFetch_RejectsNonHTTP(t *testing.T) {
	f := New(Options{}, testLogger())
	if _, err := f.Fetch(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestInferFilename(t *testing.T) {
	tests := []struct {
		rawURL      string
		contentType string
		want        string
	}{
		{"https://example.com/slides/deck.md", "text/plain", "deck.md"},
		{"https://example.com/report.pdf", "", "report.pdf"},
		{"https://example.com/page", "text/html; charset=utf-8", "page.html"},
		{"https://example.com/", "text/plain", "example.com.txt"},
		{"https://example.com/data", "text/csv", "data.csv"},
		{"https://example.com/raw", "application/octet-stream", "raw.md"},
		{"https://example.com/v1.2", "", "v1.2.md"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatal(err)
		}
		if got := InferFilename(u, tt.contentType); got != tt.want {
			t.Errorf("InferFilename(%q, %q) = %q, want %q", tt.rawURL, tt.contentType, got, tt.want)
		}
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, outside [%v, %v)", attempt, d, base, base+base/2)
		}
	}
}

func TestFetch_HonoursRetryAfter(t *testing.T) {
	var waits []time.Duration
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	t.Cleanup(func() { sleep = orig })

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch attempts.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = fmt.Fprint(w, "ok")
		}
	}))
	defer server.Close()

	f := New(Options{MaxRetries: 3}, testLogger())
	if _, err := f.Fetch(context.Background(), server.URL+"/deck.md"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(waits) != 2 || waits[0] != 7*time.Second || waits[1] != maxBackoff {
		t.Errorf("waits = %v, want [7s %v]", waits, maxBackoff)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"-3", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
