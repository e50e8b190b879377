// Package fetch downloads remote documents for presentation.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Options configures a Fetcher.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RatePerSecond float64
	Burst         int
	MaxRetries    int
}

// Fetcher downloads documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
	limiter    *Limiter
	userAgent  string
	maxBytes   int64
	maxRetries int
	log        *slog.Logger
}

// Result is a downloaded document.
type Result struct {
	Data        []byte
	Filename    string
	ContentType string
	FinalURL    string
}

// New creates a Fetcher.
func New(opts Options, log *slog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "stepdeck"
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:    NewLimiter(opts.RatePerSecond, opts.Burst),
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		maxRetries: max(opts.MaxRetries, 0),
		log:        log,
	}
}

// Fetch downloads rawURL, retrying transient failures with backoff.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryDelay(lastErr, attempt-1)
			f.log.Warn("retrying fetch", "url", rawURL, "attempt", attempt, "wait", wait, "error", lastErr)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		result, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", rawURL, f.maxRetries+1, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Result, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/markdown,text/plain;q=0.9,text/html;q=0.8,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", f.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	finalURL := resp.Request.URL.String()
	return &Result{
		Data:        body,
		Filename:    InferFilename(resp.Request.URL, contentType),
		ContentType: contentType,
		FinalURL:    finalURL,
	}, nil
}

var extByMediaType = map[string]string{
	"text/markdown":   ".md",
	"text/x-markdown": ".md",
	"text/plain":      ".txt",
	"text/html":       ".html",
	"text/csv":        ".csv",
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// InferFilename names a downloaded document from its URL path, using the
// content type to pick an extension when the path has none we know.
func InferFilename(u *url.URL, contentType string) string {
	name := path.Base(strings.TrimSuffix(u.Path, "/"))
	if name == "." || name == "/" || name == "" {
		name = u.Hostname()
	}

	if _, ok := extByPath[strings.ToLower(path.Ext(name))]; ok {
		return name
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return name + ".md"
	}
	ext, ok := extByMediaType[mediaType]
	if !ok {
		ext = ".md"
	}
	return name + ext
}

var extByPath = map[string]struct{}{
	".md": {}, ".markdown": {}, ".txt": {}, ".html": {}, ".htm": {},
	".csv": {}, ".pdf": {}, ".docx": {},
}
