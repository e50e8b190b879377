package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxBackoff = 30 * time.Second

// RetryableError is a transient server response: 429 or any 5xx.
type RetryableError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server's requested delay, zero when it gave none.
	RetryAfter time.Duration
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, e.Message)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// retryDelay honours a Retry-After hint (capped) and otherwise backs off.
func retryDelay(err error, attempt int) time.Duration {
	var retryErr *RetryableError
	if errors.As(err, &retryErr) && retryErr.RetryAfter > 0 {
		return min(retryErr.RetryAfter, maxBackoff)
	}
	return Backoff(attempt)
}

// Backoff returns the delay before retry attempt n (0-indexed): 2^n seconds
// capped at 30s, plus up to half again of jitter.
func Backoff(attempt int) time.Duration {
	base := maxBackoff
	if attempt < 5 {
		base = min(time.Duration(1<<uint(attempt))*time.Second, maxBackoff)
	}
	return base + time.Duration(rand.Int64N(int64(base)/2))
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
