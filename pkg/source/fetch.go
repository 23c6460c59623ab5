package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
)

// DefaultURL is the published ZeroBrave policy document.
const DefaultURL = "https://raw.githubusercontent.com/rompelhd/ZeroBrave/refs/heads/main/policies.json"

const (
	defaultFetchTimeout = 10 * time.Second
	maxDocumentBytes    = 1 << 20
)

// ErrTooLarge is returned when a downloaded document exceeds 1 MiB.
var ErrTooLarge = errors.New("policy document too large")

// HTTPStatusError is returned for any non-200 response.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("download %s failed: HTTP %d", e.URL, e.Status)
}

// Temporary reports whether the server may answer differently on retry.
func (e *HTTPStatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests || e.Status == http.StatusRequestTimeout
}

// retryable keeps retries to network failures and temporary server errors.
func retryable(err error) bool {
	if errors.Is(err, ErrTooLarge) {
		return false
	}
	var status *HTTPStatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	return true
}

// Fetcher downloads policy documents.
type Fetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	Attempts int
}

// NewFetcher returns a Fetcher with a 10 second timeout and two attempts.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   http.DefaultClient,
		Timeout:  defaultFetchTimeout,
		Attempts: 2,
	}
}

// Fetch downloads and decodes the document at url. Network failures and 5xx
// responses are retried up to Attempts times; other statuses, oversized
// bodies and decode errors are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) (policy.Document, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := f.Timeout
	if limit <= 0 {
		limit = defaultFetchTimeout
	}
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	r := retry.New[[]byte](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  200 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
		IsRetryable:   retryable,
	})
	t := timeout.New[[]byte](timeout.Config{
		DefaultTimeout: limit,
	})

	data, err := r.Do(ctx, func(ctx context.Context) ([]byte, error) {
		return t.Execute(ctx, limit, func(ctx context.Context) ([]byte, error) {
			return f.get(ctx, client, url)
		})
	})
	if err != nil {
		return nil, err
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{URL: url, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, url, maxDocumentBytes)
	}
	return data, nil
}
