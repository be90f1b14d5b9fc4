package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/relboard/pkg/observability"
)

const (
	// DefaultTimeout bounds a single fetch attempt end to end.
	DefaultTimeout = 9 * time.Second

	// maxErrorBody caps how much of an error response body is retained.
	maxErrorBody = 512
)

// Client performs time-bounded HTTP fetches against a registry API.
//
// Each Fetch issues exactly one GET request under a hard wall-clock
// deadline; when the deadline fires, the in-flight request is cancelled.
// Failures are classified into the typed errors of this package so the
// orchestrator can dispatch on them.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http    *http.Client
	headers map[string]string
	timeout time.Duration
}

// NewClient creates a Client with the given default headers and per-attempt
// timeout. Headers are applied to all requests made through this client;
// pass nil if no default headers are needed. A timeout of 0 or less uses
// DefaultTimeout.
func NewClient(headers map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{},
		headers: headers,
		timeout: timeout,
	}
}

// Timeout returns the per-attempt deadline.
func (c *Client) Timeout() time.Duration { return c.timeout }

// Fetch performs one HTTP GET against url, decodes the JSON response into v,
// and returns the raw response bytes. The raw bytes are what callers store
// in the cache, so the cached payload round-trips the API's exact response.
//
// Failure modes:
//   - [*TimeoutError]: the attempt exceeded the deadline or ctx was cancelled.
//   - [*StatusError]: the API answered with a non-success status. The body
//     is read best-effort for diagnostics; read failures are ignored.
//   - [*DecodeError]: the API answered 200 but the body is not valid JSON
//     for the target shape.
//   - Other errors for transport failures (DNS, connection refused).
func (c *Client) Fetch(ctx context.Context, url string, v any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, val := range c.headers {
		req.Header.Set(k, val)
	}

	host, path := req.URL.Host, req.URL.Path
	observability.HTTP().OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = c.classify(err)
		observability.HTTP().OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return data, nil
}

// classify maps transport failures to typed errors. Deadline and
// cancellation become TimeoutError; everything else is wrapped as-is.
func (c *Client) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TimeoutError{Timeout: c.timeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TimeoutError{Timeout: c.timeout, Err: err}
	}
	return fmt.Errorf("request failed: %w", err)
}
