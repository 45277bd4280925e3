package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultMaxBodyBytes caps response bodies when the caller passes a non-positive limit.
const DefaultMaxBodyBytes = 2 * 1024 * 1024

// StatusError is returned by Get when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// NewClient returns an HTTP client with the given timeout whose transport records
// a trace span for every outbound request.
func NewClient(timeoutSecs int) *http.Client {
	return &http.Client{
		Timeout:   time.Duration(timeoutSecs) * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Get sends a GET request with the given headers and returns at most maxBytes of the
// response body along with the status code.
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string, maxBytes int64) ([]byte, int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := string(data)
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	return data, resp.StatusCode, nil
}
