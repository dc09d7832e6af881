// Package remote talks to the search engine that mirrors governed indexes.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperengineering/searchbridge/internal/metrics"
)

// ErrIndexNotFound is returned when the remote engine has no such index.
var ErrIndexNotFound = errors.New("remote index not found")

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// Error is a non-2xx response from the remote engine.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote engine returned %d: %s", e.StatusCode, e.Body)
}

// Client deletes indexes on a remote engine.
type Client interface {
	DeleteIndex(ctx context.Context, endpoint, name string) error
}

// Credentials authenticate requests. APIKey wins over basic auth.
type Credentials struct {
	Username string
	Password string
	APIKey   string
}

// HTTPClient speaks the Elasticsearch index API.
type HTTPClient struct {
	client *http.Client
	creds  Credentials
}

// NewHTTPClient creates a client with the given request timeout.
func NewHTTPClient(timeout time.Duration, creds Credentials) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		creds:  creds,
	}
}

// DeleteIndex issues DELETE <endpoint>/<name>.
func (c *HTTPClient) DeleteIndex(ctx context.Context, endpoint, name string) error {
	start := time.Now()
	err := c.deleteIndex(ctx, endpoint, name)
	metrics.RemoteDeleteDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.RemoteDeletes.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrIndexNotFound):
		metrics.RemoteDeletes.WithLabelValues("not_found").Inc()
	default:
		metrics.RemoteDeletes.WithLabelValues("failed").Inc()
	}
	return err
}

func (c *HTTPClient) deleteIndex(ctx context.Context, endpoint, name string) error {
	url := strings.TrimRight(endpoint, "/") + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func (c *HTTPClient) authorize(req *http.Request) {
	switch {
	case c.creds.APIKey != "":
		req.Header.Set("Authorization", "ApiKey "+c.creds.APIKey)
	case c.creds.Username != "":
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}
}
