// Package client is a Go client for the searchbridge HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/ddl"
	"github.com/hyperengineering/searchbridge/internal/dsl"
	"github.com/hyperengineering/searchbridge/internal/types"
)

// ErrNotConfigured is returned when the client has no base URL.
var ErrNotConfigured = errors.New("searchbridge URL not configured")

// ProblemError is an RFC 7807 error response from the server.
type ProblemError struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (e *ProblemError) Error() string {
	msg := fmt.Sprintf("searchbridge: %d %s: %s", e.Status, e.Title, e.Detail)
	for _, fe := range e.Errors {
		msg += fmt.Sprintf("; %s %s", fe.Field, fe.Message)
	}
	return msg
}

// Client talks to one searchbridge server.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a Client for the server at baseURL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health returns the server health. It is the only unauthenticated call.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TermResult is a compiled term query.
type TermResult struct {
	Kind  string
	Query dsl.Query
}

// Term compiles a term query. value is the literal text; boost is
// optional.
func (c *Client) Term(ctx context.Context, field, typ, value string, boost *float32) (*TermResult, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	req := types.TermRequest{Field: field, Type: typ, Value: raw, Boost: boost}

	// Compiled queries may carry Infinity or NaN, which encoding/json
	// rejects, so the envelope is read with gjson.
	var body []byte
	if err := c.do(ctx, http.MethodPost, "/api/v1/dsl/term", req, &body); err != nil {
		return nil, err
	}
	return parseTermEnvelope(body)
}

func parseTermEnvelope(body []byte) (*TermResult, error) {
	kind := gjson.GetBytes(body, "kind")
	query := gjson.GetBytes(body, "query")
	if kind.Type != gjson.String || !query.IsObject() {
		return nil, fmt.Errorf("unexpected term response: %s", body)
	}
	q := dsl.Query(query.Raw)
	if q.Field() == "" {
		return nil, fmt.Errorf("term response has no predicate: %s", body)
	}
	return &TermResult{Kind: kind.String(), Query: q}, nil
}

// CreateExtension installs an extension.
func (c *Client) CreateExtension(ctx context.Context, name, version string) (*catalog.Extension, error) {
	var out catalog.Extension
	err := c.do(ctx, http.MethodPost, "/api/v1/extensions", types.CreateExtensionRequest{Name: name, Version: version}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSchema creates a schema.
func (c *Client) CreateSchema(ctx context.Context, name string) (*catalog.Namespace, error) {
	var out catalog.Namespace
	if err := c.do(ctx, http.MethodPost, "/api/v1/schemas", types.CreateSchemaRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTable creates a table.
func (c *Client) CreateTable(ctx context.Context, schema, name string) (*catalog.Relation, error) {
	var out catalog.Relation
	err := c.do(ctx, http.MethodPost, "/api/v1/tables", types.CreateTableRequest{Schema: schema, Name: name}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateIndex creates an index.
func (c *Client) CreateIndex(ctx context.Context, req types.CreateIndexRequest) (*catalog.Relation, error) {
	var out catalog.Relation
	if err := c.do(ctx, http.MethodPost, "/api/v1/indexes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListIndexes lists every index in the catalog.
func (c *Client) ListIndexes(ctx context.Context) ([]catalog.IndexInfo, error) {
	var out types.IndexListResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/indexes", nil, &out); err != nil {
		return nil, err
	}
	return out.Indexes, nil
}

// DropIndex drops an index.
func (c *Client) DropIndex(ctx context.Context, oid catalog.OID) (*ddl.DropResult, error) {
	return c.drop(ctx, "/api/v1/indexes/"+strconv.FormatInt(int64(oid), 10))
}

// DropTable drops a table and its indexes.
func (c *Client) DropTable(ctx context.Context, oid catalog.OID) (*ddl.DropResult, error) {
	return c.drop(ctx, "/api/v1/tables/"+strconv.FormatInt(int64(oid), 10))
}

// DropSchema drops a schema and everything in it.
func (c *Client) DropSchema(ctx context.Context, oid catalog.OID) (*ddl.DropResult, error) {
	return c.drop(ctx, "/api/v1/schemas/"+strconv.FormatInt(int64(oid), 10))
}

// DropExtension drops an extension by name.
func (c *Client) DropExtension(ctx context.Context, name string) (*ddl.DropResult, error) {
	return c.drop(ctx, "/api/v1/extensions/"+url.PathEscape(name))
}

func (c *Client) drop(ctx context.Context, path string) (*ddl.DropResult, error) {
	var out ddl.DropResult
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Snapshot returns a download link for the latest catalog snapshot.
func (c *Client) Snapshot(ctx context.Context) (*types.SnapshotResponse, error) {
	var out types.SnapshotResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/snapshot", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends an authenticated request. out is decoded as JSON, or receives
// the raw body when it is a *[]byte.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		p := &ProblemError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
		json.Unmarshal(data, p)
		return p
	}

	if raw, ok := out.(*[]byte); ok {
		*raw = data
		return nil
	}
	return json.Unmarshal(data, out)
}
