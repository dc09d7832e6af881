package types

import (
	"encoding/json"
	"time"

	"github.com/hyperengineering/searchbridge/internal/catalog"
)

// TermRequest asks for a compiled term predicate.
// Value is a JSON string holding the literal text, or a bare JSON scalar
// (number or boolean) used as the literal text verbatim.
type TermRequest struct {
	Field string          `json:"field"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
	Boost *float32        `json:"boost,omitempty"`
}

// CreateExtensionRequest installs an extension.
type CreateExtensionRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// CreateSchemaRequest creates a schema.
type CreateSchemaRequest struct {
	Name string `json:"name"`
}

// CreateTableRequest creates a table.
type CreateTableRequest struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// CreateIndexRequest creates an index on a table.
type CreateIndexRequest struct {
	Schema       string            `json:"schema"`
	Table        string            `json:"table"`
	Name         string            `json:"name"`
	AccessMethod string            `json:"access_method"`
	Options      map[string]string `json:"options,omitempty"`
}

// IndexListResponse lists catalog indexes.
type IndexListResponse struct {
	Indexes []catalog.IndexInfo `json:"indexes"`
}

// MarshalJSON ensures a nil index list marshals as [] not null.
func (r IndexListResponse) MarshalJSON() ([]byte, error) {
	if r.Indexes == nil {
		r.Indexes = []catalog.IndexInfo{}
	}
	type Alias IndexListResponse
	return json.Marshal(Alias(r))
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Database      string `json:"database"`
	IndexCount    int    `json:"index_count"`
	HeldLocks     int    `json:"held_locks"`
	SchemaVersion int64  `json:"schema_version"`
}

// SnapshotResponse points at the latest uploaded catalog snapshot.
type SnapshotResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
