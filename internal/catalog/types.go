package catalog

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

// OID identifies one catalog object. OIDs are drawn from a single sequence,
// so they are unique across extensions, namespaces and relations.
type OID int64

// InvalidOID is never assigned to a catalog object.
const InvalidOID OID = 0

func (o OID) String() string {
	return strconv.FormatInt(int64(o), 10)
}

// RelKind distinguishes tables from indexes in the relations table.
type RelKind string

const (
	KindTable RelKind = "t"
	KindIndex RelKind = "i"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *txn.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Extension is an installed extension.
type Extension struct {
	OID     OID    `json:"oid"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Namespace is a schema.
type Namespace struct {
	OID  OID    `json:"oid"`
	Name string `json:"name"`
}

// Relation is a table or an index.
type Relation struct {
	OID          OID               `json:"oid"`
	Name         string            `json:"name"`
	Namespace    OID               `json:"namespace"`
	Kind         RelKind           `json:"kind"`
	Table        OID               `json:"table,omitempty"`
	AccessMethod string            `json:"access_method,omitempty"`
	Options      map[string]string `json:"options,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IndexMetadata is everything needed to address an index's remote resource.
// It holds names rather than row references, so it stays valid after the
// index rows are deleted.
type IndexMetadata struct {
	OID          OID
	Schema       string
	Table        string
	Index        string
	AccessMethod string
	Options      map[string]string
}

// IndexInfo is one row of ListIndexes.
type IndexInfo struct {
	OID          OID    `json:"oid"`
	Schema       string `json:"schema"`
	Table        string `json:"table"`
	Name         string `json:"name"`
	AccessMethod string `json:"access_method"`
	URL          string `json:"url,omitempty"`
}
