package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// IndexRows is a single-pass, lazily read sequence of index identities.
// Rows are streamed from the open query, so a wide schema is never
// materialized. Callers must Close it.
type IndexRows struct {
	rows *sql.Rows
	oid  OID
	err  error
}

// Next advances to the next index. It returns false when the sequence is
// exhausted or a scan failed; check Err afterwards.
func (r *IndexRows) Next() bool {
	if r.err != nil || r.rows == nil {
		return false
	}
	if !r.rows.Next() {
		return false
	}
	if err := r.rows.Scan(&r.oid); err != nil {
		r.err = fmt.Errorf("scan index oid: %w", err)
		return false
	}
	return true
}

// OID returns the current index.
func (r *IndexRows) OID() OID {
	return r.oid
}

// Err returns the first error met while reading.
func (r *IndexRows) Err() error {
	if r.err != nil {
		return r.err
	}
	if r.rows == nil {
		return nil
	}
	return r.rows.Err()
}

// Close releases the underlying cursor.
func (r *IndexRows) Close() error {
	if r.rows == nil {
		return nil
	}
	return r.rows.Close()
}

// EmptyIndexRows returns a sequence with no rows.
func EmptyIndexRows() *IndexRows {
	return &IndexRows{}
}

func queryIndexRows(ctx context.Context, q Querier, query string, args ...any) (*IndexRows, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	return &IndexRows{rows: rows}, nil
}

// TableIndexes streams every index attached to table, whatever its access method.
func TableIndexes(ctx context.Context, q Querier, table OID) (*IndexRows, error) {
	return queryIndexRows(ctx, q,
		"SELECT oid FROM relations WHERE kind = 'i' AND table_oid = ? ORDER BY oid", table)
}

// IndexesInNamespace streams the indexes in namespace built with accessMethod.
func IndexesInNamespace(ctx context.Context, q Querier, namespace OID, accessMethod string) (*IndexRows, error) {
	return queryIndexRows(ctx, q, `
		SELECT oid FROM relations
		WHERE kind = 'i'
		  AND namespace_oid = ?
		  AND access_method_oid = (SELECT oid FROM access_methods WHERE name = ?)
		ORDER BY oid`, namespace, accessMethod)
}

// IndexesByAccessMethod streams every index in the catalog built with accessMethod.
func IndexesByAccessMethod(ctx context.Context, q Querier, accessMethod string) (*IndexRows, error) {
	return queryIndexRows(ctx, q, `
		SELECT oid FROM relations
		WHERE kind = 'i'
		  AND access_method_oid = (SELECT oid FROM access_methods WHERE name = ?)
		ORDER BY oid`, accessMethod)
}
