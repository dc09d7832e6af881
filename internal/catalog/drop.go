package catalog

import (
	"context"
	"fmt"
)

// The Delete* functions remove catalog rows. They are the host side of a
// drop and run after the drop hooks have read what they need.

// DeleteIndex removes one index row.
func DeleteIndex(ctx context.Context, q Querier, index OID) error {
	res, err := q.ExecContext(ctx, "DELETE FROM relations WHERE oid = ? AND kind = 'i'", index)
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return requireRows(res.RowsAffected, "index", index)
}

// DeleteTable removes a table and its indexes.
func DeleteTable(ctx context.Context, q Querier, table OID) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM relations WHERE kind = 'i' AND table_oid = ?", table); err != nil {
		return fmt.Errorf("delete table indexes: %w", err)
	}
	res, err := q.ExecContext(ctx, "DELETE FROM relations WHERE oid = ? AND kind = 't'", table)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	return requireRows(res.RowsAffected, "table", table)
}

// DeleteNamespace removes a schema with every table and index in it.
func DeleteNamespace(ctx context.Context, q Querier, namespace OID) error {
	if _, err := q.ExecContext(ctx,
		"DELETE FROM relations WHERE kind = 'i' AND namespace_oid = ?", namespace); err != nil {
		return fmt.Errorf("delete schema indexes: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM relations WHERE namespace_oid = ?", namespace); err != nil {
		return fmt.Errorf("delete schema tables: %w", err)
	}
	res, err := q.ExecContext(ctx, "DELETE FROM namespaces WHERE oid = ?", namespace)
	if err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	return requireRows(res.RowsAffected, "schema", namespace)
}

// DeleteExtension removes an extension, the access methods it provides and
// every index built with them.
func DeleteExtension(ctx context.Context, q Querier, extension OID) error {
	if _, err := q.ExecContext(ctx, `
		DELETE FROM relations
		WHERE kind = 'i'
		  AND access_method_oid IN (SELECT oid FROM access_methods WHERE extension_oid = ?)`, extension); err != nil {
		return fmt.Errorf("delete extension indexes: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM access_methods WHERE extension_oid = ?", extension); err != nil {
		return fmt.Errorf("delete access methods: %w", err)
	}
	res, err := q.ExecContext(ctx, "DELETE FROM extensions WHERE oid = ?", extension)
	if err != nil {
		return fmt.Errorf("delete extension: %w", err)
	}
	return requireRows(res.RowsAffected, "extension", extension)
}

func requireRows(affected func() (int64, error), what string, oid OID) error {
	n, err := affected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, oid)
	}
	return nil
}
