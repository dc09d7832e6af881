package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// nextOID draws the next identity from the shared sequence.
func nextOID(ctx context.Context, q Querier) (OID, error) {
	res, err := q.ExecContext(ctx, "INSERT INTO oid_seq DEFAULT VALUES")
	if err != nil {
		return InvalidOID, fmt.Errorf("allocate oid: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return InvalidOID, fmt.Errorf("allocate oid: %w", err)
	}
	return OID(id), nil
}

func exists(ctx context.Context, q Querier, query string, args ...any) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateExtension installs an extension and registers the access methods it provides.
func CreateExtension(ctx context.Context, q Querier, name, version string, accessMethods ...string) (*Extension, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	found, err := exists(ctx, q, "SELECT COUNT(*) FROM extensions WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("check extension: %w", err)
	}
	if found {
		return nil, fmt.Errorf("%w: extension %q", ErrAlreadyExists, name)
	}

	oid, err := nextOID(ctx, q)
	if err != nil {
		return nil, err
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO extensions (oid, name, version) VALUES (?, ?, ?)", oid, name, version); err != nil {
		return nil, fmt.Errorf("insert extension: %w", err)
	}

	for _, am := range accessMethods {
		if err := ValidateIdentifier(am); err != nil {
			return nil, err
		}
		found, err := exists(ctx, q, "SELECT COUNT(*) FROM access_methods WHERE name = ?", am)
		if err != nil {
			return nil, fmt.Errorf("check access method: %w", err)
		}
		if found {
			return nil, fmt.Errorf("%w: access method %q", ErrAlreadyExists, am)
		}
		amOID, err := nextOID(ctx, q)
		if err != nil {
			return nil, err
		}
		if _, err := q.ExecContext(ctx,
			"INSERT INTO access_methods (oid, name, extension_oid) VALUES (?, ?, ?)", amOID, am, oid); err != nil {
			return nil, fmt.Errorf("insert access method: %w", err)
		}
	}

	return &Extension{OID: oid, Name: name, Version: version}, nil
}

// GetExtension looks an extension up by name.
func GetExtension(ctx context.Context, q Querier, name string) (*Extension, error) {
	var ext Extension
	err := q.QueryRowContext(ctx,
		"SELECT oid, name, version FROM extensions WHERE name = ?", name,
	).Scan(&ext.OID, &ext.Name, &ext.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: extension %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get extension: %w", err)
	}
	return &ext, nil
}

// CreateNamespace creates a schema.
func CreateNamespace(ctx context.Context, q Querier, name string) (*Namespace, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	found, err := exists(ctx, q, "SELECT COUNT(*) FROM namespaces WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("check namespace: %w", err)
	}
	if found {
		return nil, fmt.Errorf("%w: schema %q", ErrAlreadyExists, name)
	}

	oid, err := nextOID(ctx, q)
	if err != nil {
		return nil, err
	}
	if _, err := q.ExecContext(ctx, "INSERT INTO namespaces (oid, name) VALUES (?, ?)", oid, name); err != nil {
		return nil, fmt.Errorf("insert namespace: %w", err)
	}
	return &Namespace{OID: oid, Name: name}, nil
}

// GetNamespace looks a schema up by name.
func GetNamespace(ctx context.Context, q Querier, name string) (*Namespace, error) {
	var ns Namespace
	err := q.QueryRowContext(ctx, "SELECT oid, name FROM namespaces WHERE name = ?", name).Scan(&ns.OID, &ns.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: schema %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get namespace: %w", err)
	}
	return &ns, nil
}

// GetNamespaceByOID looks a schema up by identity.
func GetNamespaceByOID(ctx context.Context, q Querier, oid OID) (*Namespace, error) {
	var ns Namespace
	err := q.QueryRowContext(ctx, "SELECT oid, name FROM namespaces WHERE oid = ?", oid).Scan(&ns.OID, &ns.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: schema %d", ErrNotFound, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("get namespace: %w", err)
	}
	return &ns, nil
}

// CreateTable creates a table in the given schema.
func CreateTable(ctx context.Context, q Querier, namespace OID, name string) (*Relation, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	if _, err := GetNamespaceByOID(ctx, q, namespace); err != nil {
		return nil, err
	}
	if err := checkRelationName(ctx, q, namespace, name); err != nil {
		return nil, err
	}

	oid, err := nextOID(ctx, q)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if _, err := q.ExecContext(ctx, `
		INSERT INTO relations (oid, name, namespace_oid, kind, created_at)
		VALUES (?, ?, ?, 't', ?)
	`, oid, name, namespace, now.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert table: %w", err)
	}

	return &Relation{OID: oid, Name: name, Namespace: namespace, Kind: KindTable, CreatedAt: now}, nil
}

// CreateIndex creates an index on table using the named access method.
// The index lives in its table's schema.
func CreateIndex(ctx context.Context, q Querier, table OID, name, accessMethod string, options map[string]string) (*Relation, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, err
	}
	tbl, err := GetRelation(ctx, q, table)
	if err != nil {
		return nil, err
	}
	if tbl.Kind != KindTable {
		return nil, fmt.Errorf("%w: %d is not a table", ErrWrongKind, table)
	}
	if err := checkRelationName(ctx, q, tbl.Namespace, name); err != nil {
		return nil, err
	}

	var amOID OID
	err = q.QueryRowContext(ctx, "SELECT oid FROM access_methods WHERE name = ?", accessMethod).Scan(&amOID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: access method %q", ErrNotFound, accessMethod)
	}
	if err != nil {
		return nil, fmt.Errorf("get access method: %w", err)
	}

	if options == nil {
		options = map[string]string{}
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("encode index options: %w", err)
	}

	oid, err := nextOID(ctx, q)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if _, err := q.ExecContext(ctx, `
		INSERT INTO relations (oid, name, namespace_oid, kind, table_oid, access_method_oid, options, created_at)
		VALUES (?, ?, ?, 'i', ?, ?, ?, ?)
	`, oid, name, tbl.Namespace, table, amOID, string(optionsJSON), now.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("insert index: %w", err)
	}

	return &Relation{
		OID:          oid,
		Name:         name,
		Namespace:    tbl.Namespace,
		Kind:         KindIndex,
		Table:        table,
		AccessMethod: accessMethod,
		Options:      options,
		CreatedAt:    now,
	}, nil
}

func checkRelationName(ctx context.Context, q Querier, namespace OID, name string) error {
	found, err := exists(ctx, q,
		"SELECT COUNT(*) FROM relations WHERE namespace_oid = ? AND name = ?", namespace, name)
	if err != nil {
		return fmt.Errorf("check relation: %w", err)
	}
	if found {
		return fmt.Errorf("%w: relation %q", ErrAlreadyExists, name)
	}
	return nil
}

// GetRelation looks a table or index up by identity.
func GetRelation(ctx context.Context, q Querier, oid OID) (*Relation, error) {
	return scanRelation(q.QueryRowContext(ctx, relationSelect+" WHERE r.oid = ?", oid), oid)
}

// LookupRelation looks a table or index up by schema and name.
func LookupRelation(ctx context.Context, q Querier, schema, name string) (*Relation, error) {
	row := q.QueryRowContext(ctx, relationSelect+`
		JOIN namespaces n ON n.oid = r.namespace_oid
		WHERE n.name = ? AND r.name = ?`, schema, name)
	rel, err := scanRelation(row, InvalidOID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: relation %s.%s", ErrNotFound, schema, name)
	}
	return rel, err
}

const relationSelect = `
	SELECT r.oid, r.name, r.namespace_oid, r.kind, COALESCE(r.table_oid, 0),
	       COALESCE(am.name, ''), r.options, r.created_at
	FROM relations r
	LEFT JOIN access_methods am ON am.oid = r.access_method_oid`

func scanRelation(row *sql.Row, oid OID) (*Relation, error) {
	var rel Relation
	var optionsJSON, createdAt string
	err := row.Scan(&rel.OID, &rel.Name, &rel.Namespace, &rel.Kind, &rel.Table,
		&rel.AccessMethod, &optionsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: relation %d", ErrNotFound, oid)
	}
	if err != nil {
		return nil, fmt.Errorf("get relation: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &rel.Options); err != nil {
		return nil, fmt.Errorf("parse options JSON: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rel.CreatedAt = t
	}
	return &rel, nil
}

// IsGoverned reports whether index is an index built with accessMethod.
// Tables and unknown relations are never governed.
func IsGoverned(ctx context.Context, q Querier, index OID, accessMethod string) (bool, error) {
	found, err := exists(ctx, q, `
		SELECT COUNT(*) FROM relations r
		JOIN access_methods am ON am.oid = r.access_method_oid
		WHERE r.oid = ? AND r.kind = 'i' AND am.name = ?`, index, accessMethod)
	if err != nil {
		return false, fmt.Errorf("check governance: %w", err)
	}
	return found, nil
}

// GetIndexMetadata collects the names and options of an index.
func GetIndexMetadata(ctx context.Context, q Querier, index OID) (*IndexMetadata, error) {
	var md IndexMetadata
	var optionsJSON string
	err := q.QueryRowContext(ctx, `
		SELECT i.oid, n.name, t.name, i.name, COALESCE(am.name, ''), i.options
		FROM relations i
		JOIN relations t ON t.oid = i.table_oid
		JOIN namespaces n ON n.oid = i.namespace_oid
		LEFT JOIN access_methods am ON am.oid = i.access_method_oid
		WHERE i.oid = ? AND i.kind = 'i'`, index,
	).Scan(&md.OID, &md.Schema, &md.Table, &md.Index, &md.AccessMethod, &optionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, index)
	}
	if err != nil {
		return nil, fmt.Errorf("get index metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &md.Options); err != nil {
		return nil, fmt.Errorf("parse options JSON: %w", err)
	}
	return &md, nil
}

// ListIndexes returns every index in the catalog ordered by schema, table and name.
func ListIndexes(ctx context.Context, q Querier) ([]IndexInfo, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.oid, n.name, t.name, i.name, COALESCE(am.name, ''), i.options
		FROM relations i
		JOIN relations t ON t.oid = i.table_oid
		JOIN namespaces n ON n.oid = i.namespace_oid
		LEFT JOIN access_methods am ON am.oid = i.access_method_oid
		WHERE i.kind = 'i'
		ORDER BY n.name, t.name, i.name`)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	indexes := []IndexInfo{}
	for rows.Next() {
		var info IndexInfo
		var optionsJSON string
		if err := rows.Scan(&info.OID, &info.Schema, &info.Table, &info.Name, &info.AccessMethod, &optionsJSON); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		var options map[string]string
		if err := json.Unmarshal([]byte(optionsJSON), &options); err == nil {
			info.URL = options["url"]
		}
		indexes = append(indexes, info)
	}
	return indexes, rows.Err()
}
