package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Catalog is the SQLite-backed relational catalog.
type Catalog struct {
	db   *sql.DB
	name string
}

// Open opens (or creates) the catalog database at dbPath, applies pragmas and
// runs migrations. name is the database name used when deriving remote index
// names.
func Open(dbPath, name string) (*Catalog, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, fmt.Errorf("database name: %w", err)
	}

	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	// SQLite has a single writer. One connection serializes catalog
	// transactions and keeps ":memory:" catalogs on one database.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Catalog{db: db, name: name}, nil
}

// enablePragmas sets SQLite pragmas for performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// DB returns the underlying database handle.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Name returns the database name.
func (c *Catalog) Name() string {
	return c.name
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Snapshot writes a consistent copy of the catalog to destPath.
// An existing file at destPath is replaced.
func (c *Catalog) Snapshot(ctx context.Context, destPath string) error {
	if dir := filepath.Dir(destPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove previous snapshot: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("vacuum into %s: %w", destPath, err)
	}
	return nil
}
