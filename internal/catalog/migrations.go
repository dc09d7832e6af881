package catalog

import (
	"database/sql"
	"fmt"

	"github.com/hyperengineering/searchbridge/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending catalog migrations using goose.
func RunMigrations(db *sql.DB) error {
	// Disable goose's default logging to avoid stdout noise
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the applied catalog migration version.
func (c *Catalog) SchemaVersion() (int64, error) {
	version, err := goose.GetDBVersion(c.db)
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return version, nil
}
