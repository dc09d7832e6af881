package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/searchbridge/internal/config"
)

var (
	catalogPathOverride string
	catalogJSONOutput   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the catalog",
	Long: "Create, list, drop and snapshot catalog objects without running the server.\n" +
		"Drops delete remote indexes exactly as the server does.",
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogPathOverride, "path", "",
		"Catalog database path (overrides config and SEARCHBRIDGE_CATALOG_PATH)")
	catalogCmd.PersistentFlags().BoolVar(&catalogJSONOutput, "json", false,
		"Output in JSON format")

	catalogCmd.AddCommand(catalogCreateExtensionCmd)
	catalogCmd.AddCommand(catalogCreateSchemaCmd)
	catalogCmd.AddCommand(catalogCreateTableCmd)
	catalogCmd.AddCommand(catalogCreateIndexCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogDropCmd)
	catalogCmd.AddCommand(catalogSnapshotCmd)
}

// resolveApp loads the local config, applies --path and opens the catalog.
func resolveApp() (*app, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if catalogPathOverride != "" {
		cfg.Catalog.Path = catalogPathOverride
	}
	return openApp(cfg)
}
