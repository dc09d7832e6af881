package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/searchbridge/internal/worker"
)

var catalogSnapshotCmd = &cobra.Command{
	Use:   "snapshot [dest]",
	Short: "Write a catalog snapshot",
	Long: "Write a consistent copy of the catalog to dest (default: the configured\n" +
		"snapshot path) and upload it when snapshot storage is configured.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveApp()
		if err != nil {
			return err
		}
		defer a.Close()

		dest := a.cfg.Snapshot.Path
		if len(args) == 1 {
			dest = args[0]
		}
		if err := worker.NewSnapshotWorker(a.catalog, a.uploader, dest, 0).RunOnce(cmd.Context()); err != nil {
			return err
		}

		if catalogJSONOutput {
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"database": a.catalog.Name(),
				"path":     dest,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote snapshot of %q to %s\n", a.catalog.Name(), dest)
		return nil
	},
}
