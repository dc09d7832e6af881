package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/searchbridge/internal/types"
)

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexes",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	a, err := resolveApp()
	if err != nil {
		return err
	}
	defer a.Close()

	indexes, err := a.ddl.ListIndexes(cmd.Context())
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	if catalogJSONOutput {
		return printJSON(cmd.OutOrStdout(), types.IndexListResponse{Indexes: indexes})
	}

	if len(indexes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No indexes found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "OID\tSCHEMA\tTABLE\tNAME\tACCESS METHOD\tURL")
	for _, idx := range indexes {
		url := idx.URL
		if url == "" {
			url = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			idx.OID, idx.Schema, idx.Table, idx.Name, idx.AccessMethod, url)
	}
	w.Flush()

	return nil
}
