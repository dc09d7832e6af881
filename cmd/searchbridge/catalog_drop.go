package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/searchbridge/internal/catalog"
	"github.com/hyperengineering/searchbridge/internal/ddl"
)

var dropForce bool

var catalogDropCmd = &cobra.Command{
	Use:   "drop <index|table|schema|extension> <oid|name>",
	Short: "Drop a catalog object and its remote indexes",
	Long: "Drop an index, table or schema by oid, or an extension by name. Every\n" +
		"governed index removed by the drop has its remote index deleted after the\n" +
		"drop commits. Requires --force or interactive confirmation.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"index", "table", "schema", "extension"},
	RunE:      runCatalogDrop,
}

func init() {
	catalogDropCmd.Flags().BoolVar(&dropForce, "force", false,
		"Skip confirmation prompt")
}

func runCatalogDrop(cmd *cobra.Command, args []string) error {
	kind, target := args[0], args[1]

	a, err := resolveApp()
	if err != nil {
		return err
	}
	defer a.Close()

	drop, err := dropFunc(a.ddl, kind, target)
	if err != nil {
		return err
	}

	// Interactive confirmation unless --force
	if !dropForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will drop %s %s and delete its remote search indexes.\n", kind, target)
		fmt.Fprintf(errOut, "Type %q to confirm: ", target)

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != target {
			fmt.Fprintln(errOut, "Aborted. Input did not match.")
			return nil
		}
	}

	res, err := drop(cmd.Context())
	if err != nil {
		return err
	}

	if catalogJSONOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s %s (%d remote index deletes)\n", kind, target, res.RemoteDeletes)
	return nil
}

// dropFunc resolves the drop statement for kind and target before anything
// runs, so bad arguments fail without prompting.
func dropFunc(svc *ddl.Service, kind, target string) (func(context.Context) (*ddl.DropResult, error), error) {
	if kind == "extension" {
		if err := catalog.ValidateIdentifier(target); err != nil {
			return nil, fmt.Errorf("extension %q: %w", target, err)
		}
		return func(ctx context.Context) (*ddl.DropResult, error) {
			return svc.DropExtension(ctx, target)
		}, nil
	}

	var byOID func(context.Context, catalog.OID) (*ddl.DropResult, error)
	switch kind {
	case "index":
		byOID = svc.DropIndex
	case "table":
		byOID = svc.DropTable
	case "schema":
		byOID = svc.DropSchema
	default:
		return nil, fmt.Errorf("unknown object kind %q: want index, table, schema or extension", kind)
	}

	oid, err := strconv.ParseInt(target, 10, 64)
	if err != nil || oid <= 0 {
		return nil, fmt.Errorf("%s oid %q: must be a positive integer", kind, target)
	}
	return func(ctx context.Context) (*ddl.DropResult, error) {
		return byOID(ctx, catalog.OID(oid))
	}, nil
}
