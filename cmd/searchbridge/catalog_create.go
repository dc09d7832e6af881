package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	createVersion      string
	createAccessMethod string
	createOptions      []string
)

var catalogCreateExtensionCmd = &cobra.Command{
	Use:   "create-extension <name>",
	Short: "Install an extension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ext, err := a.ddl.CreateExtension(cmd.Context(), args[0], createVersion)
		if err != nil {
			return err
		}
		if catalogJSONOutput {
			return printJSON(cmd.OutOrStdout(), ext)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created extension %q (oid %d)\n", ext.Name, ext.OID)
		return nil
	},
}

var catalogCreateSchemaCmd = &cobra.Command{
	Use:   "create-schema <name>",
	Short: "Create a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ns, err := a.ddl.CreateSchema(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if catalogJSONOutput {
			return printJSON(cmd.OutOrStdout(), ns)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created schema %q (oid %d)\n", ns.Name, ns.OID)
		return nil
	},
}

var catalogCreateTableCmd = &cobra.Command{
	Use:   "create-table <schema> <table>",
	Short: "Create a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := resolveApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rel, err := a.ddl.CreateTable(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if catalogJSONOutput {
			return printJSON(cmd.OutOrStdout(), rel)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created table %s.%s (oid %d)\n", args[0], rel.Name, rel.OID)
		return nil
	},
}

var catalogCreateIndexCmd = &cobra.Command{
	Use:   "create-index <schema> <table> <name>",
	Short: "Create an index on a table",
	Long: "Create an index. Indexes using the governed access method are mirrored\n" +
		"remotely; --option url=http://host:9200 places one on a specific engine.",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := parseOptions(createOptions)
		if err != nil {
			return err
		}

		a, err := resolveApp()
		if err != nil {
			return err
		}
		defer a.Close()

		am := createAccessMethod
		if am == "" {
			am = a.cfg.Governance.AccessMethod
		}
		rel, err := a.ddl.CreateIndex(cmd.Context(), args[0], args[1], args[2], am, options)
		if err != nil {
			return err
		}
		if catalogJSONOutput {
			return printJSON(cmd.OutOrStdout(), rel)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created index %s.%s using %s (oid %d)\n", args[0], rel.Name, am, rel.OID)
		return nil
	},
}

func init() {
	catalogCreateExtensionCmd.Flags().StringVar(&createVersion, "version", "1.0", "Extension version")
	catalogCreateIndexCmd.Flags().StringVar(&createAccessMethod, "using", "",
		"Access method (defaults to the governed access method)")
	catalogCreateIndexCmd.Flags().StringArrayVar(&createOptions, "option", nil,
		"Index option as key=value (repeatable)")
}

// parseOptions turns key=value pairs into an options map.
func parseOptions(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	options := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("option %q: want key=value", p)
		}
		options[key] = value
	}
	return options, nil
}
