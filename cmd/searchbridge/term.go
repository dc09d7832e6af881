package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/searchbridge/internal/dsl"
)

var (
	termBoost   float32
	termCompact bool
)

var termCmd = &cobra.Command{
	Use:   "term <type> <field> <value>",
	Short: "Compile a term query",
	Long: "Parse value as a literal of the given type and print the term query that\n" +
		"matches it, e.g. searchbridge term timestamptz created '2012-12-12 12:15:35-08'.",
	Args: cobra.ExactArgs(3),
	RunE: runTerm,
}

func init() {
	termCmd.Flags().Float32Var(&termBoost, "boost", 0, "Score boost for the term")
	termCmd.Flags().BoolVar(&termCompact, "compact", false, "Print the query on one line")
}

func runTerm(cmd *cobra.Command, args []string) error {
	kind, err := dsl.ParseKind(args[0])
	if err != nil {
		return err
	}
	value, err := dsl.ParseValue(kind, args[2])
	if err != nil {
		return err
	}

	boost := dsl.NoBoost
	if cmd.Flags().Changed("boost") {
		boost = dsl.WithBoost(termBoost)
	}
	q := dsl.Term(args[1], value, boost)

	if termCompact {
		fmt.Fprintln(cmd.OutOrStdout(), q.String())
		return nil
	}
	cmd.OutOrStdout().Write(q.Pretty())
	return nil
}
