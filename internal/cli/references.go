package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/analysis"
	"github.com/railscope/railscope/internal/graph"
)

var refsCmd = &cobra.Command{
	Use:     "refs <symbol>",
	Aliases: []string{"references"},
	Short:   "List accumulated references to a symbol",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		refs := analysis.NewTracker(ws.Graph).FindReferences(args[0])
		if jsonFlag {
			return printJSON(cmd, refs)
		}
		if refs.Total() == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No references to %s.\n", args[0])
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d references\n", refs.Symbol, refs.Total())
		printRefGroup(cmd, "Definitions", refs.Definitions)
		printRefGroup(cmd, "Reads", refs.Reads)
		printRefGroup(cmd, "Writes", refs.Writes)
		printRefGroup(cmd, "Calls", refs.Calls)
		printRefGroup(cmd, "Instantiations", refs.Instantiations)
		return nil
	},
}

func printRefGroup(cmd *cobra.Command, title string, refs []graph.Reference) {
	if len(refs) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, ref := range refs {
		if ref.Context != "" {
			fmt.Fprintf(out, "  %s:%d (%s)\n", ref.Location.File, ref.Location.Line, ref.Context)
		} else {
			fmt.Fprintf(out, "  %s:%d\n", ref.Location.File, ref.Location.Line)
		}
	}
}

func init() {
	rootCmd.AddCommand(refsCmd)
}
