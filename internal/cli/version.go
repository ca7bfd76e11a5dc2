package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the railscope version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "railscope %s\n", Version)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		stats := ws.Graph.Stats()
		if jsonFlag {
			return printJSON(cmd, stats)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Classes:      %d\n", stats.Classes)
		fmt.Fprintf(out, "Modules:      %d\n", stats.Modules)
		fmt.Fprintf(out, "Methods:      %d\n", stats.Methods)
		fmt.Fprintf(out, "Call edges:   %d\n", stats.CallEdges)
		fmt.Fprintf(out, "References:   %d\n", stats.References)
		fmt.Fprintf(out, "Associations: %d\n", stats.Associations)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statsCmd)
}
