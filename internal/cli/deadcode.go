package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/analysis"
)

var deadcodeMarkdownFlag bool

var deadcodeCmd = &cobra.Command{
	Use:   "deadcode",
	Short: "Detect likely-unused classes, methods and constants",
	Long: `Deadcode flags symbols with no recorded usage. Detection is
conservative: models, controllers and framework-convention classes are
never flagged, nor are public methods or lifecycle callbacks, since
the framework reaches them without an indexable call site.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		report := analysis.NewTracker(ws.Graph).DetectDeadCode()
		if jsonFlag {
			return printJSON(cmd, report)
		}
		if deadcodeMarkdownFlag {
			fmt.Fprint(cmd.OutOrStdout(), analysis.RenderMarkdown(report))
			return nil
		}

		out := cmd.OutOrStdout()
		if report.TotalItems == 0 {
			fmt.Fprintln(out, "No likely-unused symbols found.")
			return nil
		}
		fmt.Fprintf(out, "Flagged %d items (confidence: %s)\n", report.TotalItems, report.Confidence)
		for _, items := range [][]analysis.DeadCodeItem{
			report.UnusedClasses, report.UnusedMethods, report.UnusedConstants,
		} {
			for _, item := range items {
				fmt.Fprintf(out, "  %-8s %s  %s:%d (%.1f) %s\n",
					item.Kind, item.Name, item.File, item.Line, item.Confidence, item.Reason)
			}
		}
		return nil
	},
}

func init() {
	deadcodeCmd.Flags().BoolVar(&deadcodeMarkdownFlag, "markdown", false, "render the report as markdown")
	rootCmd.AddCommand(deadcodeCmd)
}
