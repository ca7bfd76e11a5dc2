package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/search"
)

var (
	searchKindFlag     string
	searchFileFlag     string
	searchFileTypeFlag string
	searchLimitFlag    int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed symbols by name",
	Long: `Search matches classes, methods and constants against the query and
ranks them by match quality plus usage, recency and context bonuses.
Pass --file with the path you are editing to boost symbols related to
that file's class.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		engine := search.NewEngine(ws.Graph)
		results := engine.Search(args[0], search.Options{
			Kind:        search.Kind(searchKindFlag),
			CurrentFile: searchFileFlag,
			FileType:    searchFileTypeFlag,
			Limit:       searchLimitFlag,
		})

		if jsonFlag {
			return printJSON(cmd, results)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
			return nil
		}
		for _, r := range results {
			loc := ""
			if r.File != "" {
				loc = fmt.Sprintf("  %s:%d", r.File, r.Line)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%6.2f  %-8s %s%s\n", r.Score, r.Kind, r.Symbol, loc)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchKindFlag, "kind", "any", "symbol kind: any, class, method, constant")
	searchCmd.Flags().StringVar(&searchFileFlag, "file", "", "current file path, for context-aware ranking")
	searchCmd.Flags().StringVar(&searchFileTypeFlag, "file-type", "", "preferred file type: model, controller, spec, lib")
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", search.DefaultLimit, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
