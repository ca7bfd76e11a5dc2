package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/infer"
)

var typesCmd = &cobra.Command{
	Use:   "types <Model>",
	Short: "Infer attribute and association types for a model",
	Long: `Types lists the inferred type of every schema column and declared
association of a model. Each entry carries the inference source and a
confidence score; inference is heuristic, never a guarantee.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		engine := infer.NewEngine(ws.Graph, ws.Schema)
		model := args[0]
		attrs := engine.InferModelTypes(model)
		assocs := engine.InferAssociationTypes(model)

		if jsonFlag {
			return printJSON(cmd, map[string]any{
				"model":        model,
				"attributes":   attrs,
				"associations": assocs,
			})
		}

		out := cmd.OutOrStdout()
		if len(attrs) == 0 && len(assocs) == 0 {
			fmt.Fprintf(out, "No type information for %s.\n", model)
			return nil
		}
		for _, ti := range attrs {
			fmt.Fprintf(out, "%-24s %-16s %.2f (%s)\n", ti.Symbol, ti.InferredType, ti.Confidence, ti.Source)
		}
		names := make([]string, 0, len(assocs))
		for name := range assocs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ti := assocs[name]
			fmt.Fprintf(out, "%-24s %-16s %.2f (%s)\n", name, ti.InferredType, ti.Confidence, ti.Source)
		}
		return nil
	},
}

var (
	inferClassFlag  string
	inferMethodFlag string
)

var inferCmd = &cobra.Command{
	Use:   "infer <expression>",
	Short: "Infer the type of a Ruby expression",
	Long: `Infer runs the layered inference chain over one expression, for
example 'user.email' or 'Order.find(1)'. Pass --class and --method to
anchor receiver lookup in an enclosing definition.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		engine := infer.NewEngine(ws.Graph, ws.Schema)
		ti := engine.InferType(args[0], &infer.Context{
			Class:  inferClassFlag,
			Method: inferMethodFlag,
		})
		if ti == nil {
			return fmt.Errorf("no type signal for %q", args[0])
		}
		if jsonFlag {
			return printJSON(cmd, ti)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %.2f (%s)\n", ti.Symbol, ti.InferredType, ti.Confidence, ti.Source)
		return nil
	},
}

func init() {
	inferCmd.Flags().StringVar(&inferClassFlag, "class", "", "enclosing class for receiver lookup")
	inferCmd.Flags().StringVar(&inferMethodFlag, "method", "", "enclosing method for receiver lookup")
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(inferCmd)
}
