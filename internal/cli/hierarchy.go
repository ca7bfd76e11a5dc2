package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/railscope/railscope/internal/graph"
)

var callersCmd = &cobra.Command{
	Use:   "callers <Class> <method>",
	Short: "Show the reverse call hierarchy of a method",
	Long: `Callers walks the recorded call edges upward from Class#method and
prints every caller, then that caller's callers, and so on. Cycles are
cut at the first repeated method.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		node := ws.Graph.CallHierarchy(args[0], args[1])
		if node == nil {
			return fmt.Errorf("method %s not found", graph.MethodID(args[0], args[1], false))
		}
		if jsonFlag {
			return printJSON(cmd, node)
		}
		printHierarchy(cmd, node, 0)
		return nil
	},
}

func printHierarchy(cmd *cobra.Command, node *graph.HierarchyNode, depth int) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strings.Repeat("  ", depth), node.MethodID)
	for _, caller := range node.Callers {
		printHierarchy(cmd, caller, depth+1)
	}
}

var hierarchyCmd = &cobra.Command{
	Use:   "hierarchy <Class>",
	Short: "Show a class's superclass chain and subclasses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		name := args[0]
		if ws.Graph.Class(name) == nil {
			return fmt.Errorf("class %s not found", name)
		}

		chain := ws.Graph.InheritanceChain(name)
		subs := ws.Graph.AllSubclasses(name)

		if jsonFlag {
			return printJSON(cmd, map[string]any{
				"class":      name,
				"ancestors":  chain,
				"subclasses": subs,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Ancestors: %s\n", strings.Join(chain, " < "))
		if len(subs) == 0 {
			fmt.Fprintln(out, "Subclasses: none")
			return nil
		}
		fmt.Fprintln(out, "Subclasses:")
		for _, s := range subs {
			fmt.Fprintf(out, "  %s\n", s)
		}
		return nil
	},
}

var methodsCmd = &cobra.Command{
	Use:   "methods <Class>",
	Short: "List methods callable on a class",
	Long: `Methods lists the class's own methods, then methods brought in by
mixins, then inherited methods. The nearest definition of each name
wins, mirroring Ruby's lookup order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		name := args[0]
		if ws.Graph.Class(name) == nil {
			return fmt.Errorf("class %s not found", name)
		}

		ids := ws.Graph.AllAvailableMethods(name)
		if jsonFlag {
			return printJSON(cmd, ids)
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callersCmd)
	rootCmd.AddCommand(hierarchyCmd)
	rootCmd.AddCommand(methodsCmd)
}
